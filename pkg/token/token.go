// Package token defines the lexical tokens of the SemQL modeling language.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

//nolint:revive // Token names follow the ALL_CAPS convention used by the lexer
const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	IDENT  // identifier or `quoted identifier`
	NUMBER // 123, 45.67, 1e10
	STRING // 'hello', "hello", """multi line"""

	// Operators and punctuation
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %
	EQ      // =
	NE      // != or <>
	LT      // <
	GT      // >
	LE      // <=
	GE      // >=
	DOT     // .
	COMMA   // ,
	COLON   // :
	SEMI    // ;
	ARROW   // ->
	LPAREN  // (
	RPAREN  // )
	LBRACE  // {
	RBRACE  // }

	// Keywords (alphabetical)
	AND
	ASC
	DESC
	EXTEND
	FALSE
	FROM
	IMPORT
	IS
	NOT
	NULL
	OR
	QUERY
	RUN
	SOURCE
	TRUE

	// Property keywords, always followed by ':'
	AGGREGATE
	DIMENSION
	GROUP_BY
	LIMIT
	MEASURE
	ORDER_BY
	PRIMARY_KEY
	WHERE

	maxBuiltin
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// tokenNames maps token types to their string representations.
var tokenNames = map[TokenType]string{
	EOF:     "<EOF>",
	ILLEGAL: "ILLEGAL",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",

	PLUS:    "+",
	MINUS:   "-",
	STAR:    "*",
	SLASH:   "/",
	PERCENT: "%",
	EQ:      "=",
	NE:      "!=",
	LT:      "<",
	GT:      ">",
	LE:      "<=",
	GE:      ">=",
	DOT:     ".",
	COMMA:   ",",
	COLON:   ":",
	SEMI:    ";",
	ARROW:   "->",
	LPAREN:  "(",
	RPAREN:  ")",
	LBRACE:  "{",
	RBRACE:  "}",

	AND:    "and",
	ASC:    "asc",
	DESC:   "desc",
	EXTEND: "extend",
	FALSE:  "false",
	FROM:   "from",
	IMPORT: "import",
	IS:     "is",
	NOT:    "not",
	NULL:   "null",
	OR:     "or",
	QUERY:  "query",
	RUN:    "run",
	SOURCE: "source",
	TRUE:   "true",

	AGGREGATE:   "aggregate",
	DIMENSION:   "dimension",
	GROUP_BY:    "group_by",
	LIMIT:       "limit",
	MEASURE:     "measure",
	ORDER_BY:    "order_by",
	PRIMARY_KEY: "primary_key",
	WHERE:       "where",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]TokenType{
	"and":    AND,
	"asc":    ASC,
	"desc":   DESC,
	"extend": EXTEND,
	"false":  FALSE,
	"from":   FROM,
	"import": IMPORT,
	"is":     IS,
	"not":    NOT,
	"null":   NULL,
	"or":     OR,
	"query":  QUERY,
	"run":    RUN,
	"source": SOURCE,
	"true":   TRUE,

	"aggregate":   AGGREGATE,
	"dimension":   DIMENSION,
	"group_by":    GROUP_BY,
	"limit":       LIMIT,
	"measure":     MEASURE,
	"order_by":    ORDER_BY,
	"primary_key": PRIMARY_KEY,
	"where":       WHERE,
}

// LookupIdent returns the token type for the given lowercase identifier.
// If the identifier is a keyword, the keyword token type is returned.
// Otherwise, IDENT is returned.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Keywords returns every keyword spelling, used by completion.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	return out
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= AND && t < maxBuiltin
}

// IsProperty returns true if the token type is a property keyword
// such as group_by or dimension.
func IsProperty(t TokenType) bool {
	return t >= AGGREGATE && t < maxBuiltin
}

// IsStatementStart returns true for tokens which begin a top level statement.
// The parser uses these to resynchronize after a syntax error.
func IsStatementStart(t TokenType) bool {
	switch t {
	case IMPORT, SOURCE, QUERY, RUN:
		return true
	}
	return false
}

// IsOperator returns true if the token type is an operator.
func IsOperator(t TokenType) bool {
	return t >= PLUS && t <= GE
}

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
	// Len is the length in bytes of the token's source text, which may
	// differ from len(Literal) for quoted strings.
	Len int
	// Index is the position of the token in the token stream.
	Index int
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Pos.Offset + t.Len
}

func (t Token) String() string {
	if t.Type == EOF {
		return t.Type.String()
	}
	return t.Literal
}
