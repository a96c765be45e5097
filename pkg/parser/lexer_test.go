package parser

import (
	"testing"

	"github.com/leapstack-labs/semql/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexer_TokenTypes(t *testing.T) {
	input := "source: x is c.table('a') -> { limit: 10 } -- trailing\n// other\n/* block */"
	want := []token.TokenType{
		token.SOURCE, token.COLON, token.IDENT, token.IS, token.IDENT, token.DOT, token.IDENT,
		token.LPAREN, token.STRING, token.RPAREN, token.ARROW, token.LBRACE, token.LIMIT,
		token.COLON, token.NUMBER, token.RBRACE, token.EOF,
	}

	l := NewLexer(input)
	var got []token.TokenType
	for {
		tok := l.NextToken()
		got = append(got, tok.Type)
		if tok.Type == token.EOF {
			break
		}
	}
	assert.Equal(t, want, got)
	require.Len(t, l.Comments, 3)
	assert.True(t, l.Comments[0].IsLineComment())
	assert.Equal(t, "// other", l.Comments[1].Text)
	assert.True(t, l.Comments[2].IsBlockComment())
	assert.Empty(t, l.Errors)
}

func TestLexer_Positions(t *testing.T) {
	toks := Tokenize("a\n  bb")
	require.Len(t, toks, 3)

	assert.Equal(t, token.Position{Line: 1, Column: 1, Offset: 0}, toks[0].Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 3, Offset: 4}, toks[1].Pos)
	assert.Equal(t, 2, toks[1].Len)
	assert.Equal(t, 1, toks[1].Index)
	assert.Equal(t, token.EOF, toks[2].Type)
	assert.Equal(t, 6, toks[2].Pos.Offset)
}

func TestLexer_Literals(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		typ     token.TokenType
		literal string
		length  int
	}{
		{"single quoted", `'abc'`, token.STRING, "abc", 5},
		{"double quoted", `"abc"`, token.STRING, "abc", 5},
		{"escaped quote", `'it\'s'`, token.STRING, "it's", 7},
		{"newline escape", `'a\nb'`, token.STRING, "a\nb", 6},
		{"triple quoted", "\"\"\"SELECT\n1\"\"\"", token.STRING, "SELECT\n1", 14},
		{"backtick ident", "`order`", token.IDENT, "order", 7},
		{"decimal", "12.5", token.NUMBER, "12.5", 4},
		{"exponent", "1e-3", token.NUMBER, "1e-3", 4},
		{"keyword case", "SOURCE", token.SOURCE, "SOURCE", 6},
		{"not equal", "<>", token.NE, "<>", 2},
		{"arrow", "->", token.ARROW, "->", 2},
		{"illegal", "?", token.ILLEGAL, "?", 1},
		{"illegal rune", "é", token.ILLEGAL, "é", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := Tokenize(tt.input)
			require.Len(t, toks, 2)
			assert.Equal(t, tt.typ, toks[0].Type)
			assert.Equal(t, tt.literal, toks[0].Literal)
			assert.Equal(t, tt.length, toks[0].Len)
		})
	}
}

func TestLexer_Unterminated(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"string", `'abc`, ErrUnterminatedString},
		{"string at newline", "'abc\nx", ErrUnterminatedString},
		{"triple", `"""abc`, ErrUnterminatedString},
		{"ident", "`abc", ErrUnterminatedIdent},
		{"comment", "/* abc", ErrUnterminatedComment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLexer(tt.input)
			for l.NextToken().Type != token.EOF {
			}
			require.Len(t, l.Errors, 1)
			assert.Equal(t, tt.msg, l.Errors[0].Message)
			assert.Equal(t, 0, l.Errors[0].Pos.Offset)
		})
	}
}
