package walk

import (
	"strings"

	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/leapstack-labs/semql/pkg/parser"
	"github.com/leapstack-labs/semql/pkg/token"
)

// Completion types.
const (
	CompletionStatement = "statement"
	CompletionProperty  = "property"
)

// Help context types.
const (
	HelpStatement      = "statement"
	HelpSourceProperty = "source_property"
	HelpQueryProperty  = "query_property"
)

// Completion is one suggested insertion.
type Completion struct {
	Type string `json:"type" yaml:"type"`
	Text string `json:"text" yaml:"text"`
}

// HelpContext names the keyword under the cursor and where it appears,
// so an editor can show documentation for it.
type HelpContext struct {
	Type  string `json:"type" yaml:"type"`
	Token string `json:"token" yaml:"token"`
}

type block int

const (
	blockTop block = iota
	blockSource
	blockQuery
	blockOther
)

var (
	statementWords = []string{"import ", "source: ", "query: ", "run: "}
	sourceWords    = []string{"dimension: ", "measure: ", "primary_key: ", "where: "}
	queryWords     = []string{"group_by: ", "aggregate: ", "where: ", "order_by: ", "limit: "}
)

// blockAt returns the innermost block enclosing offset, judged from the
// braces that start before it.
func blockAt(toks []token.Token, offset int) block {
	var stack []block
	for i, tok := range toks {
		if tok.Type == token.EOF || tok.Pos.Offset >= offset {
			break
		}
		switch tok.Type {
		case token.LBRACE:
			b := blockOther
			if i > 0 {
				switch toks[i-1].Type {
				case token.EXTEND:
					b = blockSource
				case token.ARROW:
					b = blockQuery
				}
			}
			stack = append(stack, b)
		case token.RBRACE:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if len(stack) == 0 {
		return blockTop
	}
	return stack[len(stack)-1]
}

// wordBefore returns the index of the word token ending exactly at
// offset, or -1.
func wordBefore(toks []token.Token, offset int) int {
	for i, tok := range toks {
		if tok.Type == token.EOF || tok.Pos.Offset >= offset {
			break
		}
		if tok.End() == offset && (tok.Type == token.IDENT || token.IsKeyword(tok.Type)) {
			return i
		}
	}
	return -1
}

// lastBefore returns the index of the last token starting before offset,
// or -1.
func lastBefore(toks []token.Token, offset int) int {
	last := -1
	for i, tok := range toks {
		if tok.Type == token.EOF || tok.Pos.Offset >= offset {
			break
		}
		last = i
	}
	return last
}

// expectsValue reports whether a token must be followed by a value, in
// which case no keyword may start after it.
func expectsValue(t token.TokenType) bool {
	switch t {
	case token.COLON, token.IS, token.DOT, token.COMMA, token.LPAREN, token.ARROW, token.NOT,
		token.AND, token.OR, token.EXTEND, token.FROM, token.IMPORT:
		return true
	}
	return token.IsOperator(t)
}

// Completions suggests the statements or properties that may start at
// pos, filtered by the partial word already typed.
func Completions(res *parser.Result, pos model.Position) []Completion {
	out := []Completion{}
	if res == nil {
		return out
	}
	offset := res.Lines.Offset(pos)
	toks := res.Tokens

	prefix := ""
	prev := lastBefore(toks, offset)
	if w := wordBefore(toks, offset); w >= 0 {
		prefix = strings.ToLower(toks[w].Literal)
		prev = w - 1
	}
	if prev >= 0 && expectsValue(toks[prev].Type) {
		return out
	}

	var words []string
	typ := CompletionProperty
	switch blockAt(toks, offset) {
	case blockTop:
		words, typ = statementWords, CompletionStatement
	case blockSource:
		words = sourceWords
	case blockQuery:
		words = queryWords
	default:
		return out
	}
	for _, w := range words {
		if strings.HasPrefix(w, prefix) {
			out = append(out, Completion{Type: typ, Text: w})
		}
	}
	return out
}

// HelpContextAt returns the statement or property keyword under pos, or
// nil when the cursor is not on one.
func HelpContextAt(res *parser.Result, pos model.Position) *HelpContext {
	if res == nil {
		return nil
	}
	offset := res.Lines.Offset(pos)
	for _, tok := range res.Tokens {
		if tok.Type == token.EOF || tok.Pos.Offset > offset {
			break
		}
		if offset > tok.End() {
			continue
		}
		word := tok.Type.String()
		switch {
		case tok.Type == token.IMPORT:
			return &HelpContext{Type: HelpStatement, Token: word}
		case token.IsStatementStart(tok.Type):
			return &HelpContext{Type: HelpStatement, Token: word + ":"}
		case token.IsProperty(tok.Type):
			switch blockAt(res.Tokens, tok.Pos.Offset) {
			case blockSource:
				return &HelpContext{Type: HelpSourceProperty, Token: word + ":"}
			case blockQuery:
				return &HelpContext{Type: HelpQueryProperty, Token: word + ":"}
			}
			return nil
		}
	}
	return nil
}
