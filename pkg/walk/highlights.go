package walk

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/leapstack-labs/semql/pkg/parser"
	"github.com/leapstack-labs/semql/pkg/token"
)

// Highlight types.
const (
	HighlightIdentifier    = "identifier"
	HighlightString        = "literal.string"
	HighlightNumber        = "literal.number"
	HighlightBoolean       = "literal.boolean"
	HighlightNull          = "literal.null"
	HighlightOperatorBool  = "operator.boolean"
	HighlightKeywordIs     = "keyword.is"
	HighlightKeywordAsc    = "keyword.asc"
	HighlightKeywordDesc   = "keyword.desc"
	HighlightKeywordImport = "keyword.import"
	HighlightKeywordExtend = "keyword.extend"
	HighlightCallTable     = "call.table"
	HighlightCallSQL       = "call.sql"
	HighlightCallAggregate = "call.aggregate"
	HighlightCallFunction  = "call.function"
	HighlightCommentLine   = "comment.line"
	HighlightCommentBlock  = "comment.block"
)

// Highlight is a typed range for syntax coloring.
type Highlight struct {
	Range model.Range `json:"range" yaml:"range"`
	Type  string      `json:"type" yaml:"type"`
}

var keywordHighlights = map[token.TokenType]string{
	token.STRING: HighlightString,
	token.NUMBER: HighlightNumber,
	token.TRUE:   HighlightBoolean,
	token.FALSE:  HighlightBoolean,
	token.NULL:   HighlightNull,
	token.AND:    HighlightOperatorBool,
	token.OR:     HighlightOperatorBool,
	token.NOT:    HighlightOperatorBool,
	token.IS:     HighlightKeywordIs,
	token.ASC:    HighlightKeywordAsc,
	token.DESC:   HighlightKeywordDesc,
	token.IMPORT: HighlightKeywordImport,
	token.FROM:   HighlightKeywordImport,
	token.EXTEND: HighlightKeywordExtend,
}

var aggregateNames = map[string]bool{
	"count": true, "count_distinct": true, "sum": true, "avg": true, "min": true, "max": true,
}

// Highlights classifies the tokens and comments of a document. The
// result is sorted by start position.
func Highlights(res *parser.Result) []Highlight {
	out := []Highlight{}
	if res == nil {
		return out
	}
	add := func(start, end int, typ string) {
		out = append(out, Highlight{
			Range: model.Range{Start: res.Lines.Position(start), End: res.Lines.Position(end)},
			Type:  typ,
		})
	}

	toks := res.Tokens
	for i, tok := range toks {
		if tok.Type == token.EOF {
			break
		}
		if typ, ok := keywordHighlights[tok.Type]; ok {
			add(tok.Pos.Offset, tok.End(), typ)
			continue
		}
		switch {
		case token.IsProperty(tok.Type), token.IsStatementStart(tok.Type) && tok.Type != token.IMPORT:
			add(tok.Pos.Offset, tok.End(), "property."+tok.Type.String())
		case tok.Type == token.IDENT:
			add(tok.Pos.Offset, tok.End(), identHighlight(toks, i))
		}
	}

	for _, c := range res.Comments {
		typ := HighlightCommentLine
		if c.IsBlockComment() {
			typ = HighlightCommentBlock
		}
		add(c.Span.Start.Offset, c.Span.End.Offset, typ)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Range.Start.Before(out[j].Range.Start)
	})
	return out
}

// identHighlight tells a call from a plain identifier by the tokens
// around it.
func identHighlight(toks []token.Token, i int) string {
	if i+1 >= len(toks) || toks[i+1].Type != token.LPAREN {
		return HighlightIdentifier
	}
	name := strings.ToLower(toks[i].Literal)
	if i > 0 && toks[i-1].Type == token.DOT {
		switch name {
		case "table":
			return HighlightCallTable
		case "sql":
			return HighlightCallSQL
		}
	}
	if aggregateNames[name] {
		return HighlightCallAggregate
	}
	return HighlightCallFunction
}
