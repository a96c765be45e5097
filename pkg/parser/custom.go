package parser

import (
	"fmt"
	"slices"

	"github.com/leapstack-labs/semql/pkg/token"
)

// errorContext describes where a syntax error happened.
type errorContext struct {
	Rule      Kind            // innermost production being parsed
	Expected  token.TokenType // wanted token, or ILLEGAL for a whole production
	Offending token.Token
	Preceding token.Token
	Next      token.Token
}

// errorCase rewrites a recognizable mistake into a friendlier message.
// Empty fields match anything.
type errorCase struct {
	rules     []Kind
	expected  []token.TokenType
	offending []token.TokenType
	preceding []token.TokenType
	next      []token.TokenType
	message   func(ctx errorContext) string
}

func (c errorCase) matches(ctx errorContext) bool {
	return matchAny(c.rules, ctx.Rule) &&
		matchAny(c.expected, ctx.Expected) &&
		matchAny(c.offending, ctx.Offending.Type) &&
		matchAny(c.preceding, ctx.Preceding.Type) &&
		matchAny(c.next, ctx.Next.Type)
}

func matchAny[T comparable](set []T, v T) bool {
	return len(set) == 0 || slices.Contains(set, v)
}

var (
	colonKeywords = []token.TokenType{
		token.SOURCE, token.QUERY, token.RUN,
		token.PRIMARY_KEY, token.DIMENSION, token.MEASURE, token.WHERE,
		token.GROUP_BY, token.AGGREGATE, token.ORDER_BY, token.LIMIT,
	}
	queryOnly  = []token.TokenType{token.GROUP_BY, token.AGGREGATE, token.ORDER_BY, token.LIMIT}
	sourceOnly = []token.TokenType{token.PRIMARY_KEY, token.DIMENSION, token.MEASURE}
)

// errorCases is checked in order; the first match wins.
var errorCases = []errorCase{
	{
		expected:  []token.TokenType{token.COLON},
		preceding: colonKeywords,
		message: func(ctx errorContext) string {
			return fmt.Sprintf("Expected ':' following '%s'", ctx.Preceding.Literal)
		},
	},
	{
		expected:  []token.TokenType{token.RBRACE},
		offending: []token.TokenType{token.EOF},
		message: func(errorContext) string {
			return "Missing '}' at '<EOF>'"
		},
	},
	{
		rules:     []Kind{KindExtendSource},
		offending: queryOnly,
		message: func(ctx errorContext) string {
			return fmt.Sprintf("'%s:' is not legal in a source, only in a query", ctx.Offending.Literal)
		},
	},
	{
		rules:     []Kind{KindQuery},
		offending: sourceOnly,
		message: func(ctx errorContext) string {
			return fmt.Sprintf("'%s:' is not legal in a query, only in a source extension", ctx.Offending.Literal)
		},
	},
	{
		rules:     []Kind{KindImport},
		expected:  []token.TokenType{token.STRING},
		offending: []token.TokenType{token.IDENT},
		message: func(errorContext) string {
			return "Import path must be a quoted string"
		},
	},
	{
		expected:  []token.TokenType{token.IS},
		preceding: []token.TokenType{token.IDENT},
		message: func(ctx errorContext) string {
			return fmt.Sprintf("Expected 'is' following '%s'", ctx.Preceding.Literal)
		},
	},
	{
		rules:     []Kind{KindDocument},
		offending: []token.TokenType{token.IDENT},
		next:      []token.TokenType{token.COLON},
		message: func(ctx errorContext) string {
			return fmt.Sprintf("'%s:' is not a statement, expected one of import, source:, query: or run:", ctx.Offending.Literal)
		},
	},
	{
		rules:     []Kind{KindQuery},
		expected:  []token.TokenType{token.ILLEGAL},
		offending: []token.TokenType{token.IDENT},
		next:      []token.TokenType{token.COLON},
		message: func(ctx errorContext) string {
			return fmt.Sprintf("Unknown query property '%s:'", ctx.Offending.Literal)
		},
	},
	{
		rules:     []Kind{KindExtendSource},
		expected:  []token.TokenType{token.ILLEGAL},
		offending: []token.TokenType{token.IDENT},
		next:      []token.TokenType{token.COLON},
		message: func(ctx errorContext) string {
			return fmt.Sprintf("Unknown source property '%s:'", ctx.Offending.Literal)
		},
	},
}

// customMessage returns the rewritten message for ctx, if a case matches.
func customMessage(ctx errorContext) (string, bool) {
	for _, c := range errorCases {
		if c.matches(ctx) {
			return c.message(ctx), true
		}
	}
	return "", false
}
