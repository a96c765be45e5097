// Package parser provides lexing and recursive descent parsing of SemQL
// documents into a concrete syntax tree.
//
// # Usage
//
//	res := parser.Parse(text, parser.RuleDocument)
//	for _, err := range res.Errors {
//	    // report
//	}
//
// Parsing never fails outright. Syntax errors are collected in
// Result.Errors and the parser resynchronizes at the next statement
// keyword, so one bad statement does not hide the others.
//
// # Grammar Overview
//
//	document    → statement*
//	statement   → import | source: name is source | query: name is query
//	              | run: query | ';'
//	import      → import STRING | import { item, ... } from STRING
//	source      → primary (extend { sourceProp* })*
//	primary     → name | conn.table(STRING) | conn.sql(STRING)
//	query       → source (-> { queryProp* })+ | name
//	sourceProp  → primary_key: name | dimension: def, ... | measure: def, ...
//	              | where: expr, ...
//	queryProp   → group_by: item, ... | aggregate: item, ... | where: expr, ...
//	              | order_by: order, ... | limit: NUMBER
//
// See each file for detailed grammar rules for that section.
package parser

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/semql/pkg/token"
)

// Rule selects the grammar production a parse starts from.
type Rule int

// Entry rules.
const (
	RuleDocument Rule = iota
	RuleSource
	RuleQuery
	RuleExpr
)

func (r Rule) String() string {
	switch r {
	case RuleDocument:
		return "document"
	case RuleSource:
		return "source"
	case RuleQuery:
		return "query"
	case RuleExpr:
		return "expression"
	default:
		return "unknown"
	}
}

// bailout unwinds the current statement after a syntax error.
type bailout struct{}

// Parser parses SemQL into a concrete syntax tree.
type Parser struct {
	tokens []token.Token
	pos    int
	errors []*SyntaxError
	// stack holds the productions being parsed, innermost last; it gives
	// error messages their context.
	stack []Kind
}

// Parse parses text starting at rule. The returned result always has a
// non-nil Root.
func Parse(text string, rule Rule) *Result {
	l := NewLexer(text)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}

	p := &Parser{tokens: tokens}
	p.errors = append(p.errors, l.Errors...)

	var root *Node
	switch rule {
	case RuleSource:
		root = p.parseEntry(p.parseSource)
	case RuleQuery:
		root = p.parseEntry(p.parseQuery)
	case RuleExpr:
		root = p.parseEntry(p.parseExpr)
	default:
		root = p.parseDocument()
	}

	sort.SliceStable(p.errors, func(i, j int) bool {
		return p.errors[i].Pos.Offset < p.errors[j].Pos.Offset
	})

	return &Result{
		Text:     text,
		Root:     root,
		Tokens:   tokens,
		Comments: l.Comments,
		Errors:   p.errors,
		Lines:    NewLineTable(text),
	}
}

// ---------- Token Helpers ----------

// cur returns the current token.
func (p *Parser) cur() token.Token {
	return p.tokens[p.pos]
}

// peek returns the token n positions ahead, clamped to EOF.
func (p *Parser) peek(n int) token.Token {
	if p.pos+n < len(p.tokens) {
		return p.tokens[p.pos+n]
	}
	return p.tokens[len(p.tokens)-1]
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.cur().Type == t
}

// advance consumes the current token and returns it. EOF is never consumed.
func (p *Parser) advance() token.Token {
	tok := p.cur()
	if tok.Type != token.EOF {
		p.pos++
	}
	return tok
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise it reports a
// syntax error and abandons the statement.
func (p *Parser) expect(t token.TokenType) token.Token {
	if p.check(t) {
		return p.advance()
	}
	p.fail(t, "'"+t.String()+"'")
	return token.Token{}
}

// fail records a syntax error at the current token and unwinds to the
// enclosing statement. expected is the token the parser wanted, or
// token.ILLEGAL when the expectation is a whole production described by
// want.
func (p *Parser) fail(expected token.TokenType, want string) {
	tok := p.cur()
	ctx := errorContext{
		Rule:      p.rule(),
		Expected:  expected,
		Offending: tok,
		Next:      p.peek(1),
	}
	if p.pos > 0 {
		ctx.Preceding = p.tokens[p.pos-1]
	}
	msg, ok := customMessage(ctx)
	if !ok {
		if tok.Type == token.ILLEGAL {
			msg = fmt.Sprintf(ErrIllegalCharacter, quote(tok))
		} else {
			msg = fmt.Sprintf(ErrUnexpectedToken, quote(tok), want)
		}
	}
	p.errors = append(p.errors, &SyntaxError{Pos: tok.Pos, Len: tok.Len, Message: msg})
	panic(bailout{})
}

// rule returns the innermost production being parsed.
func (p *Parser) rule() Kind {
	if len(p.stack) == 0 {
		return KindDocument
	}
	return p.stack[len(p.stack)-1]
}

// begin opens a node of the given kind at the current token.
func (p *Parser) begin(kind Kind) *Node {
	p.stack = append(p.stack, kind)
	return &Node{Kind: kind, Start: p.pos}
}

// end closes n at the last consumed token.
func (p *Parser) end(n *Node) *Node {
	p.stack = p.stack[:len(p.stack)-1]
	n.Stop = p.pos - 1
	if n.Stop < n.Start {
		n.Stop = n.Start
	}
	return n
}

// leaf builds a node for a single already-consumed token.
func leaf(kind Kind, tok token.Token, text string) *Node {
	return &Node{Kind: kind, Start: tok.Index, Stop: tok.Index, Text: text}
}

// ---------- Entry Points ----------

// parseDocument parses statements until EOF.
//
//	document → statement*
func (p *Parser) parseDocument() *Node {
	doc := &Node{Kind: KindDocument}
	for !p.check(token.EOF) {
		if p.match(token.SEMI) {
			continue
		}
		doc.Children = append(doc.Children, p.parseStatementRecover())
	}
	doc.Stop = p.pos - 1
	if doc.Stop < 0 {
		doc.Stop = 0
	}
	return doc
}

// parseStatementRecover parses one statement, turning a syntax error into
// an error node and skipping to the next statement keyword.
func (p *Parser) parseStatementRecover() (n *Node) {
	start := p.pos
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, ok := r.(bailout); !ok {
			panic(r)
		}
		p.stack = p.stack[:0]
		if p.pos == start {
			p.advance()
		}
		for !p.check(token.EOF) && !token.IsStatementStart(p.cur().Type) {
			p.advance()
		}
		stop := p.pos - 1
		if stop < start {
			stop = start
		}
		n = &Node{Kind: KindErrorStmt, Start: start, Stop: stop}
	}()
	return p.parseStatement()
}

// parseEntry parses a single production followed by EOF.
func (p *Parser) parseEntry(fn func() *Node) (n *Node) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, ok := r.(bailout); !ok {
			panic(r)
		}
		p.stack = p.stack[:0]
		n = &Node{Kind: KindErrorStmt, Start: 0, Stop: len(p.tokens) - 1}
	}()
	n = fn()
	if !p.check(token.EOF) {
		p.fail(token.EOF, "'<EOF>'")
	}
	return n
}
