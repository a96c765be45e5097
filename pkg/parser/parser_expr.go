package parser

import (
	"strings"

	"github.com/leapstack-labs/semql/pkg/token"
)

// Expression grammar, lowest precedence first:
//
//	expr       → and (or and)*
//	and        → not (and not)*
//	not        → not not | comparison
//	comparison → additive [(= | != | < | > | <= | >=) additive]
//	additive   → multiply ((+ | -) multiply)*
//	multiply   → unary ((* | / | %) unary)*
//	unary      → - unary | primary
//	primary    → NUMBER | STRING | true | false | null | ( expr )
//	             | name ( args ) | name (. name)*

// parseExpr parses an expression.
func (p *Parser) parseExpr() *Node {
	left := p.parseAnd()
	for p.check(token.OR) {
		p.advance()
		left = binary("or", left, p.parseAnd())
	}
	return left
}

func (p *Parser) parseAnd() *Node {
	left := p.parseNot()
	for p.check(token.AND) {
		p.advance()
		left = binary("and", left, p.parseNot())
	}
	return left
}

func (p *Parser) parseNot() *Node {
	if p.check(token.NOT) {
		n := p.begin(KindUnary)
		p.advance()
		n.Text = "not"
		n.Children = append(n.Children, p.parseNot())
		return p.end(n)
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() *Node {
	left := p.parseAdditive()
	switch p.cur().Type {
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE:
		op := p.advance()
		text := op.Literal
		if op.Type == token.NE {
			text = "!="
		}
		return binary(text, left, p.parseAdditive())
	}
	return left
}

func (p *Parser) parseAdditive() *Node {
	left := p.parseMultiply()
	for p.check(token.PLUS) || p.check(token.MINUS) {
		op := p.advance()
		left = binary(op.Literal, left, p.parseMultiply())
	}
	return left
}

func (p *Parser) parseMultiply() *Node {
	left := p.parseUnary()
	for p.check(token.STAR) || p.check(token.SLASH) || p.check(token.PERCENT) {
		op := p.advance()
		left = binary(op.Literal, left, p.parseUnary())
	}
	return left
}

func (p *Parser) parseUnary() *Node {
	if p.check(token.MINUS) {
		n := p.begin(KindUnary)
		p.advance()
		n.Text = "-"
		n.Children = append(n.Children, p.parseUnary())
		return p.end(n)
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() *Node {
	tok := p.cur()
	switch tok.Type {
	case token.NUMBER:
		p.advance()
		return leaf(KindNumber, tok, tok.Literal)
	case token.STRING:
		p.advance()
		return leaf(KindString, tok, tok.Literal)
	case token.TRUE, token.FALSE:
		p.advance()
		return leaf(KindBool, tok, strings.ToLower(tok.Literal))
	case token.NULL:
		p.advance()
		return leaf(KindNull, tok, "")
	case token.LPAREN:
		n := p.begin(KindParen)
		p.advance()
		n.Children = append(n.Children, p.parseExpr())
		p.expect(token.RPAREN)
		return p.end(n)
	case token.IDENT:
		if p.peek(1).Type == token.LPAREN {
			return p.parseCall()
		}
		return p.parseFieldPath()
	default:
		p.fail(token.ILLEGAL, "an expression")
		return nil
	}
}

// parseCall parses a function call. count() takes no arguments.
func (p *Parser) parseCall() *Node {
	n := p.begin(KindCall)
	name := p.advance()
	n.Text = strings.ToLower(name.Literal)
	n.Children = append(n.Children, leaf(KindIdent, name, name.Literal))
	p.advance() // (
	if !p.check(token.RPAREN) {
		for {
			n.Children = append(n.Children, p.parseExpr())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.expect(token.RPAREN)
	return p.end(n)
}

// parseFieldPath parses a dotted field reference.
func (p *Parser) parseFieldPath() *Node {
	n := p.begin(KindFieldPath)
	var parts []string
	for {
		name := p.expect(token.IDENT)
		parts = append(parts, name.Literal)
		n.Children = append(n.Children, leaf(KindIdent, name, name.Literal))
		if !p.check(token.DOT) {
			break
		}
		p.advance()
	}
	n.Text = strings.Join(parts, ".")
	return p.end(n)
}

// binary builds a binary node spanning left and right.
func binary(op string, left, right *Node) *Node {
	return &Node{
		Kind:     KindBinary,
		Start:    left.Start,
		Stop:     right.Stop,
		Text:     op,
		Children: []*Node{left, right},
	}
}
