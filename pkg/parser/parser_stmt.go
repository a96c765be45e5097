package parser

import (
	"strings"

	"github.com/leapstack-labs/semql/pkg/token"
)

// parseStatement parses one top level statement.
//
//	statement → import | source: name is source | query: name is query | run: query
func (p *Parser) parseStatement() *Node {
	switch p.cur().Type {
	case token.IMPORT:
		return p.parseImport()
	case token.SOURCE:
		return p.parseDefine(KindDefineSource, p.parseSource)
	case token.QUERY:
		return p.parseDefine(KindDefineQuery, p.parseQuery)
	case token.RUN:
		n := p.begin(KindRun)
		p.advance()
		p.expect(token.COLON)
		n.Children = append(n.Children, p.parseQuery())
		return p.end(n)
	default:
		p.fail(token.ILLEGAL, "a statement")
		return nil
	}
}

// parseImport parses an import statement.
//
//	import → import STRING | import { item (, item)* } from STRING
func (p *Parser) parseImport() *Node {
	n := p.begin(KindImport)
	p.advance() // import

	if p.match(token.LBRACE) {
		for {
			n.Children = append(n.Children, p.parseImportItem())
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RBRACE)
		p.expect(token.FROM)
	}

	if !p.check(token.STRING) {
		p.fail(token.STRING, "a quoted URL")
	}
	url := p.advance()
	n.Text = url.Literal
	n.Children = append(n.Children, leaf(KindString, url, url.Literal))
	return p.end(n)
}

// parseImportItem parses one selective import.
//
//	item → name [is exported_name]
func (p *Parser) parseImportItem() *Node {
	n := p.begin(KindImportItem)
	name := p.expect(token.IDENT)
	n.Text = name.Literal
	n.Children = append(n.Children, leaf(KindIdent, name, name.Literal))
	if p.match(token.IS) {
		orig := p.expect(token.IDENT)
		n.Children = append(n.Children, leaf(KindIdent, orig, orig.Literal))
	}
	return p.end(n)
}

// parseDefine parses "keyword: name is body".
func (p *Parser) parseDefine(kind Kind, body func() *Node) *Node {
	n := p.begin(kind)
	p.advance() // source or query
	p.expect(token.COLON)
	name := p.expect(token.IDENT)
	n.Text = name.Literal
	n.Children = append(n.Children, leaf(KindIdent, name, name.Literal))
	p.expect(token.IS)
	n.Children = append(n.Children, body())
	return p.end(n)
}

// ---------- Sources ----------

// parseSource parses a source expression.
//
//	source → primary (extend { sourceProp* })*
func (p *Parser) parseSource() *Node {
	src := p.parseSourcePrimary()
	for p.check(token.EXTEND) {
		ext := p.begin(KindExtendSource)
		ext.Start = src.Start
		p.advance() // extend
		p.expect(token.LBRACE)
		ext.Children = append(ext.Children, src)
		for !p.check(token.RBRACE) && !p.check(token.EOF) {
			if p.match(token.SEMI) || p.match(token.COMMA) {
				continue
			}
			ext.Children = append(ext.Children, p.parseSourceProperty())
		}
		p.expect(token.RBRACE)
		src = p.end(ext)
	}
	return src
}

// parseSourcePrimary parses a named source or a connection method call.
//
//	primary → name | conn.table(STRING) | conn.sql(STRING)
func (p *Parser) parseSourcePrimary() *Node {
	if !p.check(token.IDENT) {
		p.fail(token.IDENT, "a source")
	}
	if p.peek(1).Type != token.DOT {
		n := p.begin(KindNamedSource)
		name := p.advance()
		n.Text = name.Literal
		n.Children = append(n.Children, leaf(KindIdent, name, name.Literal))
		return p.end(n)
	}

	n := p.begin(KindTableSource)
	conn := p.advance()
	p.advance() // .
	if !p.check(token.IDENT) {
		p.fail(token.IDENT, "'table' or 'sql'")
	}
	switch strings.ToLower(p.cur().Literal) {
	case "table":
	case "sql":
		n.Kind = KindSQLSource
		p.stack[len(p.stack)-1] = KindSQLSource
	default:
		p.fail(token.IDENT, "'table' or 'sql'")
	}
	p.advance()
	p.expect(token.LPAREN)
	if !p.check(token.STRING) {
		p.fail(token.STRING, "a quoted string")
	}
	arg := p.advance()
	p.expect(token.RPAREN)

	n.Text = arg.Literal
	n.Children = append(n.Children,
		leaf(KindIdent, conn, conn.Literal),
		leaf(KindString, arg, arg.Literal),
	)
	return p.end(n)
}

// parseSourceProperty parses one property inside an extend block.
//
//	sourceProp → primary_key: name | dimension: def, ... | measure: def, ...
//	             | where: expr, ...
func (p *Parser) parseSourceProperty() *Node {
	switch p.cur().Type {
	case token.PRIMARY_KEY:
		n := p.begin(KindPrimaryKey)
		p.advance()
		p.expect(token.COLON)
		name := p.expect(token.IDENT)
		n.Text = name.Literal
		n.Children = append(n.Children, leaf(KindIdent, name, name.Literal))
		return p.end(n)
	case token.DIMENSION:
		return p.parsePropertyList(KindDimension, p.parseFieldDef)
	case token.MEASURE:
		return p.parsePropertyList(KindMeasure, p.parseFieldDef)
	case token.WHERE:
		return p.parsePropertyList(KindWhere, p.parseExpr)
	default:
		p.fail(token.ILLEGAL, "a source property")
		return nil
	}
}

// parsePropertyList parses "keyword: item (, item)*".
func (p *Parser) parsePropertyList(kind Kind, item func() *Node) *Node {
	n := p.begin(kind)
	p.advance() // keyword
	p.expect(token.COLON)
	for {
		n.Children = append(n.Children, item())
		if !p.match(token.COMMA) {
			break
		}
	}
	return p.end(n)
}

// parseFieldDef parses a named field definition.
//
//	def → name is expr
func (p *Parser) parseFieldDef() *Node {
	n := p.begin(KindFieldDef)
	name := p.expect(token.IDENT)
	n.Text = name.Literal
	n.Children = append(n.Children, leaf(KindIdent, name, name.Literal))
	p.expect(token.IS)
	n.Children = append(n.Children, p.parseExpr())
	return p.end(n)
}

// ---------- Queries ----------

// parseQuery parses a query expression. A bare name refers to a query
// defined elsewhere.
//
//	query → source (-> { queryProp* })+ | name
func (p *Parser) parseQuery() *Node {
	src := p.parseSource()
	if !p.check(token.ARROW) {
		if src.Kind == KindNamedSource {
			src.Kind = KindQueryRef
			return src
		}
		p.fail(token.ARROW, "'->'")
	}
	for p.check(token.ARROW) {
		q := p.begin(KindQuery)
		q.Start = src.Start
		p.advance() // ->
		p.expect(token.LBRACE)
		q.Children = append(q.Children, src)
		for !p.check(token.RBRACE) && !p.check(token.EOF) {
			if p.match(token.SEMI) || p.match(token.COMMA) {
				continue
			}
			q.Children = append(q.Children, p.parseQueryProperty())
		}
		p.expect(token.RBRACE)
		src = p.end(q)
	}
	return src
}

// parseQueryProperty parses one property inside a query block.
//
//	queryProp → group_by: item, ... | aggregate: item, ... | where: expr, ...
//	            | order_by: order, ... | limit: NUMBER
func (p *Parser) parseQueryProperty() *Node {
	switch p.cur().Type {
	case token.GROUP_BY:
		return p.parsePropertyList(KindGroupBy, p.parseQueryItem)
	case token.AGGREGATE:
		return p.parsePropertyList(KindAggregate, p.parseQueryItem)
	case token.WHERE:
		return p.parsePropertyList(KindWhere, p.parseExpr)
	case token.ORDER_BY:
		return p.parsePropertyList(KindOrderBy, p.parseOrderItem)
	case token.LIMIT:
		n := p.begin(KindLimit)
		p.advance()
		p.expect(token.COLON)
		num := p.expect(token.NUMBER)
		n.Text = num.Literal
		n.Children = append(n.Children, leaf(KindNumber, num, num.Literal))
		return p.end(n)
	default:
		p.fail(token.ILLEGAL, "a query property")
		return nil
	}
}

// parseQueryItem parses a field reference or a named computation.
//
//	item → name [is expr]
func (p *Parser) parseQueryItem() *Node {
	n := p.begin(KindQueryItem)
	name := p.expect(token.IDENT)
	n.Text = name.Literal
	n.Children = append(n.Children, leaf(KindIdent, name, name.Literal))
	if p.match(token.IS) {
		n.Children = append(n.Children, p.parseExpr())
	}
	return p.end(n)
}

// parseOrderItem parses one ordering term.
//
//	order → (name | NUMBER) [asc | desc]
func (p *Parser) parseOrderItem() *Node {
	n := p.begin(KindOrderItem)
	switch p.cur().Type {
	case token.IDENT:
		tok := p.advance()
		n.Children = append(n.Children, leaf(KindIdent, tok, tok.Literal))
	case token.NUMBER:
		tok := p.advance()
		n.Children = append(n.Children, leaf(KindNumber, tok, tok.Literal))
	default:
		p.fail(token.ILLEGAL, "a field name or column number")
	}
	switch {
	case p.match(token.ASC):
		n.Text = "asc"
	case p.match(token.DESC):
		n.Text = "desc"
	}
	return p.end(n)
}
