package ast

import (
	"strconv"

	"github.com/leapstack-labs/semql/pkg/diag"
	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/leapstack-labs/semql/pkg/parser"
)

// Builder turns a parse tree into semantic elements. Each parse node kind
// has exactly one translation, chosen by the switch in build.
type Builder struct {
	url    string
	result *parser.Result
	log    *diag.Log
}

// NewBuilder returns a builder for the parse result of the document at url.
func NewBuilder(url string, result *parser.Result, log *diag.Log) *Builder {
	return &Builder{url: url, result: result, log: log}
}

// Build translates the whole tree. It never panics; parse nodes with no
// translation become *Unimplemented elements.
func (b *Builder) Build() Element {
	el := b.build(b.result.Root)
	if el == nil {
		return &Unimplemented{base: b.base(b.result.Root), What: "empty parse"}
	}
	return el
}

func (b *Builder) loc(n *parser.Node) model.Location {
	return model.Location{URL: b.url, Range: b.result.NodeRange(n)}
}

func (b *Builder) base(n *parser.Node) base {
	return base{loc: b.loc(n)}
}

func (b *Builder) exprBase(n *parser.Node) exprBase {
	return exprBase{base: b.base(n), text: b.result.Source(n.Start, n.Stop)}
}

func (b *Builder) errorf(n *parser.Node, format string, args ...any) {
	b.log.Log(diag.Errorf(b.loc(n), format, args...))
}

// buildAll translates nodes, dropping the ones that produce nothing.
func (b *Builder) buildAll(nodes []*parser.Node) []Element {
	out := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		if el := b.build(n); el != nil {
			out = append(out, el)
		}
	}
	return out
}

func (b *Builder) build(n *parser.Node) Element {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case parser.KindDocument:
		statements := Only[DocStatement](b.log, b.buildAll(n.Children), "a document")
		return NewDocument(b.loc(n), statements)

	case parser.KindImport:
		s := &ImportStatement{base: b.base(n), URL: n.Text}
		if full, err := ResolveURL(b.url, n.Text); err == nil {
			s.FullURL = full
		}
		items := n.Children[:len(n.Children)-1]
		s.Items = Only[*ImportItem](b.log, b.buildAll(items), "an import")
		return s

	case parser.KindImportItem:
		item := &ImportItem{base: b.base(n), Name: n.Text, From: n.Text}
		if orig := n.Child(1); orig != nil {
			item.From = orig.Text
		}
		return item

	case parser.KindDefineSource:
		return &DefineSource{
			base:    b.base(n),
			Name:    n.Text,
			NameLoc: b.loc(n.Child(0)),
			Source:  b.source(n.Child(1)),
		}

	case parser.KindDefineQuery:
		return &DefineQuery{
			base:    b.base(n),
			Name:    n.Text,
			NameLoc: b.loc(n.Child(0)),
			Query:   b.query(n.Child(1)),
		}

	case parser.KindRun:
		return &RunQuery{base: b.base(n), Query: b.query(n.Child(0))}

	case parser.KindErrorStmt:
		// already reported as a syntax error
		return nil

	case parser.KindTableSource:
		return &TableSource{base: b.base(n), Connection: n.Child(0).Text, Path: n.Text}

	case parser.KindSQLSource:
		return &SQLSource{base: b.base(n), Connection: n.Child(0).Text, SQL: n.Text}

	case parser.KindNamedSource:
		return &NamedSource{base: b.base(n), Name: n.Text}

	case parser.KindExtendSource:
		return &ExtendSource{
			base:       b.base(n),
			Base:       b.source(n.Child(0)),
			Properties: Only[SourceProperty](b.log, b.buildAll(n.Children[1:]), "a source extension"),
		}

	case parser.KindPrimaryKey:
		return &PrimaryKey{base: b.base(n), Field: n.Text}

	case parser.KindDimension, parser.KindMeasure:
		kind := model.KindDimension
		if n.Kind == parser.KindMeasure {
			kind = model.KindMeasure
		}
		return &FieldList{
			base:   b.base(n),
			Kind:   kind,
			Fields: Only[*FieldDecl](b.log, b.buildAll(n.Children), "a field list"),
		}

	case parser.KindWhere:
		return &Where{base: b.base(n), Conditions: b.exprs(n.Children)}

	case parser.KindFieldDef:
		return &FieldDecl{base: b.base(n), Name: n.Text, Expr: b.expr(n.Child(1))}

	case parser.KindQuery:
		p := &Pipeline{base: b.base(n)}
		if src := n.Child(0); src != nil && src.Kind == parser.KindQuery {
			p.Source = &QuerySource{base: b.base(src), Query: b.query(src)}
		} else {
			p.Source = b.source(src)
		}
		p.Properties = Only[QueryProperty](b.log, b.buildAll(n.Children[1:]), "a query")
		return p

	case parser.KindQueryRef:
		return &QueryRef{base: b.base(n), Name: n.Text}

	case parser.KindGroupBy:
		return &GroupBy{base: b.base(n), Items: Only[*QueryItem](b.log, b.buildAll(n.Children), "group_by")}

	case parser.KindAggregate:
		return &Aggregate{base: b.base(n), Items: Only[*QueryItem](b.log, b.buildAll(n.Children), "aggregate")}

	case parser.KindOrderBy:
		return &OrderBy{base: b.base(n), Items: Only[*OrderItem](b.log, b.buildAll(n.Children), "order_by")}

	case parser.KindOrderItem:
		item := &OrderItem{base: b.base(n), Desc: n.Text == "desc"}
		ref := n.Child(0)
		if ref.Kind == parser.KindNumber {
			col, err := strconv.Atoi(ref.Text)
			if err != nil {
				b.errorf(ref, "order_by column must be an integer")
				return nil
			}
			item.Column = col
		} else {
			item.Field = ref.Text
		}
		return item

	case parser.KindLimit:
		rows, ok := parseLimit(n.Text)
		if !ok {
			b.errorf(n, "limit must be a positive integer")
			return nil
		}
		return &Limit{base: b.base(n), Rows: rows}

	case parser.KindQueryItem:
		item := &QueryItem{base: b.base(n), Name: n.Text}
		if e := n.Child(1); e != nil {
			item.Expr = b.expr(e)
		}
		return item

	case parser.KindBinary:
		return &ExprBinary{
			exprBase: b.exprBase(n),
			Op:       n.Text,
			Left:     b.expr(n.Child(0)),
			Right:    b.expr(n.Child(1)),
		}

	case parser.KindUnary:
		return &ExprUnary{exprBase: b.exprBase(n), Op: n.Text, Operand: b.expr(n.Child(0))}

	case parser.KindCall:
		return &ExprCall{exprBase: b.exprBase(n), Name: n.Text, Args: b.exprs(n.Children[1:])}

	case parser.KindFieldPath:
		path := make([]string, 0, len(n.Children))
		for _, c := range n.Children {
			path = append(path, c.Text)
		}
		return &ExprField{exprBase: b.exprBase(n), Path: path}

	case parser.KindIdent:
		return &ExprField{exprBase: b.exprBase(n), Path: []string{n.Text}}

	case parser.KindParen:
		return b.expr(n.Child(0))

	case parser.KindNumber:
		return &ExprNumber{exprBase: b.exprBase(n), Value: n.Text}

	case parser.KindString:
		return &ExprString{exprBase: b.exprBase(n), Value: n.Text}

	case parser.KindBool:
		return &ExprBool{exprBase: b.exprBase(n), Value: n.Text == "true"}

	case parser.KindNull:
		return &ExprNull{exprBase: b.exprBase(n)}

	default:
		return &Unimplemented{base: b.base(n), What: n.Kind.String()}
	}
}

// source builds n and requires a Source. Anything else is diagnosed and
// replaced by a placeholder that fails quietly.
func (b *Builder) source(n *parser.Node) Source {
	el := b.build(n)
	if s, ok := el.(Source); ok {
		return s
	}
	return b.placeholder(n, el, "a source")
}

// query builds n and requires a QueryElement.
func (b *Builder) query(n *parser.Node) QueryElement {
	el := b.build(n)
	if q, ok := el.(QueryElement); ok {
		return q
	}
	return b.placeholder(n, el, "a query")
}

// expr builds n and requires an Expr.
func (b *Builder) expr(n *parser.Node) Expr {
	el := b.build(n)
	if e, ok := el.(Expr); ok {
		return e
	}
	return b.placeholder(n, el, "an expression")
}

func (b *Builder) exprs(nodes []*parser.Node) []Expr {
	out := make([]Expr, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, b.expr(n))
	}
	return out
}

// placeholder wraps an element of the wrong kind. Unimplemented elements
// are kept as children so the sanity pass still finds them.
func (b *Builder) placeholder(n *parser.Node, el Element, want string) *errorElement {
	p := &errorElement{}
	if n != nil {
		p.base = b.base(n)
		p.text = b.result.Source(n.Start, n.Stop)
	}
	switch el.(type) {
	case nil:
		if n != nil {
			b.errorf(n, "Expected %s", want)
		}
	case *Unimplemented:
		p.inner = el
	default:
		b.errorf(n, "'%s' is not %s", el.ElementType(), want)
	}
	return p
}

// errorElement stands in for a source, query or expression that could not
// be built. It compiles to nothing without further diagnostics.
type errorElement struct {
	exprBase
	inner Element
}

func (e *errorElement) ElementType() string { return "error" }
func (e *errorElement) Children() []Element { return children(e.inner) }

func (e *errorElement) Needs(Env, *Document) *Request { return nil }

func (e *errorElement) Struct(Env, *Document) *model.StructDef { return errorStruct() }

func (e *errorElement) Query(Env, *Document) *model.Query { return nil }
