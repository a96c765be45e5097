package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/semql/pkg/token"
)

// Kind identifies a production of the concrete syntax tree. The set is
// closed: every consumer switches over it exhaustively.
type Kind int

// Parse tree node kinds.
const (
	KindInvalid Kind = iota

	// Statements
	KindDocument     // statement*
	KindImport       // import 'url' | import { items } from 'url'
	KindImportItem   // name [is exported_name]
	KindDefineSource // source: name is <source>
	KindDefineQuery  // query: name is <query>
	KindRun          // run: <query>
	KindErrorStmt    // unparsable statement, skipped after recovery

	// Sources
	KindTableSource  // conn.table('path')
	KindSQLSource    // conn.sql("select ...")
	KindNamedSource  // name
	KindExtendSource // <source> extend { properties }

	// Source properties
	KindPrimaryKey // primary_key: name
	KindDimension  // dimension: defs
	KindMeasure    // measure: defs
	KindWhere      // where: exprs
	KindFieldDef   // name is expr

	// Queries
	KindQuery     // <source> -> { properties }
	KindQueryRef  // name of a defined query
	KindGroupBy   // group_by: items
	KindAggregate // aggregate: items
	KindOrderBy   // order_by: items
	KindOrderItem // name|number [asc|desc]
	KindLimit     // limit: number
	KindQueryItem // name [is expr]

	// Expressions
	KindBinary    // a op b
	KindUnary     // op a
	KindCall      // fn(args)
	KindFieldPath // a.b.c
	KindParen     // (expr)
	KindNumber
	KindString
	KindBool
	KindNull
	KindIdent

	maxKind
)

var kindNames = [...]string{
	KindInvalid:      "invalid",
	KindDocument:     "document",
	KindImport:       "import",
	KindImportItem:   "import item",
	KindDefineSource: "source definition",
	KindDefineQuery:  "query definition",
	KindRun:          "run statement",
	KindErrorStmt:    "error",
	KindTableSource:  "table source",
	KindSQLSource:    "sql source",
	KindNamedSource:  "named source",
	KindExtendSource: "source extension",
	KindPrimaryKey:   "primary_key",
	KindDimension:    "dimension",
	KindMeasure:      "measure",
	KindWhere:        "where",
	KindFieldDef:     "field definition",
	KindQuery:        "query",
	KindQueryRef:     "query reference",
	KindGroupBy:      "group_by",
	KindAggregate:    "aggregate",
	KindOrderBy:      "order_by",
	KindOrderItem:    "order item",
	KindLimit:        "limit",
	KindQueryItem:    "query item",
	KindBinary:       "binary expression",
	KindUnary:        "unary expression",
	KindCall:         "function call",
	KindFieldPath:    "field reference",
	KindParen:        "parenthesized expression",
	KindNumber:       "number",
	KindString:       "string",
	KindBool:         "boolean",
	KindNull:         "null",
	KindIdent:        "identifier",
}

func (k Kind) String() string {
	if k >= 0 && k < maxKind {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Node is one node of the concrete syntax tree. Start and Stop are
// inclusive token indexes into Result.Tokens.
//
// Text carries the node's own value: the name of an identifier, the
// decoded body of a string, the operator of a binary or unary
// expression, or the direction of an order item.
type Node struct {
	Kind     Kind
	Start    int
	Stop     int
	Text     string
	Children []*Node
}

// Child returns the i-th child or nil.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Walk calls fn for n and every descendant in pre-order. Returning false
// from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Dump renders the tree in a compact s-expression form, for tests.
func (n *Node) Dump() string {
	var b strings.Builder
	n.dump(&b)
	return b.String()
}

func (n *Node) dump(b *strings.Builder) {
	if n == nil {
		b.WriteString("nil")
		return
	}
	b.WriteByte('(')
	b.WriteString(n.Kind.String())
	if n.Text != "" {
		fmt.Fprintf(b, " %q", n.Text)
	}
	for _, c := range n.Children {
		b.WriteByte(' ')
		c.dump(b)
	}
	b.WriteByte(')')
}

// Result is the output of a parse: the tree, the full token stream and
// everything the lexer and parser reported along the way.
type Result struct {
	Text     string
	Root     *Node
	Tokens   []token.Token
	Comments []*token.Comment
	Errors   []*SyntaxError
	Lines    LineTable
}

// Source returns the text covered by the inclusive token span start..stop.
func (r *Result) Source(start, stop int) string {
	from := r.Token(start).Pos.Offset
	to := r.Token(stop).End()
	if to < from || to > len(r.Text) {
		return ""
	}
	return r.Text[from:to]
}

// Token returns the token at index i, or the EOF token when out of range.
func (r *Result) Token(i int) token.Token {
	if i >= 0 && i < len(r.Tokens) {
		return r.Tokens[i]
	}
	return r.Tokens[len(r.Tokens)-1]
}
