package parser

import (
	"testing"

	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Expressions(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a + b * 2", `(binary expression "+" (field reference "a" (identifier "a")) (binary expression "*" (field reference "b" (identifier "b")) (number "2")))`},
		{"not x = 1 or y", `(binary expression "or" (unary expression "not" (binary expression "=" (field reference "x" (identifier "x")) (number "1"))) (field reference "y" (identifier "y")))`},
		{"-count()", `(unary expression "-" (function call "count" (identifier "count")))`},
		{"a <> 'x'", `(binary expression "!=" (field reference "a" (identifier "a")) (string "x"))`},
		{"(true)", `(parenthesized expression (boolean "true"))`},
		{"t.c", `(field reference "t.c" (identifier "t") (identifier "c"))`},
		{"null", `(null)`},
		{"SUM(x, 1)", `(function call "sum" (identifier "SUM") (field reference "x" (identifier "x")) (number "1"))`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res := Parse(tt.input, RuleExpr)
			require.Empty(t, res.Errors)
			assert.Equal(t, tt.want, res.Root.Dump())
		})
	}
}

func TestParse_Statements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			"import",
			"import 'b.semql'",
			`(document (import "b.semql" (string "b.semql")))`,
		},
		{
			"selective import",
			"import { a, c is b } from 'x.semql'",
			`(document (import "x.semql" (import item "a" (identifier "a")) (import item "c" (identifier "c") (identifier "b")) (string "x.semql")))`,
		},
		{
			"table source",
			"source: f is duckdb.table('main.f')",
			`(document (source definition "f" (identifier "f") (table source "main.f" (identifier "duckdb") (string "main.f"))))`,
		},
		{
			"run named query",
			"run: q;",
			`(document (run statement (query reference "q" (identifier "q"))))`,
		},
		{
			"query with limit",
			"query: q is f -> { limit: 5 }",
			`(document (query definition "q" (identifier "q") (query (named source "f" (identifier "f")) (limit "5" (number "5")))))`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.input, RuleDocument)
			require.Empty(t, res.Errors)
			assert.Equal(t, tt.want, res.Root.Dump())
		})
	}
}

func TestParse_FullDocument(t *testing.T) {
	input := `
source: flights is duckdb.table('main.flights') extend {
  primary_key: id
  dimension: carrier_name is upper(carrier)
  measure: flight_count is count(), total is sum(distance)
  where: distance > 0
}
source: adhoc is duckdb.sql("""SELECT 1 AS one""")
query: by_carrier is flights -> {
  where: carrier != 'XX'
  group_by: carrier, carrier_name
  aggregate: flight_count, avg_dist is avg(distance)
  order_by: flight_count desc, 1
  limit: 10
}
run: flights extend { where: id > 2 } -> { aggregate: flight_count } -> { group_by: flight_count }
`
	res := Parse(input, RuleDocument)
	require.Empty(t, res.Errors)
	doc := res.Root
	require.Len(t, doc.Children, 4)

	flights := doc.Children[0]
	assert.Equal(t, KindDefineSource, flights.Kind)
	assert.Equal(t, "flights", flights.Text)
	ext := flights.Child(1)
	require.Equal(t, KindExtendSource, ext.Kind)
	assert.Equal(t, KindTableSource, ext.Child(0).Kind)
	assert.Equal(t, "main.flights", ext.Child(0).Text)
	require.Len(t, ext.Children, 5)
	assert.Equal(t, KindPrimaryKey, ext.Child(1).Kind)
	assert.Equal(t, KindDimension, ext.Child(2).Kind)
	assert.Len(t, ext.Child(3).Children, 2)
	assert.Equal(t, KindWhere, ext.Child(4).Kind)

	adhoc := doc.Children[1].Child(1)
	assert.Equal(t, KindSQLSource, adhoc.Kind)
	assert.Equal(t, "SELECT 1 AS one", adhoc.Text)

	q := doc.Children[2].Child(1)
	require.Equal(t, KindQuery, q.Kind)
	require.Len(t, q.Children, 6)
	order := q.Child(4)
	assert.Equal(t, KindOrderBy, order.Kind)
	assert.Equal(t, "desc", order.Child(0).Text)
	assert.Equal(t, KindNumber, order.Child(1).Child(0).Kind)

	run := doc.Children[3].Child(0)
	require.Equal(t, KindQuery, run.Kind)
	inner := run.Child(0)
	require.Equal(t, KindQuery, inner.Kind)
	assert.Equal(t, KindExtendSource, inner.Child(0).Kind)
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"missing colon", "source x is t", "Expected ':' following 'source'"},
		{"query property in source", "source: a is c.table('t') extend { group_by: x }", "'group_by:' is not legal in a source, only in a query"},
		{"source property in query", "run: f -> { dimension: x is 1 }", "'dimension:' is not legal in a query, only in a source extension"},
		{"missing brace", "source: a is c.table('t') extend {", "Missing '}' at '<EOF>'"},
		{"unquoted import", "import foo", "Import path must be a quoted string"},
		{"missing is", "source: a c.table('t')", "Expected 'is' following 'a'"},
		{"misspelled statement", "sorce: a is b", "'sorce:' is not a statement, expected one of import, source:, query: or run:"},
		{"unknown query property", "run: f -> { limt: 3 }", "Unknown query property 'limt:'"},
		{"unknown source property", "source: a is f extend { dimensions: x is 1 }", "Unknown source property 'dimensions:'"},
		{"table without arrow", "run: c.table('x')", "Unexpected '<EOF>', expected '->'"},
		{"illegal character", "source: a is b ?", "Illegal character '?'"},
		{"bad method", "source: a is c.view('x')", "Unexpected 'view', expected 'table' or 'sql'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Parse(tt.input, RuleDocument)
			require.NotEmpty(t, res.Errors)
			assert.Equal(t, tt.want, res.Errors[0].Message)
		})
	}
}

func TestParse_RecoversAtNextStatement(t *testing.T) {
	input := "source: a is\nsource: b is c.table('t')\nrun: b"
	res := Parse(input, RuleDocument)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Unexpected 'source', expected a source", res.Errors[0].Message)
	assert.Equal(t, 2, res.Errors[0].Pos.Line)

	require.Len(t, res.Root.Children, 3)
	assert.Equal(t, KindErrorStmt, res.Root.Children[0].Kind)
	assert.Equal(t, KindDefineSource, res.Root.Children[1].Kind)
	assert.Equal(t, KindRun, res.Root.Children[2].Kind)
}

func TestParse_EntryRules(t *testing.T) {
	res := Parse("f -> { aggregate: n is count() }", RuleQuery)
	require.Empty(t, res.Errors)
	assert.Equal(t, KindQuery, res.Root.Kind)

	res = Parse("f extend { where: x }", RuleSource)
	require.Empty(t, res.Errors)
	assert.Equal(t, KindExtendSource, res.Root.Kind)

	res = Parse("1 2", RuleExpr)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Unexpected '2', expected '<EOF>'", res.Errors[0].Message)
	assert.Equal(t, KindErrorStmt, res.Root.Kind)
}

func TestParse_EmptyDocument(t *testing.T) {
	res := Parse("", RuleDocument)
	assert.Empty(t, res.Errors)
	assert.Equal(t, KindDocument, res.Root.Kind)
	assert.Empty(t, res.Root.Children)
	assert.Len(t, res.Tokens, 1)
}

func TestResult_RangeSpansLines(t *testing.T) {
	res := Parse("source: a is c.sql(\"\"\"SELECT\n  1\"\"\")", RuleDocument)
	require.Empty(t, res.Errors)
	sql := res.Root.Children[0].Child(1)
	require.Equal(t, KindSQLSource, sql.Kind)

	got := res.NodeRange(sql)
	assert.Equal(t, model.Range{
		Start: model.Position{Line: 0, Character: 13},
		End:   model.Position{Line: 1, Character: 7},
	}, got)
}

func TestLineTable(t *testing.T) {
	lt := NewLineTable("ab\ncd\n")
	assert.Equal(t, LineTable{0, 3, 6}, lt)

	tests := []struct {
		offset int
		want   model.Position
	}{
		{0, model.Position{Line: 0, Character: 0}},
		{2, model.Position{Line: 0, Character: 2}},
		{4, model.Position{Line: 1, Character: 1}},
		{6, model.Position{Line: 2, Character: 0}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, lt.Position(tt.offset))
		assert.Equal(t, tt.offset, lt.Offset(tt.want))
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, "query", RuleQuery.String())
	assert.Equal(t, "source definition", KindDefineSource.String())
	assert.Equal(t, "Kind(999)", Kind(999).String())
}
