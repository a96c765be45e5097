package ast

import (
	"testing"

	"github.com/leapstack-labs/semql/pkg/diag"
	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/leapstack-labs/semql/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_DocumentStructure(t *testing.T) {
	env := newFakeEnv()
	doc := buildDoc(t, env, `
import { a, b is c } from 'lib/other.semql'
source: s is duckdb.table('main.flights') extend {
  primary_key: id
  dimension: d is upper(carrier)
  where: distance > 10 and carrier != 'AA'
}
query: q is s -> { group_by: carrier } -> { aggregate: n is count() order_by: 1 desc limit: 5 }
run: q
`)
	assert.Empty(t, messages(env.log))
	require.Len(t, doc.Statements, 4)

	imp, ok := doc.Statements[0].(*ImportStatement)
	require.True(t, ok)
	assert.Equal(t, "lib/other.semql", imp.URL)
	assert.Equal(t, "file:///models/lib/other.semql", imp.FullURL)
	require.Len(t, imp.Items, 2)
	assert.Equal(t, "a", imp.Items[0].From)
	assert.Equal(t, "b", imp.Items[1].Name)
	assert.Equal(t, "c", imp.Items[1].From)

	def, ok := doc.Statements[1].(*DefineSource)
	require.True(t, ok)
	assert.Equal(t, "s", def.Name)
	ext, ok := def.Source.(*ExtendSource)
	require.True(t, ok)
	table, ok := ext.Base.(*TableSource)
	require.True(t, ok)
	assert.Equal(t, "duckdb", table.Connection)
	assert.Equal(t, "main.flights", table.Path)
	require.Len(t, ext.Properties, 3)
	where, ok := ext.Properties[2].(*Where)
	require.True(t, ok)
	require.Len(t, where.Conditions, 1)
	assert.Equal(t, "distance > 10 and carrier != 'AA'", where.Conditions[0].Text())

	dq, ok := doc.Statements[2].(*DefineQuery)
	require.True(t, ok)
	outer, ok := dq.Query.(*Pipeline)
	require.True(t, ok)
	inner, ok := outer.Source.(*QuerySource)
	require.True(t, ok)
	_, ok = inner.Query.(*Pipeline)
	assert.True(t, ok)
	require.Len(t, outer.Properties, 3)
	order := outer.Properties[1].(*OrderBy)
	assert.Equal(t, 1, order.Items[0].Column)
	assert.True(t, order.Items[0].Desc)
	assert.Equal(t, 5, outer.Properties[2].(*Limit).Rows)

	run, ok := doc.Statements[3].(*RunQuery)
	require.True(t, ok)
	assert.Equal(t, "q", run.Query.(*QueryRef).Name)
	assert.Empty(t, FindUnimplemented(doc))
}

func TestBuilder_ErrorStatementsAreDropped(t *testing.T) {
	res := parser.Parse("source: a is\nrun: b", parser.RuleDocument)
	require.NotEmpty(t, res.Errors)
	log := diag.NewLog(nil)
	doc, ok := NewBuilder(testURL, res, log).Build().(*Document)
	require.True(t, ok)
	require.Len(t, doc.Statements, 1)
	_, ok = doc.Statements[0].(*RunQuery)
	assert.True(t, ok)
	assert.Equal(t, 0, log.Len())
}

func TestBuilder_Unimplemented(t *testing.T) {
	res := parser.Parse("x", parser.RuleExpr)
	res.Root = &parser.Node{Kind: parser.KindRun, Children: []*parser.Node{{Kind: parser.KindInvalid}}}
	log := diag.NewLog(nil)

	el := NewBuilder(testURL, res, log).Build()
	run, ok := el.(*RunQuery)
	require.True(t, ok)
	assert.Equal(t, "error", run.Query.ElementType())

	found := FindUnimplemented(el)
	require.Len(t, found, 1)
	assert.Equal(t, parser.KindInvalid.String(), found[0].What)
	assert.Equal(t, 0, log.Len())
}

func TestBuilder_WrongElementKind(t *testing.T) {
	res := parser.Parse("1", parser.RuleExpr)
	num := res.Root
	res.Root = &parser.Node{Kind: parser.KindRun, Children: []*parser.Node{num}}
	log := diag.NewLog(nil)

	run, ok := NewBuilder(testURL, res, log).Build().(*RunQuery)
	require.True(t, ok)
	assert.Nil(t, run.Query.Query(nil, nil))
	assert.Equal(t, []string{"'number' is not a query"}, messages(log))
}

func TestOnly(t *testing.T) {
	log := diag.NewLog(nil)
	els := []Element{
		&Where{},
		&RunQuery{},
		nil,
		&Where{},
		&Limit{},
	}
	got := Only[DocStatement](log, els, "a document")
	require.Len(t, got, 1)
	assert.Equal(t, []string{
		"'where' is not legal in a document",
		"'limit' is not legal in a document",
	}, messages(log))
}

func TestWalk(t *testing.T) {
	env := newFakeEnv()
	doc := buildDoc(t, env, "run: f -> { group_by: a is b + 1 }")
	var kinds []string
	Walk(doc, func(el Element) { kinds = append(kinds, el.ElementType()) })
	assert.Equal(t, []string{
		"document", "run", "query", "named source", "group_by",
		"query field", "binary expression", "field reference", "number",
	}, kinds)
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, ref string
		want      string
	}{
		{"file:///a/b.semql", "c.semql", "file:///a/c.semql"},
		{"file:///a/b.semql", "../x/y.semql", "file:///x/y.semql"},
		{"https://host/m/a.semql", "/abs.semql", "https://host/abs.semql"},
		{"file:///a/b.semql", "https://other/z.semql", "https://other/z.semql"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := ResolveURL(tt.base, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ResolveURL("file:///a.semql", "%zz")
	assert.Error(t, err)
}

func TestBlockID(t *testing.T) {
	a := BlockID("duckdb", "SELECT 1")
	assert.Equal(t, a, BlockID("duckdb", "SELECT 1"))
	assert.NotEqual(t, a, BlockID("postgres", "SELECT 1"))
	assert.NotEqual(t, a, BlockID("duckdb", "SELECT 2"))
	assert.Len(t, a, 36)
}

func TestIsErrorStruct(t *testing.T) {
	assert.True(t, IsErrorStruct(nil))
	assert.True(t, IsErrorStruct(errorStruct()))
	assert.False(t, IsErrorStruct(&model.StructDef{Name: "t"}))
}
