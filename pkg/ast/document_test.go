package ast

import (
	"testing"

	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_CompileFull(t *testing.T) {
	env := newFakeEnv()
	doc := buildDoc(t, env, `
source: flights is duckdb.table('flights') extend {
  primary_key: id
  dimension: carrier_name is upper(carrier)
  measure: flight_count is count(), total is sum(distance)
  where: distance > 0
}
query: by_carrier is flights -> {
  where: carrier != 'XX'
  group_by: carrier, carrier_name
  aggregate: flight_count, avg_dist is avg(distance)
  order_by: flight_count desc
  limit: 10
}
run: by_carrier
run: by_carrier -> { aggregate: n is count() }
`)

	require.Nil(t, doc.Compile(env))
	assert.Empty(t, messages(env.log))
	assert.True(t, doc.Completed())

	m := doc.ModelDef()
	assert.Equal(t, []string{"flights", "by_carrier"}, m.Names)
	assert.Equal(t, []string{"flights", "by_carrier"}, m.Exports)

	flights := m.Entry("flights").Source
	require.NotNil(t, flights)
	assert.Equal(t, "flights", flights.As)
	assert.Equal(t, "duckdb", flights.Connection)
	assert.Equal(t, "id", flights.PrimaryKey)
	assert.Len(t, flights.Fields, 6)
	fc, ok := flights.Field("flight_count")
	require.True(t, ok)
	assert.Equal(t, model.KindMeasure, fc.Kind)
	assert.Equal(t, model.ExprAggregate, fc.Expr.Node)
	require.Len(t, flights.Filters, 1)
	assert.Equal(t, "distance > 0", flights.Filters[0].Source)

	q := m.Entry("by_carrier").Query
	require.NotNil(t, q)
	assert.Equal(t, "flights", q.StructRef)
	require.Len(t, q.Pipeline, 1)
	seg := q.Pipeline[0]
	var names []string
	for _, f := range seg.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"carrier", "carrier_name", "flight_count", "avg_dist"}, names)
	assert.Equal(t, "carrier != 'XX'", seg.Filters[0].Source)
	assert.Equal(t, []model.OrderBy{{Field: "flight_count", Desc: true}}, seg.OrderBy)
	assert.Equal(t, 10, seg.Limit)

	queries := doc.Queries()
	require.Len(t, queries, 2)
	assert.Equal(t, "by_carrier", queries[0].Name)
	assert.Equal(t, model.SourceQuery, queries[1].Struct.Source.Type)
	assert.Len(t, env.refs, 3)
}

func TestDocument_Redefinition(t *testing.T) {
	env := newFakeEnv()
	env.tables.Reference("duckdb:other", nil)
	env.tables.UpdateFrom(map[string]*model.StructDef{"duckdb:other": flightsSchema()}, nil)

	doc := buildDoc(t, env, "source: a is duckdb.table('flights')\nsource: a is duckdb.table('other')")
	require.Nil(t, doc.Compile(env))

	msgs := env.log.Snapshot()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Cannot redefine 'a'", msgs[0].Text)
	require.NotNil(t, msgs[0].Range)
	assert.Equal(t, 1, msgs[0].Range.Start.Line)

	m := doc.ModelDef()
	assert.Equal(t, []string{"a"}, m.Names)
	assert.Equal(t, "flights", m.Entry("a").Source.Source.TablePath)
}

func TestDocument_SemanticErrors(t *testing.T) {
	const preamble = "source: flights is duckdb.table('flights')\n"
	tests := []struct {
		name string
		text string
		want string
	}{
		{"unknown field", "run: flights -> { group_by: nope }", "'nope' is not defined"},
		{"aggregate dimension", "source: s is flights extend { dimension: d is count() }", "Cannot use an aggregate expression as a dimension"},
		{"scalar measure", "source: s is flights extend { measure: m is distance * 2 }", "Cannot use a scalar expression as a measure"},
		{"non boolean filter", "source: s is flights extend { where: distance }", "Filter expression must have boolean value"},
		{"unknown function", "run: flights -> { aggregate: n is foo(id) }", "Unknown function 'foo'"},
		{"argument type", "run: flights -> { aggregate: n is sum(carrier) }", "'sum' requires number arguments"},
		{"nested aggregate", "run: flights -> { aggregate: n is sum(count()) }", "Aggregate function 'sum' cannot take an aggregate argument"},
		{"arity", "run: flights -> { group_by: u is upper() }", "Wrong number of arguments to 'upper'"},
		{"order by unknown", "run: flights -> { group_by: carrier order_by: nope }", "Unknown field 'nope' in order_by"},
		{"order by column", "run: flights -> { group_by: carrier order_by: 2 }", "order_by column 2 is out of range"},
		{"limit", "run: flights -> { group_by: carrier limit: 0 }", "limit must be a positive integer"},
		{"undefined query", "run: nope", "Undefined query 'nope'"},
		{"undefined source", "run: nope -> { group_by: x }", "Undefined data source 'nope'"},
		{"source as query", "run: flights", "'flights' is not a query"},
		{"compare types", "run: flights -> { where: carrier = 1 group_by: carrier }", "Cannot compare a string to a number"},
		{"empty query", "run: flights -> { }", "Query has no group_by or aggregate fields"},
		{"scalar aggregate", "run: flights -> { aggregate: carrier }", "'carrier' is not a measure"},
		{"duplicate output", "run: flights -> { group_by: carrier, carrier }", "Output field 'carrier' is already defined"},
		{"group by aggregate", "run: flights -> { group_by: n is count() }", "Cannot group by an aggregate expression"},
		{"primary key", "source: s is flights extend { primary_key: nope }", "Primary key 'nope' is not a field of the source"},
		{"field redefinition", "source: s is flights extend { dimension: carrier is upper(carrier) }", "Cannot redefine field 'carrier'"},
		{"not boolean", "run: flights -> { where: not distance group_by: carrier }", "'not' requires a boolean operand"},
		{"arithmetic", "run: flights -> { group_by: x is carrier * 2 }", "'*' requires number operands"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newFakeEnv()
			doc := buildDoc(t, env, preamble+tt.text)
			require.Nil(t, doc.Compile(env))
			msgs := messages(env.log)
			require.NotEmpty(t, msgs)
			assert.Equal(t, tt.want, msgs[0])
		})
	}
}

func TestDocument_FailedDefinitionStaysQuiet(t *testing.T) {
	env := newFakeEnv()
	env.tables.Reference("duckdb:missing", nil)
	env.tables.UpdateFrom(nil, map[string]string{"duckdb:missing": "no such table"})

	doc := buildDoc(t, env, "source: bad is duckdb.table('missing')\nrun: bad -> { group_by: x }")
	require.Nil(t, doc.Compile(env))
	assert.Equal(t, []string{"Schema error 'missing': no such table"}, messages(env.log))
}

func TestDocument_SQLBlockResumes(t *testing.T) {
	env := newFakeEnv()
	doc := buildDoc(t, env, `
source: f is duckdb.table('flights')
source: s is duckdb.sql("""SELECT 1 AS one""")
run: s -> { group_by: one }
`)

	req := doc.Compile(env)
	require.NotNil(t, req)
	require.Len(t, req.SQL, 1)
	block := req.SQL[0]
	assert.Equal(t, BlockID("duckdb", "SELECT 1 AS one"), block.ID)
	assert.Equal(t, "duckdb", block.Connection)
	assert.Equal(t, 1, doc.Executed())
	assert.Equal(t, []string{block.ID}, env.sql.Undefined())

	// asking again before the data arrives repeats the same request
	again := doc.Compile(env)
	require.NotNil(t, again)
	assert.Equal(t, block.ID, again.SQL[0].ID)
	assert.Equal(t, 1, doc.Executed())

	env.sql.UpdateFrom(map[string]*model.StructDef{block.ID: {
		Fields: []model.FieldDef{{Name: "one", Type: model.TypeNumber, Kind: model.KindColumn}},
	}}, nil)
	require.Nil(t, doc.Compile(env))
	assert.Empty(t, messages(env.log))
	assert.Equal(t, 3, doc.Executed())
	assert.Equal(t, []string{"f", "s"}, doc.ModelDef().Names)
	require.Len(t, doc.SQLBlocks(), 1)
	assert.Equal(t, model.SourceSQL, doc.ModelDef().Entry("s").Source.Source.Type)
	assert.Len(t, doc.Queries(), 1)
}

func TestDocument_SQLBlockError(t *testing.T) {
	env := newFakeEnv()
	doc := buildDoc(t, env, `source: s is pg.sql('SELEC 1')`)
	req := doc.Compile(env)
	require.NotNil(t, req)
	env.sql.UpdateFrom(nil, map[string]string{req.SQL[0].ID: "syntax error at or near \"SELEC\""})

	require.Nil(t, doc.Compile(env))
	assert.Equal(t, []string{`Invalid SQL, syntax error at or near "SELEC"`}, messages(env.log))
}

func importedModel() *model.ModelDef {
	m := model.NewModelDef("file:///models/b.semql")
	m.Names = []string{"b1", "hidden"}
	m.Exports = []string{"b1"}
	m.Contents["b1"] = &model.Entry{Kind: model.EntrySource, Source: &model.StructDef{
		Name:   "t",
		Fields: []model.FieldDef{{Name: "x", Type: model.TypeString, Kind: model.KindColumn}},
	}, Exported: true}
	m.Contents["hidden"] = &model.Entry{Kind: model.EntrySource, Source: &model.StructDef{Name: "h"}}
	return m
}

func TestDocument_Import(t *testing.T) {
	env := newFakeEnv()
	env.imports["file:///models/b.semql"] = importedModel()

	doc := buildDoc(t, env, "import 'b.semql'\nrun: b1 -> { group_by: x }")
	require.Nil(t, doc.Compile(env))
	assert.Empty(t, messages(env.log))

	m := doc.ModelDef()
	assert.Equal(t, []string{"b1"}, m.Names)
	assert.Empty(t, m.Exports)
	assert.False(t, m.Entry("b1").Exported)
	assert.True(t, env.imports["file:///models/b.semql"].Entry("b1").Exported, "the imported model is not modified")

	require.NotEmpty(t, env.refs)
	assert.Equal(t, model.RefImport, env.refs[0].Kind)
	assert.Equal(t, "file:///models/b.semql", env.refs[0].Definition.URL)
}

func TestDocument_SelectiveImport(t *testing.T) {
	env := newFakeEnv()
	env.imports["file:///models/b.semql"] = importedModel()

	doc := buildDoc(t, env, "import { c is b1, hidden } from 'b.semql'\nsource: c is duckdb.table('flights')")
	require.Nil(t, doc.Compile(env))
	assert.Equal(t, []string{
		"Cannot find 'hidden', not imported",
		"Cannot redefine 'c'",
		"'c' is imported but never used",
	}, messages(env.log))
	assert.Equal(t, []string{"c"}, doc.ModelDef().Names)
	assert.Equal(t, "t", doc.ModelDef().Entry("c").Source.Name)
}

func TestDocument_UnusedImportWarns(t *testing.T) {
	env := newFakeEnv()
	env.imports["file:///models/b.semql"] = importedModel()

	doc := buildDoc(t, env, "import { b1, b2 is b1 } from 'b.semql'\nrun: b1 -> { group_by: x }")
	require.Nil(t, doc.Compile(env))
	assert.Equal(t, []string{"'b2' is imported but never used"}, messages(env.log))
	assert.False(t, env.log.HasErrors())

	require.Nil(t, doc.Compile(env))
	assert.Len(t, env.log.Snapshot(), 1, "a completed document warns once")
}

func TestDocument_ImportFailure(t *testing.T) {
	env := newFakeEnv()
	doc := buildDoc(t, env, "import 'missing.semql'")
	require.Nil(t, doc.Compile(env))
	assert.Equal(t, []string{"import failed: 'missing.semql'"}, messages(env.log))
}

func TestDocument_ImportFailureQuietsItsNames(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "whole document",
			text: "import 'missing.semql'\nsource: a is bx\nrun: q1",
			want: []string{"import failed: 'missing.semql'"},
		},
		{
			name: "selected names",
			text: "import { bx } from 'missing.semql'\nsource: a is bx\nsource: c is cx",
			want: []string{"import failed: 'missing.semql'", "Undefined data source 'cx'"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newFakeEnv()
			doc := buildDoc(t, env, tt.text)
			require.Nil(t, doc.Compile(env))
			assert.Equal(t, tt.want, messages(env.log))
		})
	}
}

func TestDocument_ImportWaitsForChild(t *testing.T) {
	env := newFakeEnv()
	block := model.SQLBlock{ID: "blk", SQL: "SELECT 1", Connection: "duckdb"}
	env.pending["file:///models/b.semql"] = &Request{SQL: []model.SQLBlock{block}}

	doc := buildDoc(t, env, "source: f is duckdb.table('flights')\nimport 'b.semql'")
	req := doc.Compile(env)
	require.NotNil(t, req)
	assert.Equal(t, "blk", req.SQL[0].ID)
	assert.Equal(t, 1, doc.Executed())
}

func TestDocument_Extending(t *testing.T) {
	env := newFakeEnv()
	prior := model.NewModelDef("file:///models/prior.semql")
	prior.Names = []string{"a"}
	prior.Exports = []string{"a"}
	prior.Contents["a"] = &model.Entry{Kind: model.EntrySource, Source: flightsSchema(), Exported: true}

	doc := buildDoc(t, env, "source: b is a extend { where: distance > 10 }")
	doc.Initialize(prior)
	require.Nil(t, doc.Compile(env))
	assert.Empty(t, messages(env.log))

	m := doc.ModelDef()
	assert.Equal(t, []string{"a", "b"}, m.Names)
	assert.Equal(t, []string{"a", "b"}, m.Exports)
	assert.Empty(t, prior.Contents["a"].Source.Filters)
}
