package ast

import (
	"testing"

	"github.com/leapstack-labs/semql/pkg/diag"
	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/leapstack-labs/semql/pkg/parser"
	"github.com/leapstack-labs/semql/pkg/zone"
	"github.com/stretchr/testify/require"
)

const testURL = "file:///models/main.semql"

// fakeEnv is an Env backed by in-memory zones.
type fakeEnv struct {
	log     *diag.Log
	tables  *zone.Zone[*model.StructDef]
	sql     *zone.Zone[*model.StructDef]
	imports map[string]*model.ModelDef
	pending map[string]*Request
	refs    []model.DocumentReference
}

func newFakeEnv() *fakeEnv {
	env := &fakeEnv{
		log:     diag.NewLog(nil),
		tables:  zone.New[*model.StructDef](),
		sql:     zone.New[*model.StructDef](),
		imports: map[string]*model.ModelDef{},
		pending: map[string]*Request{},
	}
	env.tables.Reference("duckdb:flights", nil)
	env.tables.UpdateFrom(map[string]*model.StructDef{"duckdb:flights": flightsSchema()}, nil)
	return env
}

func flightsSchema() *model.StructDef {
	return &model.StructDef{Fields: []model.FieldDef{
		{Name: "id", Type: model.TypeNumber, Kind: model.KindColumn},
		{Name: "carrier", Type: model.TypeString, Kind: model.KindColumn},
		{Name: "distance", Type: model.TypeNumber, Kind: model.KindColumn},
	}}
}

func (e *fakeEnv) URL() string    { return testURL }
func (e *fakeEnv) Log() *diag.Log { return e.log }

func (e *fakeEnv) Table(connection, path string) zone.Entry[*model.StructDef] {
	return e.tables.Entry(model.TableKey(connection, path))
}

func (e *fakeEnv) SQLResult(block model.SQLBlock) zone.Entry[*model.StructDef] {
	e.sql.Reference(block.ID, block.Location)
	return e.sql.Entry(block.ID)
}

func (e *fakeEnv) ImportNeeds(url string) *Request {
	return e.pending[url]
}

func (e *fakeEnv) ImportModel(url string) (*model.ModelDef, bool) {
	m, ok := e.imports[url]
	return m, ok
}

func (e *fakeEnv) AddReference(ref model.DocumentReference) {
	e.refs = append(e.refs, ref)
}

// buildDoc parses and builds text, requiring a clean parse.
func buildDoc(t *testing.T, env *fakeEnv, text string) *Document {
	t.Helper()
	res := parser.Parse(text, parser.RuleDocument)
	require.Empty(t, res.Errors)
	doc, ok := NewBuilder(testURL, res, env.log).Build().(*Document)
	require.True(t, ok)
	return doc
}

// messages returns the text of every logged message.
func messages(log *diag.Log) []string {
	var out []string
	for _, m := range log.Snapshot() {
		out = append(out, m.Text)
	}
	return out
}
