package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leapstack-labs/semql/internal/testutil"
	"github.com/leapstack-labs/semql/pkg/connection"
	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/leapstack-labs/semql/pkg/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memConnection serves schemas from memory and counts requests.
type memConnection struct {
	tables map[string]*model.StructDef
	sql    map[string]*model.StructDef
	calls  atomic.Int32
	delay  time.Duration
}

func (m *memConnection) Connect(context.Context, connection.Config) error { return nil }
func (m *memConnection) Close() error                                     { return nil }
func (m *memConnection) Dialect() string                                  { return "mem" }

func (m *memConnection) FetchTableSchema(ctx context.Context, path string) (*model.StructDef, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if st, ok := m.tables[path]; ok {
		return st, nil
	}
	return nil, errors.New("table " + path + " not found")
}

func (m *memConnection) FetchSQLSchema(_ context.Context, sql string) (*model.StructDef, error) {
	m.calls.Add(1)
	if st, ok := m.sql[sql]; ok {
		return st, nil
	}
	return nil, errors.New("syntax error at or near \"SELEC\"")
}

func memSet(c *memConnection) *connection.Set {
	s := connection.NewSet(nil, "", nil)
	s.Add("duckdb", c)
	return s
}

const mainURL = "file:///p/main.semql"

func TestResolver_Translate(t *testing.T) {
	conn := &memConnection{
		tables: map[string]*model.StructDef{"flights": testutil.Flights()},
		sql:    map[string]*model.StructDef{"SELECT 1 AS one": testutil.Schema("one:number")},
	}
	read := Overlay(map[string]string{
		mainURL:               "import 'lib.semql'\nrun: f -> { group_by: carrier }\nrun: s -> { group_by: one }",
		"file:///p/lib.semql": "source: f is duckdb.table('flights')\nsource: s is duckdb.sql('SELECT 1 AS one')",
	}, nil)
	r := New(memSet(conn), read, Options{}, testutil.NewTestLogger(t))

	resp, err := r.Translate(context.Background(), translate.New(mainURL), nil)
	require.NoError(t, err)
	require.True(t, resp.Final)
	require.NotNil(t, resp.Translated, "%v", resp.Errors)
	assert.Len(t, resp.Translated.Queries, 2)
	assert.Equal(t, int32(2), conn.calls.Load())
}

func TestResolver_FetchErrorsBecomeDiagnostics(t *testing.T) {
	conn := &memConnection{}
	read := Overlay(map[string]string{
		mainURL: "import 'gone.semql'\nsource: f is duckdb.table('flights')\nsource: g is other.table('x')",
	}, nil)
	r := New(memSet(conn), read, Options{}, nil)

	resp, err := r.Translate(context.Background(), translate.New(mainURL), nil)
	require.NoError(t, err)
	require.True(t, resp.Final)
	var texts []string
	for _, m := range resp.Errors {
		texts = append(texts, m.Text)
	}
	assert.Contains(t, texts, "Source for 'file:///p/gone.semql' missing: no document at file:///p/gone.semql")
}

func TestResolver_Fetch(t *testing.T) {
	conn := &memConnection{tables: map[string]*model.StructDef{"a": testutil.Schema("x")}}
	r := New(memSet(conn), Overlay(map[string]string{"file:///d": "text"}, nil), Options{Concurrency: 2}, nil)

	data, err := r.Fetch(context.Background(), translate.Needs{
		Tables:           []string{"duckdb:a", "nowhere:b"},
		TableConnections: map[string]string{"duckdb:a": "duckdb", "nowhere:b": "nowhere"},
		URLs:             []string{"file:///d", "file:///e"},
		CompileSQL:       []model.SQLBlock{{ID: "blk", SQL: "SELEC 1", Connection: "duckdb"}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"file:///d": "text"}, data.URLs)
	assert.Contains(t, data.Errors.URLs, "file:///e")
	assert.Contains(t, data.Tables, "duckdb:a")
	assert.Equal(t, "no connection named 'nowhere'", data.Errors.Tables["nowhere:b"])
	assert.Equal(t, `syntax error at or near "SELEC"`, data.Errors.CompileSQL["blk"])
}

func TestResolver_Timeout(t *testing.T) {
	conn := &memConnection{delay: time.Second}
	r := New(memSet(conn), nil, Options{Timeout: 10 * time.Millisecond}, nil)

	data, err := r.Fetch(context.Background(), translate.Needs{
		Tables:           []string{"duckdb:slow"},
		TableConnections: map[string]string{"duckdb:slow": "duckdb"},
	})
	require.NoError(t, err)
	assert.Contains(t, data.Errors.Tables["duckdb:slow"], "deadline exceeded")
}

func TestResolver_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := New(nil, Overlay(map[string]string{mainURL: "source: a is duckdb.table('t')"}, nil), Options{}, nil)
	_, err := r.Translate(ctx, translate.New(mainURL), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolver_FetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := New(memSet(&memConnection{}), nil, Options{}, nil)
	_, err := r.Fetch(ctx, translate.Needs{
		Tables:           []string{"duckdb:t"},
		TableConnections: map[string]string{"duckdb:t": "duckdb"},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolver_MaxRounds(t *testing.T) {
	read := Overlay(map[string]string{mainURL: "import 'b.semql'", "file:///p/b.semql": "source: b is duckdb.table('t')"}, nil)
	r := New(memSet(&memConnection{}), read, Options{MaxRounds: 1}, nil)
	_, err := r.Translate(context.Background(), translate.New(mainURL), nil)
	assert.ErrorIs(t, err, ErrTooManyRounds)
}

func TestResolver_EditorServices(t *testing.T) {
	ctx := context.Background()
	complete := Overlay(map[string]string{mainURL: "source: a is duckdb.table('t')\nrun: a -> { group_by: x }"}, nil)
	md, err := New(nil, complete, Options{}, nil).Metadata(ctx, translate.New(mainURL))
	require.NoError(t, err)
	require.Len(t, md.Symbols, 2)
	assert.Equal(t, "a", md.Symbols[0].Name)

	typing := New(nil, Overlay(map[string]string{mainURL: "source: a is duckdb.table('t')\nrun: a -> { "}, nil), Options{}, nil)
	comp, err := typing.Completions(ctx, translate.New(mainURL), model.Position{Line: 1, Character: 12})
	require.NoError(t, err)
	assert.NotEmpty(t, comp.Completions)

	help, err := typing.HelpContext(ctx, translate.New(mainURL), model.Position{Line: 0, Character: 2})
	require.NoError(t, err)
	require.NotNil(t, help.HelpContext)
	assert.Equal(t, "source:", help.HelpContext.Token)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.semql")
	require.NoError(t, os.WriteFile(path, []byte("source: a is duckdb.table('t')"), 0o600))

	u, err := FileURL(path)
	require.NoError(t, err)
	text, err := ReadFile(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "source: a is duckdb.table('t')", text)

	back, err := FilePath(u)
	require.NoError(t, err)
	assert.Equal(t, path, back)

	_, err = ReadFile(context.Background(), "https://example.com/a.semql")
	assert.EqualError(t, err, `unsupported URL scheme "https"`)
	_, err = ReadFile(context.Background(), u+".missing")
	assert.Error(t, err)
}

func TestReadFile_Cancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.semql")
	require.NoError(t, os.WriteFile(path, []byte("source: a is duckdb.table('t')"), 0o600))
	u, err := FileURL(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ReadFile(ctx, u)
	assert.ErrorIs(t, err, context.Canceled)
}
