package connection

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConnection serves schemas from memory.
type fakeConnection struct {
	connected  int
	closed     int
	connectErr error
	tables     map[string]*model.StructDef
}

func (f *fakeConnection) Connect(context.Context, Config) error {
	f.connected++
	return f.connectErr
}

func (f *fakeConnection) Close() error {
	f.closed++
	return nil
}

func (f *fakeConnection) Dialect() string { return "fake" }

func (f *fakeConnection) FetchTableSchema(_ context.Context, path string) (*model.StructDef, error) {
	if st, ok := f.tables[path]; ok {
		return st, nil
	}
	return nil, errors.New("table " + path + " not found")
}

func (f *fakeConnection) FetchSQLSchema(context.Context, string) (*model.StructDef, error) {
	return &model.StructDef{}, nil
}

func TestUnknownConnectionError_Error(t *testing.T) {
	err := &UnknownConnectionError{
		Type:      "fake_db",
		Available: []string{"duckdb", "postgres"},
	}
	msg := err.Error()
	assert.Contains(t, msg, "fake_db")
	assert.Contains(t, msg, "duckdb")
	assert.Contains(t, msg, "semql.yaml")
}

func TestRegister(t *testing.T) {
	Register("Test_Connection_Internal", func(_ *slog.Logger) Connection { return &fakeConnection{} })

	assert.True(t, IsRegistered("test_connection_internal"))
	factory, ok := Get("TEST_CONNECTION_INTERNAL")
	require.True(t, ok)
	assert.NotNil(t, factory(nil))
	assert.Contains(t, List(), "test_connection_internal")
}

func TestNew(t *testing.T) {
	_, err := New(Config{}, nil)
	require.Error(t, err)
	assert.Equal(t, "connection type not specified", err.Error())

	_, err = New(Config{Type: "no_such_type"}, nil)
	var unknown *UnknownConnectionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "no_such_type", unknown.Type)
}
