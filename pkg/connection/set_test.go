package connection

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_OpensLazilyOnce(t *testing.T) {
	fake := &fakeConnection{}
	Register("set_test_fake", func(*slog.Logger) Connection { return fake })

	s := NewSet(map[string]Config{"warehouse": {Type: "set_test_fake"}}, "warehouse", nil)
	assert.Equal(t, []string{"warehouse"}, s.Names())
	assert.Equal(t, 0, fake.connected)

	ctx := context.Background()
	c, err := s.Get(ctx, "warehouse")
	require.NoError(t, err)
	assert.Same(t, fake, c)

	// unknown names fall back to the default connection
	c2, err := s.Get(ctx, "duckdb")
	require.NoError(t, err)
	assert.Same(t, c, c2)
	assert.Equal(t, 1, fake.connected)

	require.NoError(t, s.Close())
	assert.Equal(t, 1, fake.closed)
}

func TestSet_Errors(t *testing.T) {
	Register("set_test_broken", func(*slog.Logger) Connection {
		return &fakeConnection{connectErr: assert.AnError}
	})
	s := NewSet(map[string]Config{
		"broken":  {Type: "set_test_broken"},
		"unknown": {Type: "no_such_type"},
	}, "", nil)
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.EqualError(t, err, "no connection named 'missing'")

	_, err = s.Get(ctx, "broken")
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "connection 'broken'")

	_, err = s.Get(ctx, "unknown")
	var unknown *UnknownConnectionError
	assert.ErrorAs(t, err, &unknown)
}

func TestSet_Add(t *testing.T) {
	fake := &fakeConnection{}
	s := NewSet(nil, "", nil)
	s.Add("mem", fake)

	c, err := s.Get(context.Background(), "mem")
	require.NoError(t, err)
	assert.Same(t, fake, c)
	assert.Equal(t, 0, fake.connected, "added connections are already open")
}
