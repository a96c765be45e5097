package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Register connections so validation accepts their types
	_ "github.com/leapstack-labs/semql/pkg/connections/duckdb"
	_ "github.com/leapstack-labs/semql/pkg/connections/postgres"
)

const sampleConfig = `
root_url: models/main.semql
default_connection: warehouse
connections:
  warehouse:
    type: duckdb
    path: data/warehouse.duckdb
    params:
      extensions: [json]
  pg:
    type: postgres
    host: db.internal
    port: 5432
    database: analytics
    user: ${SEMQL_TEST_USER}
    password: ${SEMQL_TEST_UNSET}
fetch:
  concurrency: 8
  timeout: 5s
output: json
`

func writeConfig(t *testing.T, dir, text string) string {
	t.Helper()
	p := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(p, []byte(text), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultServeAddr, cfg.Serve.Addr)
	assert.Equal(t, DefaultMaxConns, cfg.Serve.MaxConns)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 4, cfg.Fetch.Concurrency)
	assert.Empty(t, cfg.Connections)
}

func TestLoad_FileSearchedUpward(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, sampleConfig)
	nested := filepath.Join(root, "models", "deep")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	t.Chdir(nested)
	t.Setenv("SEMQL_TEST_USER", "alice")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	resolvedRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	gotRoot, err := filepath.EvalSymlinks(cfg.ProjectRoot)
	require.NoError(t, err)
	assert.Equal(t, resolvedRoot, gotRoot)

	assert.Equal(t, "models/main.semql", cfg.RootURL)
	assert.Equal(t, "warehouse", cfg.DefaultConnection)
	assert.Equal(t, "json", cfg.Output)
	assert.Equal(t, 8, cfg.Fetch.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)

	wh := cfg.Connections["warehouse"]
	assert.Equal(t, "duckdb", wh.Type)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, "data", "warehouse.duckdb"), wh.Path)
	assert.Equal(t, []any{"json"}, wh.Params["extensions"])

	pg := cfg.Connections["pg"]
	assert.Equal(t, 5432, pg.Port)
	assert.Equal(t, "alice", pg.Username)
	assert.Equal(t, "${SEMQL_TEST_UNSET}", pg.Password)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "output: yaml\nlog_level: info\nfetch:\n  max_rounds: 7\n")
	t.Chdir(t.TempDir())
	t.Setenv("SEMQL_LOG_LEVEL", "debug")
	t.Setenv("SEMQL_FETCH__MAX_ROUNDS", "9")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "auto", "")
	flags.Duration("timeout", 0, "")
	flags.String("addr", "", "")
	require.NoError(t, flags.Parse([]string{"--output", "text", "--timeout", "2s"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Output, "flag beats file")
	assert.Equal(t, "debug", cfg.LogLevel, "env beats file")
	assert.Equal(t, 9, cfg.Fetch.MaxRounds)
	assert.Equal(t, 2*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, DefaultServeAddr, cfg.Serve.Addr, "unset flags are ignored")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		config    string
		errSubstr string
	}{
		{"bad output", "output: xml\n", "invalid output"},
		{"bad log level", "log_level: loud\n", "invalid log_level"},
		{"missing type", "connections:\n  a:\n    path: x\n", "connection 'a': type is required"},
		{"unknown type", "connections:\n  a:\n    type: oracle\n", "unknown connection type"},
		{"unknown default", "default_connection: nope\n", "default_connection 'nope' is not configured"},
		{"negative max conns", "serve:\n  max_conns: -1\n", "serve.max_conns must not be negative"},
		{"bad yaml", "output: [\n", "error reading config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			path := writeConfig(t, dir, tt.config)
			_, err := Load(path, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SEMQL_TEST_HOST", "db.example.com")
	tests := []struct {
		in, want string
	}{
		{"${SEMQL_TEST_HOST}", "db.example.com"},
		{"postgres://${SEMQL_TEST_HOST}:5432", "postgres://db.example.com:5432"},
		{"${SEMQL_TEST_MISSING}", "${SEMQL_TEST_MISSING}"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnvVars(tt.in))
		})
	}
}

func TestResolvePathRelativeTo(t *testing.T) {
	assert.Equal(t, "", resolvePathRelativeTo("", "/p"))
	assert.Equal(t, ":memory:", resolvePathRelativeTo(":memory:", "/p"))
	assert.Equal(t, "/abs/x.db", resolvePathRelativeTo("/abs/x.db", "/p"))
	assert.Equal(t, filepath.Join("/p", "x.db"), resolvePathRelativeTo("x.db", "/p"))
}
