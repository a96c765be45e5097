// Package duckdb reads schemas from DuckDB databases.
package duckdb

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/leapstack-labs/semql/pkg/connection"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Connection implements connection.Connection for DuckDB.
type Connection struct {
	connection.BaseSQL
}

// New creates a DuckDB connection. A nil logger discards output.
func New(logger *slog.Logger) *Connection {
	return &Connection{BaseSQL: connection.NewBaseSQL(logger, "main", connection.QuestionPlaceholder)}
}

// Dialect returns the SQL dialect of the connection.
func (c *Connection) Dialect() string {
	return "duckdb"
}

// Connect opens the database at cfg.Path, or an in-memory database when
// no path is given, then loads extensions and applies settings from
// cfg.Params.
func (c *Connection) Connect(ctx context.Context, cfg connection.Config) error {
	params, err := ParseParams(cfg.Params)
	if err != nil {
		return err
	}
	path := cfg.Path
	if path == "" {
		path = cfg.Database
	}
	if path == "" {
		path = ":memory:"
	}
	c.Logger.Debug("connecting to duckdb", slog.String("path", path))
	if err := c.Open(ctx, "duckdb", path, cfg); err != nil {
		return err
	}
	for _, stmt := range params.Statements() {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			_ = c.Close()
			return fmt.Errorf("failed to run %q: %w", stmt, err)
		}
	}
	return nil
}

// Statements returns the setup statements for the params, extensions
// first, then settings in key order.
func (p Params) Statements() []string {
	var out []string
	for _, ext := range p.Extensions {
		out = append(out, fmt.Sprintf("INSTALL %s", ext), fmt.Sprintf("LOAD %s", ext))
	}
	keys := make([]string, 0, len(p.Settings))
	for k := range p.Settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, fmt.Sprintf("SET %s = '%s'", k, strings.ReplaceAll(p.Settings[k], "'", "''")))
	}
	return out
}

var _ connection.Connection = (*Connection)(nil)
