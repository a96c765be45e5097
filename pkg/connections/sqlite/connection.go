// Package sqlite reads schemas from SQLite databases.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/semql/pkg/connection"
	"github.com/leapstack-labs/semql/pkg/model"

	_ "modernc.org/sqlite" // pure Go sqlite driver
)

// Connection implements connection.Connection for SQLite.
type Connection struct {
	connection.BaseSQL
}

// New creates a SQLite connection. A nil logger discards output.
func New(logger *slog.Logger) *Connection {
	return &Connection{BaseSQL: connection.NewBaseSQL(logger, "main", connection.QuestionPlaceholder)}
}

// Dialect returns the SQL dialect of the connection.
func (c *Connection) Dialect() string {
	return "sqlite"
}

// Connect opens the database file at cfg.Path, or an in-memory database
// when no path is given.
func (c *Connection) Connect(ctx context.Context, cfg connection.Config) error {
	path := cfg.Path
	if path == "" {
		path = cfg.Database
	}
	if path == "" {
		path = ":memory:"
	}
	c.Logger.Debug("connecting to sqlite", slog.String("path", path))
	if err := c.Open(ctx, "sqlite", path, cfg); err != nil {
		return err
	}
	// an in-memory database exists per connection
	c.DB.SetMaxOpenConns(1)
	return nil
}

// FetchTableSchema reads a table's columns with pragma_table_info, since
// SQLite has no information_schema.
func (c *Connection) FetchTableSchema(ctx context.Context, path string) (*model.StructDef, error) {
	if c.DB == nil {
		return nil, connection.ErrNotConnected
	}
	schema, table := connection.ParseQualifiedName(path, "main")

	rows, err := c.DB.QueryContext(ctx,
		"SELECT name, type FROM pragma_table_info(?, ?) ORDER BY cid", table, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []connection.Column
	for rows.Next() {
		var col connection.Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", path)
	}
	return connection.TableStruct(c.Cfg, path, columns), nil
}

var _ connection.Connection = (*Connection)(nil)
