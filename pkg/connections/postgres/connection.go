// Package postgres reads schemas from PostgreSQL databases.
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/semql/pkg/connection"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
)

// Connection implements connection.Connection for PostgreSQL.
type Connection struct {
	connection.BaseSQL
}

// New creates a PostgreSQL connection. A nil logger discards output.
func New(logger *slog.Logger) *Connection {
	return &Connection{BaseSQL: connection.NewBaseSQL(logger, "public", connection.DollarPlaceholder)}
}

// Dialect returns the SQL dialect of the connection.
func (c *Connection) Dialect() string {
	return "postgres"
}

// Connect establishes a connection to PostgreSQL.
func (c *Connection) Connect(ctx context.Context, cfg connection.Config) error {
	c.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))
	return c.Open(ctx, "pgx", buildDSN(cfg), cfg)
}

// buildDSN constructs a key=value PostgreSQL connection string.
func buildDSN(cfg connection.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if mode, ok := cfg.Options["sslmode"]; ok {
		sslmode = mode
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}
	if app, ok := cfg.Options["application_name"]; ok {
		dsn += fmt.Sprintf(" application_name=%s", app)
	}
	return dsn
}

var _ connection.Connection = (*Connection)(nil)
