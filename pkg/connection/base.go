package connection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/semql/pkg/model"
)

// ErrNotConnected is returned when a connection is used before Connect.
var ErrNotConnected = errors.New("database connection not established")

// BaseSQL provides the database/sql plumbing shared by connections.
// Embed it in concrete connections to get Close and the schema queries.
type BaseSQL struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger

	// DefaultSchema is used for table paths without a schema part.
	DefaultSchema string
	// Placeholder formats the n-th (1-based) bind parameter.
	Placeholder func(n int) string
}

// NewBaseSQL returns a BaseSQL for a database whose unqualified tables
// live in defaultSchema. A nil logger discards output.
func NewBaseSQL(logger *slog.Logger, defaultSchema string, placeholder func(int) string) BaseSQL {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return BaseSQL{Logger: logger, DefaultSchema: defaultSchema, Placeholder: placeholder}
}

// QuestionPlaceholder formats bind parameters as "?".
func QuestionPlaceholder(int) string { return "?" }

// DollarPlaceholder formats bind parameters as "$1", "$2"...
func DollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

// Close closes the database.
func (b *BaseSQL) Close() error {
	if b.DB == nil {
		return nil
	}
	b.Logger.Debug("closing database connection", slog.String("type", b.Cfg.Type))
	err := b.DB.Close()
	b.DB = nil
	return err
}

// IsConnected returns true once Connect succeeded.
func (b *BaseSQL) IsConnected() bool {
	return b.DB != nil
}

// Open opens and pings a database/sql handle.
func (b *BaseSQL) Open(ctx context.Context, driver, dsn string, cfg Config) error {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s connection: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping %s: %w", driver, err)
	}
	b.DB = db
	b.Cfg = cfg
	return nil
}

// ParseQualifiedName splits a table path into schema and name, using
// defaultSchema when the path has no schema part.
func ParseQualifiedName(path, defaultSchema string) (schema, name string) {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[:i], path[i+1:]
	}
	return defaultSchema, path
}

// FetchTableSchema reads a table's columns from information_schema.
func (b *BaseSQL) FetchTableSchema(ctx context.Context, path string) (*model.StructDef, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}
	schema, table := ParseQualifiedName(path, b.defaultSchema())

	//nolint:gosec // placeholders come from the connection, never from input
	query := fmt.Sprintf(`
		SELECT
			column_name,
			data_type
		FROM information_schema.columns
		WHERE table_schema = %s AND table_name = %s
		ORDER BY ordinal_position
	`, b.placeholder(1), b.placeholder(2))

	rows, err := b.DB.QueryContext(ctx, query, schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var col Column
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

	b.Logger.Debug("table schema fetched", slog.String("path", path), slog.Int("columns", len(columns)))
	return TableStruct(b.Cfg, path, columns), nil
}

// FetchSQLSchema describes the result of a statement by running it
// wrapped in a zero-row query and reading the column types.
func (b *BaseSQL) FetchSQLSchema(ctx context.Context, statement string) (*model.StructDef, error) {
	if b.DB == nil {
		return nil, ErrNotConnected
	}
	//nolint:gosec // the statement is the user's own SQL, run unchanged
	query := fmt.Sprintf("SELECT * FROM (%s) AS semql_probe LIMIT 0", strings.TrimRight(strings.TrimSpace(statement), ";"))

	rows, err := b.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to describe statement: %w", err)
	}
	defer func() { _ = rows.Close() }()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}
	columns := make([]Column, 0, len(types))
	for _, ct := range types {
		columns = append(columns, Column{Name: ct.Name(), Type: ct.DatabaseTypeName()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error describing statement: %w", err)
	}
	return SQLStruct(b.Cfg, statement, columns), nil
}

func (b *BaseSQL) defaultSchema() string {
	if b.Cfg.Schema != "" {
		return b.Cfg.Schema
	}
	return b.DefaultSchema
}

func (b *BaseSQL) placeholder(n int) string {
	if b.Placeholder == nil {
		return QuestionPlaceholder(n)
	}
	return b.Placeholder(n)
}
