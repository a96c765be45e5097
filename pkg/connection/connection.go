// Package connection defines how semql reads schemas from databases.
//
// A translation asks for the schema of a table path or of an inline SQL
// statement together with the name of the connection it is read through.
// Concrete connections live in pkg/connections subdirectories and
// register themselves by type name.
package connection

import (
	"context"

	"github.com/leapstack-labs/semql/pkg/model"
)

// Config holds the configuration for opening one connection.
type Config struct {
	Type     string            `koanf:"type" json:"type" yaml:"type"`
	Path     string            `koanf:"path" json:"path,omitempty" yaml:"path,omitempty"`
	Host     string            `koanf:"host" json:"host,omitempty" yaml:"host,omitempty"`
	Port     int               `koanf:"port" json:"port,omitempty" yaml:"port,omitempty"`
	Database string            `koanf:"database" json:"database,omitempty" yaml:"database,omitempty"`
	Username string            `koanf:"user" json:"user,omitempty" yaml:"user,omitempty"`
	Password string            `koanf:"password" json:"-" yaml:"-"`
	Schema   string            `koanf:"schema" json:"schema,omitempty" yaml:"schema,omitempty"`
	Options  map[string]string `koanf:"options" json:"options,omitempty" yaml:"options,omitempty"`
	Params   map[string]any    `koanf:"params" json:"params,omitempty" yaml:"params,omitempty"`
}

// Connection reads schemas from one database.
type Connection interface {
	// Connect opens the database described by cfg.
	Connect(ctx context.Context, cfg Config) error

	// Close releases the database.
	Close() error

	// Dialect names the SQL dialect spoken by the database.
	Dialect() string

	// FetchTableSchema returns the columns of a table. path is either
	// "table" or "schema.table".
	FetchTableSchema(ctx context.Context, path string) (*model.StructDef, error)

	// FetchSQLSchema returns the shape of the rows a statement produces,
	// without reading any of them.
	FetchSQLSchema(ctx context.Context, sql string) (*model.StructDef, error)
}
