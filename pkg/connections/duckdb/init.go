package duckdb

import (
	"log/slog"

	"github.com/leapstack-labs/semql/pkg/connection"
)

func init() {
	connection.Register("duckdb", func(logger *slog.Logger) connection.Connection { return New(logger) })
}
