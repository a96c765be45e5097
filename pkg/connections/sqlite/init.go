package sqlite

import (
	"log/slog"

	"github.com/leapstack-labs/semql/pkg/connection"
)

func init() {
	connection.Register("sqlite", func(logger *slog.Logger) connection.Connection { return New(logger) })
}
