// Package main is the semql command.
package main

import (
	"os"

	"github.com/leapstack-labs/semql/internal/cli"

	// Connection types register themselves via init()
	_ "github.com/leapstack-labs/semql/pkg/connections/duckdb"
	_ "github.com/leapstack-labs/semql/pkg/connections/postgres"
	_ "github.com/leapstack-labs/semql/pkg/connections/sqlite"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
