// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite" // pure Go sqlite driver
)

// FlightsDocument defines a source over the flights table.
const FlightsDocument = `source: flights is warehouse.table('flights') extend {
  measure: flight_count is count()
}
`

// MainDocument imports FlightsDocument and queries it.
const MainDocument = `import 'flights.semql'
run: flights -> { group_by: carrier aggregate: flight_count }
`

// SetupTestProject creates a temporary project: a sqlite database with
// a flights table, a semql.yaml reading it as "warehouse" and two
// documents under models/. Returns the project directory.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "models"), 0o750))

	db, err := sql.Open("sqlite", filepath.Join(tmpDir, "data.db"))
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE flights (
		id INTEGER,
		carrier TEXT,
		origin VARCHAR(3),
		distance REAL,
		dep_time TIMESTAMP
	)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	config := `root_url: models/main.semql
default_connection: warehouse
connections:
  warehouse:
    type: sqlite
    path: data.db
`
	writeFile(t, filepath.Join(tmpDir, "semql.yaml"), config)
	writeFile(t, filepath.Join(tmpDir, "models", "flights.semql"), FlightsDocument)
	writeFile(t, filepath.Join(tmpDir, "models", "main.semql"), MainDocument)
	return tmpDir
}

// WriteDocument writes a document under the project's models/ directory
// and returns its path.
func WriteDocument(t *testing.T, projectDir, name, text string) string {
	t.Helper()
	path := filepath.Join(projectDir, "models", name)
	writeFile(t, path, text)
	return path
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
