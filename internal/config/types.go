// Package config loads semql project configuration from defaults,
// semql.yaml, SEMQL_* environment variables and command-line flags.
package config

import (
	"time"

	"github.com/leapstack-labs/semql/pkg/connection"
)

// Config file names, searched in this order.
const (
	ConfigFileName    = "semql.yaml"
	ConfigFileNameAlt = "semql.yml"
)

// Defaults.
const (
	DefaultOutput    = "auto" // TTY=text, otherwise json
	DefaultLogLevel  = "warn"
	DefaultServeAddr = "127.0.0.1:7070"
	DefaultMaxConns  = 64
)

// Config is the resolved configuration of a semql invocation.
type Config struct {
	// RootURL is the document translated when a command gets no argument.
	RootURL string `koanf:"root_url"`
	// DefaultConnection serves connection names no entry in Connections
	// matches.
	DefaultConnection string                       `koanf:"default_connection"`
	Connections       map[string]connection.Config `koanf:"connections"`

	Fetch FetchConfig `koanf:"fetch"`
	Serve ServeConfig `koanf:"serve"`

	Output   string `koanf:"output"`
	Verbose  bool   `koanf:"verbose"`
	LogLevel string `koanf:"log_level"`

	// ProjectRoot is the directory holding the config file, or the
	// working directory when there is none.
	ProjectRoot string `koanf:"-"`
}

// FetchConfig tunes how needs are fetched.
type FetchConfig struct {
	Concurrency int           `koanf:"concurrency"`
	Timeout     time.Duration `koanf:"timeout"`
	MaxRounds   int           `koanf:"max_rounds"`
}

// ServeConfig configures the HTTP server.
type ServeConfig struct {
	Addr     string `koanf:"addr"`
	MaxConns int    `koanf:"max_conns"`
}
