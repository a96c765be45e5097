package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/semql/pkg/connection"
)

// Output formats.
var validOutputs = map[string]bool{"auto": true, "text": true, "json": true, "yaml": true}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !validOutputs[c.Output] {
		return fmt.Errorf("invalid output %q\nHint: use one of auto, text, json, yaml", c.Output)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	for name, conn := range c.Connections {
		if conn.Type == "" {
			return fmt.Errorf("connection '%s': type is required", name)
		}
		if !connection.IsRegistered(conn.Type) {
			return fmt.Errorf("connection '%s': %w", name, &connection.UnknownConnectionError{
				Type:      conn.Type,
				Available: connection.List(),
			})
		}
	}
	if c.DefaultConnection != "" {
		if _, ok := c.Connections[c.DefaultConnection]; !ok {
			return fmt.Errorf("default_connection '%s' is not configured\nHint: add it under connections in %s", c.DefaultConnection, ConfigFileName)
		}
	}
	if c.Fetch.Concurrency < 0 || c.Fetch.MaxRounds < 0 || c.Fetch.Timeout < 0 {
		return fmt.Errorf("fetch settings must not be negative")
	}
	if c.Serve.MaxConns < 0 {
		return fmt.Errorf("serve.max_conns must not be negative")
	}
	return nil
}

// ParseLogLevel converts a level name to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return l, fmt.Errorf("invalid log_level %q\nHint: use one of debug, info, warn, error", s)
	}
	return l, nil
}
