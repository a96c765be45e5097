package connection

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Factory creates an unopened connection.
type Factory func(*slog.Logger) Connection

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a connection factory to the registry under a type name.
// Called by connection implementations in their init() functions.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = factory
}

// Get retrieves a connection factory by type name.
func Get(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[strings.ToLower(name)]
	return f, ok
}

// New creates an unopened connection of cfg.Type.
// A nil logger discards output.
func New(cfg Config, logger *slog.Logger) (Connection, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("connection type not specified")
	}
	factory, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownConnectionError{Type: cfg.Type, Available: List()}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return factory(logger), nil
}

// List returns all registered type names (sorted).
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a connection type is registered.
func IsRegistered(name string) bool {
	_, ok := Get(name)
	return ok
}

// UnknownConnectionError is returned when an unknown connection type is requested.
type UnknownConnectionError struct {
	Type      string
	Available []string
}

func (e *UnknownConnectionError) Error() string {
	return fmt.Sprintf("unknown connection type %q\nAvailable connections: %v\nHint: Check connections.<name>.type in semql.yaml", e.Type, e.Available)
}
