package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// Set holds the named connections a project reads through, opening each
// one the first time it is asked for. Names are the ones documents use,
// as in "flights is warehouse.table('flights')".
type Set struct {
	mu       sync.Mutex
	configs  map[string]Config
	open     map[string]Connection
	fallback string
	logger   *slog.Logger
}

// NewSet returns a set over configs. Names missing from configs resolve
// to the fallback connection when one is given.
func NewSet(configs map[string]Config, fallback string, logger *slog.Logger) *Set {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Set{
		configs:  configs,
		open:     map[string]Connection{},
		fallback: fallback,
		logger:   logger,
	}
}

// Names returns the configured connection names (sorted).
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.configs))
	for n := range s.configs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get returns the opened connection for name.
func (s *Set) Get(ctx context.Context, name string) (Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := name
	cfg, ok := s.configs[key]
	if !ok && s.fallback != "" {
		key = s.fallback
		cfg, ok = s.configs[key]
	}
	if !ok {
		return nil, fmt.Errorf("no connection named '%s'", name)
	}
	if c, ok := s.open[key]; ok {
		return c, nil
	}

	c, err := New(cfg, s.logger)
	if err != nil {
		return nil, err
	}
	if err := c.Connect(ctx, cfg); err != nil {
		return nil, fmt.Errorf("connection '%s': %w", key, err)
	}
	s.logger.Debug("connection opened", slog.String("name", key), slog.String("type", cfg.Type))
	s.open[key] = c
	return c, nil
}

// Add registers an already opened connection under name.
func (s *Set) Add(name string, c Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.configs[name]; !ok {
		if s.configs == nil {
			s.configs = map[string]Config{}
		}
		s.configs[name] = Config{Type: c.Dialect()}
	}
	s.open[name] = c
}

// Close closes every opened connection.
func (s *Set) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for name, c := range s.open {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing '%s': %w", name, err))
		}
	}
	s.open = map[string]Connection{}
	return errors.Join(errs...)
}
