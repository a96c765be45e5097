// Package fetch answers the needs of a translation: it reads documents,
// asks connections for table and SQL schemas and feeds the results back
// until the translation is final.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/leapstack-labs/semql/pkg/connection"
	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/leapstack-labs/semql/pkg/translate"
	"golang.org/x/sync/errgroup"
)

// ErrTooManyRounds is returned when a translation keeps asking for data
// past the configured number of rounds.
var ErrTooManyRounds = errors.New("translation did not finish")

// Connections resolves connection names used in documents.
type Connections interface {
	Get(ctx context.Context, name string) (connection.Connection, error)
}

// Reader returns the text of the document at url.
type Reader func(ctx context.Context, url string) (string, error)

// Options tunes a Resolver. Zero values select the defaults.
type Options struct {
	// Concurrency bounds the fetches running at once.
	Concurrency int
	// Timeout bounds each single fetch.
	Timeout time.Duration
	// MaxRounds bounds the needs/update rounds of one request.
	MaxRounds int
}

// Defaults.
const (
	DefaultConcurrency = 4
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRounds   = 50
)

// Resolver drives translations to completion.
type Resolver struct {
	conns  Connections
	read   Reader
	opts   Options
	logger *slog.Logger
}

// New returns a resolver reading documents with read and schemas through
// conns. A nil logger discards output.
func New(conns Connections, read Reader, opts Options, logger *slog.Logger) *Resolver {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	if read == nil {
		read = ReadFile
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{conns: conns, read: read, opts: opts, logger: logger}
}

// Fetch gathers everything listed in needs. Individual failures become
// update errors, which the translation reports as diagnostics; only a
// cancelled ctx is returned as an error.
func (r *Resolver) Fetch(ctx context.Context, needs translate.Needs) (translate.UpdateData, error) {
	data := translate.UpdateData{
		Tables:     map[string]*model.StructDef{},
		URLs:       map[string]string{},
		CompileSQL: map[string]*model.StructDef{},
		Errors: translate.UpdateErrors{
			Tables:     map[string]string{},
			URLs:       map[string]string{},
			CompileSQL: map[string]string{},
		},
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)

	for _, u := range needs.URLs {
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(gctx, r.opts.Timeout)
			text, err := r.read(ctx, u)
			cancel()
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				data.Errors.URLs[u] = err.Error()
				return nil
			}
			data.URLs[u] = text
			return nil
		})
	}
	for _, key := range needs.Tables {
		name := needs.TableConnections[key]
		_, path := model.SplitTableKey(key)
		g.Go(func() error {
			st, err := r.schema(gctx, name, func(ctx context.Context, c connection.Connection) (*model.StructDef, error) {
				return c.FetchTableSchema(ctx, path)
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				data.Errors.Tables[key] = err.Error()
				return nil
			}
			data.Tables[key] = st
			return nil
		})
	}
	for _, block := range needs.CompileSQL {
		g.Go(func() error {
			st, err := r.schema(gctx, block.Connection, func(ctx context.Context, c connection.Connection) (*model.StructDef, error) {
				return c.FetchSQLSchema(ctx, block.SQL)
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				data.Errors.CompileSQL[block.ID] = err.Error()
				return nil
			}
			data.CompileSQL[block.ID] = st
			return nil
		})
	}

	// The goroutines record their failures in data and always return nil.
	if err := g.Wait(); err != nil {
		return data, err
	}
	if err := ctx.Err(); err != nil {
		return data, err
	}
	r.logger.Debug("fetch round done",
		slog.Int("urls", len(needs.URLs)), slog.Int("tables", len(needs.Tables)), slog.Int("sql", len(needs.CompileSQL)))
	return data, nil
}

// schema opens the named connection and runs fn on it, bounded by the
// fetch timeout.
func (r *Resolver) schema(ctx context.Context, conn string, fn func(context.Context, connection.Connection) (*model.StructDef, error)) (*model.StructDef, error) {
	if r.conns == nil {
		return nil, fmt.Errorf("no connection named '%s'", conn)
	}
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()
	c, err := r.conns.Get(ctx, conn)
	if err != nil {
		return nil, err
	}
	return fn(ctx, c)
}

// resolve repeats step, fetching its needs into tr in between, until
// it is final.
func resolve[R any](ctx context.Context, r *Resolver, tr *translate.Translator, step func() (R, translate.Needs, bool)) (R, error) {
	var zero R
	for round := 1; round <= r.opts.MaxRounds; round++ {
		resp, needs, final := step()
		if final {
			return resp, nil
		}
		r.logger.Debug("resolving needs", slog.Int("round", round))
		data, err := r.Fetch(ctx, needs)
		if err != nil {
			return zero, err
		}
		tr.Update(data)
	}
	return zero, fmt.Errorf("%w after %d rounds", ErrTooManyRounds, r.opts.MaxRounds)
}

// Translate drives tr until its translation is final.
func (r *Resolver) Translate(ctx context.Context, tr *translate.Translator, extending *model.ModelDef) (*translate.TranslateResponse, error) {
	return resolve(ctx, r, tr, func() (*translate.TranslateResponse, translate.Needs, bool) {
		resp := tr.Translate(extending)
		return resp, resp.Needs, resp.Final
	})
}

// Metadata drives tr until the outline of its root document is known.
func (r *Resolver) Metadata(ctx context.Context, tr *translate.Translator) (*translate.MetadataResponse, error) {
	return resolve(ctx, r, tr, func() (*translate.MetadataResponse, translate.Needs, bool) {
		resp := tr.Metadata()
		return resp, resp.Needs, resp.Final
	})
}

// Completions drives tr until completions at pos are known.
func (r *Resolver) Completions(ctx context.Context, tr *translate.Translator, pos model.Position) (*translate.CompletionsResponse, error) {
	return resolve(ctx, r, tr, func() (*translate.CompletionsResponse, translate.Needs, bool) {
		resp := tr.Completions(pos)
		return resp, resp.Needs, resp.Final
	})
}

// HelpContext drives tr until the help context at pos is known.
func (r *Resolver) HelpContext(ctx context.Context, tr *translate.Translator, pos model.Position) (*translate.HelpContextResponse, error) {
	return resolve(ctx, r, tr, func() (*translate.HelpContextResponse, translate.Needs, bool) {
		resp := tr.HelpContext(pos)
		return resp, resp.Needs, resp.Final
	})
}
