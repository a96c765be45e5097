package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/semql/internal/cli/output"
	"github.com/leapstack-labs/semql/internal/config"
	"github.com/leapstack-labs/semql/internal/fetch"
	"github.com/leapstack-labs/semql/pkg/connection"
	"github.com/leapstack-labs/semql/pkg/diag"
	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/leapstack-labs/semql/pkg/translate"
	"github.com/spf13/cobra"
)

// ErrTranslationFailed is returned when a document does not translate.
// The diagnostics have been written by then.
var ErrTranslationFailed = errors.New("translation failed")

type stateKey struct{}

type state struct {
	cfg      *config.Config
	renderer *output.Renderer
	logger   *slog.Logger
}

// WithState stores the loaded config, renderer and logger in ctx.
func WithState(ctx context.Context, cfg *config.Config, r *output.Renderer, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, stateKey{}, &state{cfg: cfg, renderer: r, logger: logger})
}

// NewLogger returns the logger for cfg. Verbose output logs at debug
// level whatever log_level says.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil || cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Conns    *connection.Set
	Resolver *fetch.Resolver
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext over the configured
// connections. Returns the context and a cleanup function that must be
// called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	st, ok := cmd.Context().Value(stateKey{}).(*state)
	if !ok {
		return nil, nil, fmt.Errorf("configuration not loaded")
	}

	conns := connection.NewSet(st.cfg.Connections, st.cfg.DefaultConnection, st.logger)
	res := fetch.New(conns, fetch.ReadFile, FetchOptions(st.cfg), st.logger)

	cleanup := func() {
		if err := conns.Close(); err != nil {
			st.logger.Warn("closing connections", "error", err)
		}
	}

	return &CommandContext{
		Cfg:      st.cfg,
		Logger:   st.logger,
		Conns:    conns,
		Resolver: res,
		Renderer: st.renderer,
	}, cleanup, nil
}

// FetchOptions converts the fetch section of cfg.
func FetchOptions(cfg *config.Config) fetch.Options {
	return fetch.Options{
		Concurrency: cfg.Fetch.Concurrency,
		Timeout:     cfg.Fetch.Timeout,
		MaxRounds:   cfg.Fetch.MaxRounds,
	}
}

// Translator returns a translator for url. Verbose runs stream every
// diagnostic to the log as it is raised.
func (cc *CommandContext) Translator(url string, extra ...translate.Option) *translate.Translator {
	opts := []translate.Option{translate.WithLogger(cc.Logger)}
	if cc.Cfg.Verbose {
		opts = append(opts, translate.WithSink(diag.SlogSink{Logger: cc.Logger}))
	}
	return translate.New(url, append(opts, extra...)...)
}

// DocumentURL resolves the document a command works on: the argument if
// given, otherwise root_url. Paths become file:// URLs; a relative
// root_url is taken relative to the project root.
func (cc *CommandContext) DocumentURL(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return toURL(args[0], "")
	}
	if cc.Cfg.RootURL == "" {
		return "", fmt.Errorf("no document given\nHint: pass a file or set root_url in %s", config.ConfigFileName)
	}
	return toURL(cc.Cfg.RootURL, cc.Cfg.ProjectRoot)
}

func toURL(s, base string) (string, error) {
	if strings.Contains(s, "://") {
		return s, nil
	}
	if base != "" && !filepath.IsAbs(s) {
		s = filepath.Join(base, s)
	}
	return fetch.FileURL(s)
}

// positionFlags registers --line and --col, both 1-based.
func positionFlags(cmd *cobra.Command) {
	cmd.Flags().Int("line", 1, "Line of the cursor (1-based)")
	cmd.Flags().Int("col", 1, "Column of the cursor (1-based)")
}

// position reads --line and --col as a zero-based position.
func position(cmd *cobra.Command) (model.Position, error) {
	line, _ := cmd.Flags().GetInt("line")
	col, _ := cmd.Flags().GetInt("col")
	if line < 1 || col < 1 {
		return model.Position{}, fmt.Errorf("--line and --col start at 1")
	}
	return model.Position{Line: line - 1, Character: col - 1}, nil
}

// writeErrors renders diagnostics in text mode.
func writeErrors(r *output.Renderer, messages []diag.Message) {
	if len(messages) > 0 {
		r.Diagnostics(messages)
	}
}
