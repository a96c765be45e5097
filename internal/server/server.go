// Package server exposes translation over HTTP so editors and tools can
// translate unsaved documents without spawning the CLI.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/leapstack-labs/semql/internal/fetch"
	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/leapstack-labs/semql/pkg/translate"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"
)

// Config holds configuration for the server.
type Config struct {
	Addr     string
	MaxConns int // zero means no limit
	Conns    fetch.Connections
	Read     fetch.Reader
	Fetch    fetch.Options
	Logger   *slog.Logger
}

// Server answers translation requests.
type Server struct {
	addr     string
	maxConns int
	conns    fetch.Connections
	read     fetch.Reader
	opts     fetch.Options
	logger   *slog.Logger
}

// New creates a server. A nil Read serves file:// documents from disk.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	read := cfg.Read
	if read == nil {
		read = fetch.ReadFile
	}
	return &Server{
		addr:     cfg.Addr,
		maxConns: cfg.MaxConns,
		conns:    cfg.Conns,
		read:     read,
		opts:     cfg.Fetch,
		logger:   logger,
	}
}

// Request is the body of every translation endpoint.
type Request struct {
	// URL is the absolute URL of the document to translate.
	URL string `json:"url"`
	// Docs overrides the stored text of documents, keyed by URL.
	Docs map[string]string `json:"docs,omitempty"`
	// Preload seeds schemas and documents the caller already has.
	Preload *translate.UpdateData `json:"preload,omitempty"`
	// Extending seeds the namespace of the root document.
	Extending *model.ModelDef `json:"extending,omitempty"`
	// Position is the cursor for completions and help context.
	Position model.Position `json:"position"`
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		s.requestLogger,
		middleware.Recoverer,
	)

	r.Get("/healthz", s.handleHealth)
	r.Post("/translate", s.handleTranslate)
	r.Post("/metadata", s.handleMetadata)
	r.Post("/completions", s.handleCompletions)
	r.Post("/help-context", s.handleHelpContext)
	return r
}

// Serve listens on the configured address until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("cannot listen on %s: %w", s.addr, err)
	}
	if s.maxConns > 0 {
		ln = netutil.LimitListener(ln, s.maxConns)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting server", "addr", ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("took", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}
