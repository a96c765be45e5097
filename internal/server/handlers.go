package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/leapstack-labs/semql/internal/fetch"
	"github.com/leapstack-labs/semql/pkg/translate"
)

// maxBodyBytes bounds a request body.
const maxBodyBytes = 8 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func(ctx context.Context, res *fetch.Resolver, tr *translate.Translator, req *Request) (any, error) {
		return res.Translate(ctx, tr, req.Extending)
	})
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func(ctx context.Context, res *fetch.Resolver, tr *translate.Translator, _ *Request) (any, error) {
		return res.Metadata(ctx, tr)
	})
}

func (s *Server) handleCompletions(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func(ctx context.Context, res *fetch.Resolver, tr *translate.Translator, req *Request) (any, error) {
		return res.Completions(ctx, tr, req.Position)
	})
}

func (s *Server) handleHelpContext(w http.ResponseWriter, r *http.Request) {
	s.run(w, r, func(ctx context.Context, res *fetch.Resolver, tr *translate.Translator, req *Request) (any, error) {
		return res.HelpContext(ctx, tr, req.Position)
	})
}

type handlerFunc func(context.Context, *fetch.Resolver, *translate.Translator, *Request) (any, error)

// run decodes the request, builds a translator over the request's
// documents and writes whatever fn returns.
func (s *Server) run(w http.ResponseWriter, r *http.Request, fn handlerFunc) {
	var req Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if req.URL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "url is required"})
		return
	}

	opts := []translate.Option{translate.WithLogger(s.logger)}
	if req.Preload != nil {
		opts = append(opts, translate.WithPreload(*req.Preload))
	}
	tr := translate.New(req.URL, opts...)
	res := fetch.New(s.conns, fetch.Overlay(req.Docs, s.read), s.opts, s.logger)

	resp, err := fn(r.Context(), res, tr, &req)
	if err != nil {
		writeJSON(w, statusOf(err), errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case errors.Is(err, fetch.ErrTooManyRounds):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
