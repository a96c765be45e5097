package commands

import (
	"github.com/leapstack-labs/semql/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve translations over HTTP",
		Long: `Start an HTTP server answering translation requests.

Endpoints:
  GET  /healthz       liveness
  POST /translate     translate a document
  POST /metadata      document outline and highlights
  POST /completions   completions at a position
  POST /help-context  keyword under a position

Request bodies are JSON: {"url": "...", "docs": {"<url>": "<text>"}}.
Documents not in "docs" are read from disk.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			srv := server.New(server.Config{
				Addr:     cc.Cfg.Serve.Addr,
				MaxConns: cc.Cfg.Serve.MaxConns,
				Conns:    cc.Conns,
				Fetch:    FetchOptions(cc.Cfg),
				Logger:   cc.Logger,
			})
			cc.Renderer.Success("listening on http://" + cc.Cfg.Serve.Addr)
			return srv.Serve(cmd.Context())
		},
	}
	cmd.Flags().String("addr", "", "Address to listen on (default 127.0.0.1:7070)")
	cmd.Flags().Int("max-conns", 0, "Simultaneous connections accepted, 0 for no limit (default 64)")
	return cmd
}
