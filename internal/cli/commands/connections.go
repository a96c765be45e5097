package commands

import (
	"strings"

	"github.com/leapstack-labs/semql/internal/cli/output"
	"github.com/leapstack-labs/semql/pkg/connection"
	"github.com/spf13/cobra"
)

// connectionInfo describes one configured connection.
type connectionInfo struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Target   string `json:"target,omitempty" yaml:"target,omitempty"`
	Default  bool   `json:"default,omitempty" yaml:"default,omitempty"`
	Verified *bool  `json:"verified,omitempty" yaml:"verified,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewConnectionsCommand creates the connections command.
func NewConnectionsCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "connections",
		Short: "List configured connections",
		Long: `List the connections configured in semql.yaml and the connection
types this build supports. With --check every connection is opened.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			var infos []connectionInfo
			for _, name := range cc.Conns.Names() {
				cfg := cc.Cfg.Connections[name]
				info := connectionInfo{
					Name:    name,
					Type:    cfg.Type,
					Target:  target(cfg),
					Default: name == cc.Cfg.DefaultConnection,
				}
				if check {
					_, err := cc.Conns.Get(cmd.Context(), name)
					ok := err == nil
					info.Verified = &ok
					if err != nil {
						info.Error = err.Error()
					}
				}
				infos = append(infos, info)
			}

			r := cc.Renderer
			if ok, err := r.Data(map[string]any{"connections": infos, "types": connection.List()}); ok {
				return err
			}

			rows := make([][]string, 0, len(infos))
			for _, info := range infos {
				name := info.Name
				if info.Default {
					name += " *"
				}
				status := ""
				if info.Verified != nil {
					status = r.Styles().Success.Render("ok")
					if !*info.Verified {
						status = r.Styles().Error.Render(info.Error)
					}
				}
				rows = append(rows, []string{name, info.Type, info.Target, status})
			}
			if len(rows) == 0 {
				r.Muted("no connections configured")
			} else {
				r.Table([]string{"name", "type", "target", "status"}, rows)
			}
			r.Println(output.FormatKeyValue("Types", strings.Join(connection.List(), ", ")))
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Open every connection")
	return cmd
}

func target(cfg connection.Config) string {
	switch {
	case cfg.Path != "":
		return cfg.Path
	case cfg.Host != "":
		t := cfg.Host
		if cfg.Database != "" {
			t += "/" + cfg.Database
		}
		return t
	}
	return cfg.Database
}
