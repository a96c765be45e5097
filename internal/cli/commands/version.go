package commands

import (
	"strings"

	"github.com/leapstack-labs/semql/internal/cli/output"
	"github.com/leapstack-labs/semql/pkg/connection"
	"github.com/spf13/cobra"
)

// BuildInfo identifies a semql build.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewVersionCommand creates the version command. Besides the build it
// lists the connection types compiled into the binary.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the semql version, build and the connection types this binary can read schemas from.`,
		Run: func(cmd *cobra.Command, _ []string) {
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ModeText)
			types := "none"
			if names := connection.List(); len(names) > 0 {
				types = strings.Join(names, ", ")
			}
			r.Printf("semql v%s\n", info.Version)
			r.Println(output.FormatKeyValue("Commit", info.Commit))
			r.Println(output.FormatKeyValue("Built", info.Date))
			r.Println(output.FormatKeyValue("Connections", types))
		},
	}
}
