package commands

import (
	"github.com/leapstack-labs/semql/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewCompleteCommand creates the complete command.
func NewCompleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "complete [file]",
		Short:   "List completions at a position",
		Long:    `List the keywords and properties that may be typed at a position of a document.`,
		Example: `  semql complete models/flights.semql --line 4 --col 12`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := position(cmd)
			if err != nil {
				return err
			}
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			url, err := cc.DocumentURL(args)
			if err != nil {
				return err
			}
			resp, err := cc.Resolver.Completions(cmd.Context(), cc.Translator(url), pos)
			if err != nil {
				return err
			}

			r := cc.Renderer
			if ok, err := r.Data(resp); ok {
				return err
			}
			rows := make([][]string, 0, len(resp.Completions))
			for _, c := range resp.Completions {
				rows = append(rows, []string{c.Text, c.Type})
			}
			r.Table([]string{"text", "type"}, rows)
			return nil
		},
	}
	positionFlags(cmd)
	return cmd
}

// NewHelpContextCommand creates the help-context command.
func NewHelpContextCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "help-context [file]",
		Short:   "Show the keyword under a position",
		Long:    `Show the property keyword under a position and the block it belongs to.`,
		Example: `  semql help-context models/flights.semql --line 2 --col 3`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := position(cmd)
			if err != nil {
				return err
			}
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			url, err := cc.DocumentURL(args)
			if err != nil {
				return err
			}
			resp, err := cc.Resolver.HelpContext(cmd.Context(), cc.Translator(url), pos)
			if err != nil {
				return err
			}

			r := cc.Renderer
			if ok, err := r.Data(resp); ok {
				return err
			}
			if resp.HelpContext == nil {
				r.Muted("no keyword at this position")
				return nil
			}
			r.Println(output.FormatKeyValue("Keyword", resp.HelpContext.Token))
			r.Println(output.FormatKeyValue("Context", resp.HelpContext.Type))
			return nil
		},
	}
	positionFlags(cmd)
	return cmd
}
