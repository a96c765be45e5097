package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/semql/pkg/walk"
	"github.com/spf13/cobra"
)

// NewSymbolsCommand creates the symbols command.
func NewSymbolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "symbols [file]",
		Short: "Show the outline of a document",
		Long: `Show the sources, queries and fields a document defines.

Only the document itself is parsed; imports and schemas are not read.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			url, err := cc.DocumentURL(args)
			if err != nil {
				return err
			}
			resp, err := cc.Resolver.Metadata(cmd.Context(), cc.Translator(url))
			if err != nil {
				return err
			}

			r := cc.Renderer
			if ok, err := r.Data(resp); ok {
				return err
			}
			var rows [][]string
			for _, s := range resp.Symbols {
				rows = appendSymbol(rows, s, 0)
			}
			r.Table([]string{"name", "type", "at"}, rows)
			writeErrors(r, resp.Errors)
			return nil
		},
	}
}

func appendSymbol(rows [][]string, s walk.Symbol, depth int) [][]string {
	at := fmt.Sprintf("%d:%d", s.Range.Start.Line+1, s.Range.Start.Character+1)
	rows = append(rows, []string{strings.Repeat("  ", depth) + s.Name, s.Type, at})
	for _, c := range s.Children {
		rows = appendSymbol(rows, c, depth+1)
	}
	return rows
}
