package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/semql/internal/cli/output"
	"github.com/leapstack-labs/semql/internal/config"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var (
		force    bool
		connName string
		connType string
		table    string
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new semql project",
		Long: `Initialize a new semql project with a configuration and a first document.

This creates:
  - semql.yaml with one connection (DuckDB "warehouse" by default)
  - models/main.semql defining a source over one of its tables
  - .gitignore for the database files and REPL history`,
		Example: `  # Initialize in current directory
  semql init

  # Initialize in a new directory
  semql init my-project

  # Read a Postgres database instead
  semql init --type postgres --name analytics --table orders

  # Force overwrite existing files
  semql init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			sc, err := newScaffold(connName, connType, table)
			if err != nil {
				return err
			}
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ModeText)
			return runInit(r, sc, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().StringVar(&connName, "name", "warehouse", "Name of the connection")
	cmd.Flags().StringVar(&connType, "type", "duckdb", "Connection type (duckdb|sqlite|postgres)")
	cmd.Flags().StringVar(&table, "table", "flights", "Table the first source reads")
	_ = cmd.RegisterFlagCompletionFunc("type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"duckdb", "sqlite", "postgres"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func runInit(r *output.Renderer, sc *scaffold, dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, config.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", config.ConfigFileName)
	}

	files, err := sc.write(dir, force)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}
	for _, f := range files {
		r.Println(r.Styles().Success.Render("  created ") + f)
	}

	r.Println("")
	r.Success("semql project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Printf("  1. Point connections.%s at your database in %s\n", sc.Connection, config.ConfigFileName)
	r.Println("  2. Run 'semql connections --check' to test it")
	r.Printf("  3. Run 'semql compile' to translate %s\n", sc.RootURL)

	return nil
}
