package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/semql/internal/cli/output"
	"github.com/leapstack-labs/semql/internal/fetch"
	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/leapstack-labs/semql/pkg/translate"
	"github.com/spf13/cobra"
)

// DocumentExt is the extension of model documents.
const DocumentExt = ".semql"

// watchDebounce coalesces the events of one save.
const watchDebounce = 100 * time.Millisecond

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "compile [file]",
		Short: "Translate a document into its semantic model",
		Long: `Translate a document and everything it imports into a semantic model.

Table and SQL schemas are read through the connections configured in
semql.yaml. Without an argument the document at root_url is compiled.`,
		Example: `  # Compile a document
  semql compile models/flights.semql

  # Print the model as JSON
  semql compile models/flights.semql -o json

  # Recompile on every save
  semql compile models/flights.semql --watch`,
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
			if watch {
				return runWatch(cmd.Context(), cc, url)
			}
			_, err = runCompile(cmd.Context(), cc, url)
			return err
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Recompile when a document changes")
	return cmd
}

// runCompile translates url and renders the result. The translator is
// returned so a watcher can see which documents were read.
func runCompile(ctx context.Context, cc *CommandContext, url string) (*translate.Translator, error) {
	tr := cc.Translator(url)
	resp, err := cc.Resolver.Translate(ctx, tr, nil)
	if err != nil {
		return tr, err
	}

	r := cc.Renderer
	if ok, err := r.Data(resp); ok {
		if err != nil {
			return tr, err
		}
		if resp.Translated == nil {
			return tr, ErrTranslationFailed
		}
		return tr, nil
	}

	if resp.Translated == nil {
		r.Println(tr.PrettyErrors())
		return tr, fmt.Errorf("%w: %d errors", ErrTranslationFailed, len(resp.Errors))
	}
	renderModel(r, url, resp.Translated)
	writeErrors(r, resp.Errors)
	return tr, nil
}

func renderModel(r *output.Renderer, url string, t *translate.Translated) {
	md := t.ModelDef
	r.Header(1, "model")
	r.Println(output.FormatKeyValue("Document", url))
	r.Println(output.FormatKeyValue("Queries", strconv.Itoa(len(t.Queries))))
	r.Println(output.FormatKeyValue("SQL blocks", strconv.Itoa(len(t.SQLBlocks))))
	r.Println()

	rows := make([][]string, 0, len(md.Names))
	for _, name := range md.Names {
		e := md.Contents[name]
		if e == nil {
			continue
		}
		exported := ""
		if e.Exported {
			exported = "yes"
		}
		rows = append(rows, []string{name, string(e.Kind), exported, entryDetail(e)})
	}
	r.Table([]string{"name", "kind", "exported", "from"}, rows)
}

func entryDetail(e *model.Entry) string {
	switch e.Kind {
	case model.EntrySource:
		s := e.Source
		if s == nil {
			return ""
		}
		switch s.Source.Type {
		case model.SourceTable:
			return fmt.Sprintf("%s.table('%s')", s.Connection, s.Source.TablePath)
		case model.SourceSQL:
			return fmt.Sprintf("%s.sql(%s)", s.Connection, s.Source.BlockID)
		case model.SourceQuery:
			return "query"
		}
	case model.EntryQuery:
		if e.Query != nil && e.Query.StructRef != "" {
			return e.Query.StructRef + " -> ..."
		}
		return "query"
	case model.EntryConnection:
		return e.Connection
	}
	return ""
}

// runWatch compiles url, then recompiles whenever one of the documents
// it read changes, until ctx is cancelled.
func runWatch(ctx context.Context, cc *CommandContext, url string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	watched := map[string]bool{}
	compile := func() {
		tr, err := runCompile(ctx, cc, url)
		if err != nil {
			cc.Renderer.Warning(err.Error())
		} else {
			cc.Renderer.Success("compiled " + url)
		}
		for _, dir := range documentDirs(tr) {
			if watched[dir] {
				continue
			}
			if err := watcher.Add(dir); err != nil {
				cc.Logger.Warn("cannot watch directory", "dir", dir, "error", err)
				continue
			}
			watched[dir] = true
		}
		cc.Renderer.Muted("watching for changes...")
	}
	compile()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != DocumentExt {
				continue
			}
			cc.Logger.Debug("document changed", "file", event.Name)
			pending = time.After(watchDebounce)

		case <-pending:
			pending = nil
			compile()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cc.Logger.Error("watcher error", "error", err)
		}
	}
}

// documentDirs returns the directories of every local document the
// translation reached.
func documentDirs(tr *translate.Translator) []string {
	seen := map[string]bool{}
	var dirs []string
	queue := []string{tr.Root().URL()}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		if seen[u] {
			continue
		}
		seen[u] = true

		if path, err := fetch.FilePath(u); err == nil {
			dir := filepath.Dir(path)
			if !seen["dir:"+dir] {
				seen["dir:"+dir] = true
				dirs = append(dirs, dir)
			}
		}
		if t := tr.Translation(u); t != nil {
			queue = append(queue, t.Children()...)
		}
	}
	return dirs
}
