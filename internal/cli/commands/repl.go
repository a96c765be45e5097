package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/semql/internal/fetch"
	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/leapstack-labs/semql/pkg/token"
	"github.com/leapstack-labs/semql/pkg/translate"
	"github.com/spf13/cobra"
)

const (
	replPrompt     = "semql> "
	replContPrompt = "   ...> "
	historyFile    = ".semql_history"
)

// NewReplCommand creates the repl command.
func NewReplCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl [file]",
		Short: "Translate statements interactively",
		Long: `Start an interactive session. Every input is translated as a new
document extending the model built by the inputs before it.

A file argument, or root_url, seeds the session with its model. Input
continues over several lines until its braces balance.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			return runREPL(cmd, cc, args)
		},
	}
}

func runREPL(cmd *cobra.Command, cc *CommandContext, args []string) error {
	ctx := cmd.Context()
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	s := &replSession{cc: cc, dir: cwd, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}

	if len(args) > 0 || cc.Cfg.RootURL != "" {
		url, err := cc.DocumentURL(args)
		if err != nil {
			return err
		}
		if err := s.load(ctx, url); err != nil {
			return err
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     filepath.Join(cc.Cfg.ProjectRoot, historyFile),
		AutoComplete:    s.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(s.out, "semql REPL. Type .help for commands, .quit to exit")

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if buf.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ".") {
			if quit := s.command(strings.TrimSpace(line)); quit {
				return nil
			}
			continue
		}

		buf.WriteString(line)
		buf.WriteString("\n")
		if braceDepth(buf.String()) > 0 {
			rl.SetPrompt(replContPrompt)
			continue
		}
		rl.SetPrompt(replPrompt)

		input := buf.String()
		buf.Reset()
		if strings.TrimSpace(input) == "" {
			continue
		}
		if err := s.eval(ctx, input); err != nil {
			if ctx.Err() != nil {
				return err
			}
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}
	}
}

// replSession holds the model built by the inputs so far.
type replSession struct {
	cc     *CommandContext
	dir    string
	out    io.Writer
	errOut io.Writer
	model  *model.ModelDef
	inputs int
}

// load seeds the session with the model of url.
func (s *replSession) load(ctx context.Context, url string) error {
	tr := s.cc.Translator(url)
	resp, err := s.cc.Resolver.Translate(ctx, tr, nil)
	if err != nil {
		return err
	}
	if resp.Translated == nil {
		_, _ = fmt.Fprintln(s.errOut, tr.PrettyErrors())
		return fmt.Errorf("%w: %d errors", ErrTranslationFailed, len(resp.Errors))
	}
	s.model = resp.Translated.ModelDef
	_, _ = fmt.Fprintf(s.out, "loaded %s: %s\n", url, strings.Join(s.model.Names, ", "))
	return nil
}

// eval translates text as a document extending the session model. The
// model only changes when the translation succeeds.
func (s *replSession) eval(ctx context.Context, text string) error {
	s.inputs++
	url, err := fetch.FileURL(filepath.Join(s.dir, fmt.Sprintf("repl-%d%s", s.inputs, DocumentExt)))
	if err != nil {
		return err
	}
	tr := s.cc.Translator(url, translate.WithPreload(translate.UpdateData{
		URLs: map[string]string{url: text},
	}))
	resp, err := s.cc.Resolver.Translate(ctx, tr, s.model)
	if err != nil {
		return err
	}
	if resp.Translated == nil {
		_, _ = fmt.Fprintln(s.errOut, tr.PrettyErrors())
		return nil
	}

	var before []string
	if s.model != nil {
		before = s.model.Names
	}
	s.model = resp.Translated.ModelDef
	for _, name := range s.model.Names {
		if e := s.model.Contents[name]; e != nil && !slices.Contains(before, name) {
			_, _ = fmt.Fprintf(s.out, "%s %s %s\n", e.Kind, name, entryDetail(e))
		}
	}
	for _, q := range resp.Translated.Queries {
		_, _ = fmt.Fprintf(s.out, "query over %s\n", q.StructRef)
	}
	writeErrors(s.cc.Renderer, resp.Errors)
	return nil
}

// command runs a dot command and reports whether the session ends.
func (s *replSession) command(line string) bool {
	switch strings.Fields(line)[0] {
	case ".quit", ".exit":
		return true
	case ".help":
		_, _ = fmt.Fprint(s.out, replHelp)
	case ".names":
		if s.model == nil || len(s.model.Names) == 0 {
			_, _ = fmt.Fprintln(s.out, "no names defined")
			break
		}
		for _, name := range s.model.Names {
			e := s.model.Contents[name]
			if e == nil {
				continue
			}
			_, _ = fmt.Fprintf(s.out, "%-10s %-20s %s\n", e.Kind, name, entryDetail(e))
		}
	case ".reset":
		s.model = nil
		_, _ = fmt.Fprintln(s.out, "model cleared")
	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", line)
	}
	return false
}

const replHelp = `Commands:
  .help           Show this help message
  .names          List the names defined so far
  .reset          Forget every definition
  .quit / .exit   Exit the REPL

Input spanning several lines ends when its braces balance.
`

// names lists the session's names for completion.
func (s *replSession) names(string) []string {
	if s.model == nil {
		return nil
	}
	return s.model.Names
}

func (s *replSession) completer() *readline.PrefixCompleter {
	items := []readline.PrefixCompleterInterface{
		readline.PcItem(".help"),
		readline.PcItem(".names"),
		readline.PcItem(".reset"),
		readline.PcItem(".quit"),
		readline.PcItem("source:"),
		readline.PcItem("query:"),
		readline.PcItem("run:", readline.PcItemDynamic(s.names)),
	}
	keywords := token.Keywords()
	slices.Sort(keywords)
	for _, kw := range keywords {
		items = append(items, readline.PcItem(kw))
	}
	return readline.NewPrefixCompleter(items...)
}

// braceDepth returns the number of unclosed braces in text, ignoring
// braces inside quotes.
func braceDepth(text string) int {
	depth := 0
	var quote rune
	for _, r := range text {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '{':
			depth++
		case r == '}':
			depth--
		}
	}
	return depth
}
