package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/leapstack-labs/semql/pkg/diag"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatHeader formats a header. Level 1 headers are title cased and
// underlined with '=', deeper levels with '-'.
func FormatHeader(level int, text string) string {
	rule := "-"
	if level <= 1 {
		text = cases.Title(language.English).String(text)
		rule = "="
	}
	return text + "\n" + strings.Repeat(rule, runewidth.StringWidth(text))
}

// FormatKeyValue formats an indented key/value pair.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("  %-14s %s", key+":", value)
}

// Table writes rows under a title cased header.
func (r *Renderer) Table(header []string, rows [][]string) {
	tw := table.NewWriter()
	tw.SetOutputMirror(r.w)
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Header = text.FormatDefault

	title := cases.Title(language.English)
	h := make(table.Row, len(header))
	for i, col := range header {
		h[i] = title.String(col)
	}
	tw.AppendHeader(h)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		tw.AppendRow(tr)
	}
	tw.Render()
}

// SeverityLabel returns a fixed width, colored severity label.
func (r *Renderer) SeverityLabel(sev diag.Severity) string {
	switch sev {
	case diag.SeverityError:
		return r.styles.Error.Render("error")
	case diag.SeverityWarn:
		return r.styles.Warning.Render("warn ")
	}
	return r.styles.Muted.Render("debug")
}

// Diagnostics writes messages one per line with their location.
func (r *Renderer) Diagnostics(messages []diag.Message) {
	for _, m := range messages {
		loc := m.URL
		if m.Range != nil {
			loc = fmt.Sprintf("%s:%d:%d", m.URL, m.Range.Start.Line+1, m.Range.Start.Character+1)
		}
		r.Printf("%s %s %s\n", r.SeverityLabel(m.Severity), r.styles.Muted.Render(loc), m.Text)
	}
}
