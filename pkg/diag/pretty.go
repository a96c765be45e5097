package diag

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// SourceLookup returns the text of a document, if it is known.
type SourceLookup func(url string) (string, bool)

// Pretty renders messages grouped by document. Each group starts with a
// "FILE: <url>" header; each located message is printed as
//
//	line N: message
//	  | source line
//	  |     ^
//
// When the document text is unknown the message falls back to
// "line N: char C: message". Line and char are printed 1-based.
func Pretty(messages []Message, lookup SourceLookup) string {
	var b strings.Builder
	lines := map[string][]string{}
	inFile := ""
	first := true

	for _, m := range messages {
		if !first {
			b.WriteByte('\n')
		}
		first = false
		if m.URL != inFile {
			fmt.Fprintf(&b, "FILE: %s\n", m.URL)
			inFile = m.URL
		}
		if m.Range == nil {
			b.WriteString(m.Text)
			continue
		}
		lineNo := m.Range.Start.Line
		char := m.Range.Start.Character

		src, cached := lines[m.URL]
		if !cached && lookup != nil {
			if text, ok := lookup(m.URL); ok {
				src = strings.Split(text, "\n")
			}
			lines[m.URL] = src
		}
		if lineNo < 0 || lineNo >= len(src) {
			fmt.Fprintf(&b, "line %d: char %d: %s", lineNo+1, char+1, m.Text)
			continue
		}
		errLine := strings.TrimRight(src[lineNo], "\r")
		fmt.Fprintf(&b, "line %d: %s\n  | %s", lineNo+1, m.Text, errLine)
		if char >= 0 {
			fmt.Fprintf(&b, "\n  | %s^", caretPad(errLine, char))
		}
	}
	return b.String()
}

// caretPad returns the whitespace that places a caret under byte offset
// char of line. Tabs are copied so the caret lines up in a terminal and
// wide runes take two columns.
func caretPad(line string, char int) string {
	if char > len(line) {
		char = len(line)
	}
	var pad strings.Builder
	for _, r := range line[:char] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return pad.String()
}
