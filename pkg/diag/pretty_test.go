package diag

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/stretchr/testify/assert"
)

func TestPretty(t *testing.T) {
	src := "source: a is x\nsource: a is y\n"
	msgs := []Message{
		Errorf(model.Location{URL: "file:///m.semql", Range: model.Range{
			Start: model.Position{Line: 1, Character: 8},
		}}, "Cannot redefine 'a'"),
		{Text: "no location", URL: "file:///m.semql"},
		Errorf(model.Location{URL: "file:///child.semql", Range: model.Range{
			Start: model.Position{Line: 2, Character: 3},
		}}, "child problem"),
	}
	lookup := func(url string) (string, bool) {
		if url == "file:///m.semql" {
			return src, true
		}
		return "", false
	}

	got := Pretty(msgs, lookup)
	want := strings.Join([]string{
		"FILE: file:///m.semql",
		"line 2: Cannot redefine 'a'",
		"  | source: a is y",
		"  |         ^",
		"no location",
		"FILE: file:///child.semql",
		"line 3: char 4: child problem",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestCaretPad(t *testing.T) {
	assert.Equal(t, "\t  ", caretPad("\tab", 3))
	assert.Equal(t, "    ", caretPad("日本x", 6))
	assert.Equal(t, "  ", caretPad("ab", 10))
}
