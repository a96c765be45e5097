package diag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTag(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantText string
		wantTag  string
	}{
		{"plain", "Cannot redefine 'a'", "Cannot redefine 'a'", ""},
		{"tagged", "Cannot redefine 'a' [name-conflict]", "Cannot redefine 'a'", "name-conflict"},
		{"no space", "oops[x]", "oops", "x"},
		{"empty brackets", "oops []", "oops []", ""},
		{"bad tag chars", "oops [two words]", "oops [two words]", ""},
		{"only tag", "[tag]", "", "tag"},
		{"bracket not at end", "a [b] c", "a [b] c", ""},
		{"too short", "]", "]", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, tag := SplitTag(tt.in)
			assert.Equal(t, tt.wantText, text)
			assert.Equal(t, tt.wantTag, tag)
		})
	}
}

func TestSplitTag_Bounded(t *testing.T) {
	// A long run of tag characters without an opening bracket must not be
	// scanned past the bound, and must not produce a tag.
	in := strings.Repeat("a", 1<<20) + "]"
	text, tag := SplitTag(in)
	assert.Equal(t, in, text)
	assert.Empty(t, tag)
}

func TestLog_HasErrors(t *testing.T) {
	log := NewLog(nil)
	assert.False(t, log.HasErrors())

	log.Log(Message{Text: "careful", Severity: SeverityWarn, URL: "a"})
	assert.False(t, log.HasErrors(), "warnings never block")

	log.Log(Message{Text: "trace", Severity: SeverityDebug, URL: "b"})
	assert.True(t, log.HasErrors())
	assert.False(t, log.HasErrorsIn("a"))
	assert.True(t, log.HasErrorsIn("b"))

	log.Reset()
	assert.False(t, log.HasErrors())
	assert.Equal(t, 0, log.Len())
}

func TestLog_SnapshotIsCopy(t *testing.T) {
	log := NewLog(nil)
	log.Log(Message{Text: "one [t1]"})
	snap := log.Snapshot()
	log.Log(Message{Text: "two"})

	require.Len(t, snap, 1)
	assert.Equal(t, "one", snap[0].Text)
	assert.Equal(t, "t1", snap[0].Tag)
	snap[0].Text = "mutated"
	assert.Equal(t, "one", log.Snapshot()[0].Text)
}

func TestLog_Sink(t *testing.T) {
	var seen []string
	log := NewLog(SinkFunc(func(m Message) { seen = append(seen, m.Text) }))
	log.Log(Message{Text: "a"})
	log.Log(Message{Text: "b [tag]"})
	assert.Equal(t, []string{"a", "b"}, seen)
}
