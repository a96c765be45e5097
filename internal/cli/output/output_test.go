package output

import (
	"bytes"
	"testing"

	"github.com/leapstack-labs/semql/pkg/diag"
	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_EffectiveMode(t *testing.T) {
	tests := []struct {
		mode Mode
		want Mode
	}{
		{ModeAuto, ModeJSON}, // a buffer is not a terminal
		{"", ModeJSON},
		{ModeText, ModeText},
		{ModeJSON, ModeJSON},
		{ModeYAML, ModeYAML},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, tt.mode)
			assert.Equal(t, tt.want, r.EffectiveMode())
			assert.False(t, r.IsTTY())
		})
	}
}

func TestRenderer_Data(t *testing.T) {
	v := map[string]any{"name": "flights", "fields": []string{"carrier"}}

	var jsonOut bytes.Buffer
	ok, err := NewRenderer(&jsonOut, &bytes.Buffer{}, ModeJSON).Data(v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"name":"flights","fields":["carrier"]}`, jsonOut.String())

	var yamlOut bytes.Buffer
	ok, err = NewRenderer(&yamlOut, &bytes.Buffer{}, ModeYAML).Data(v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, yamlOut.String(), "name: flights")
	assert.Contains(t, yamlOut.String(), "- carrier")

	var textOut bytes.Buffer
	ok, err = NewRenderer(&textOut, &bytes.Buffer{}, ModeText).Data(v)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, textOut.String())
}

func TestFormatHeader(t *testing.T) {
	assert.Equal(t, "Symbols In Main\n===============", FormatHeader(1, "symbols in main"))
	assert.Equal(t, "flights\n-------", FormatHeader(2, "flights"))
}

func TestFormatKeyValue(t *testing.T) {
	assert.Equal(t, "  Exports:       a, b", FormatKeyValue("Exports", "a, b"))
}

func TestRenderer_Table(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &bytes.Buffer{}, ModeText)
	r.Table([]string{"name", "type"}, [][]string{{"carrier", "string"}, {"n", "number"}})

	s := out.String()
	assert.Contains(t, s, "Name")
	assert.Contains(t, s, "Type")
	assert.Contains(t, s, "carrier")
	assert.Contains(t, s, "number")
}

func TestRenderer_Diagnostics(t *testing.T) {
	var out bytes.Buffer
	r := NewRenderer(&out, &bytes.Buffer{}, ModeText)
	r.Diagnostics([]diag.Message{
		{
			Text:     "'x' is not defined",
			URL:      "file:///m/main.semql",
			Range:    &model.Range{Start: model.Position{Line: 2, Character: 4}},
			Severity: diag.SeverityError,
		},
		{Text: "unused", URL: "file:///m/main.semql", Severity: diag.SeverityWarn},
	})

	assert.Equal(t,
		"error file:///m/main.semql:3:5 'x' is not defined\n"+
			"warn  file:///m/main.semql unused\n",
		out.String())
}

func TestRenderer_StatusLines(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRenderer(&out, &errOut, ModeText)
	r.Success("compiled")
	r.Warning("slow")
	r.Muted("watching")

	assert.Empty(t, out.String())
	assert.Equal(t, "✓ compiled\n! slow\nwatching\n", errOut.String())
}
