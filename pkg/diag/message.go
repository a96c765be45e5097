package diag

import (
	"fmt"

	"github.com/leapstack-labs/semql/pkg/model"
)

// Message is one diagnostic.
type Message struct {
	Text     string       `json:"message" yaml:"message"`
	URL      string       `json:"url,omitempty" yaml:"url,omitempty"`
	Range    *model.Range `json:"range,omitempty" yaml:"range,omitempty"`
	Severity Severity     `json:"severity" yaml:"severity"`
	Tag      string       `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// At returns a message located at loc.
func At(loc model.Location, sev Severity, text string) Message {
	r := loc.Range
	return Message{Text: text, URL: loc.URL, Range: &r, Severity: sev}
}

// Errorf returns an error-severity message located at loc.
func Errorf(loc model.Location, format string, args ...any) Message {
	return At(loc, SeverityError, fmt.Sprintf(format, args...))
}

// Warnf returns a warning located at loc.
func Warnf(loc model.Location, format string, args ...any) Message {
	return At(loc, SeverityWarn, fmt.Sprintf(format, args...))
}

// IsError reports whether the message blocks translation.
func (m Message) IsError() bool {
	return m.Severity != SeverityWarn
}

func (m Message) String() string {
	if m.Range != nil {
		return fmt.Sprintf("%s:%d:%d: %s: %s", m.URL, m.Range.Start.Line+1, m.Range.Start.Character+1, m.Severity, m.Text)
	}
	if m.URL != "" {
		return fmt.Sprintf("%s: %s: %s", m.URL, m.Severity, m.Text)
	}
	return fmt.Sprintf("%s: %s", m.Severity, m.Text)
}
