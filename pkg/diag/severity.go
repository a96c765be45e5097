package diag

import "strings"

// Severity indicates the importance of a diagnostic.
type Severity int

// Severity levels for diagnostics.
const (
	// SeverityError blocks translation from producing a model.
	SeverityError Severity = iota
	// SeverityWarn is reported but never blocks translation.
	SeverityWarn
	// SeverityDebug is internal tracing output. It counts as an error for
	// HasErrors because it is only emitted on paths that should not run.
	SeverityDebug
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarn:
		return "warn"
	case SeverityDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityError and false if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, true
	case "warn", "warning":
		return SeverityWarn, true
	case "debug":
		return SeverityDebug, true
	default:
		return SeverityError, false
	}
}

// MarshalText implements encoding.TextMarshaler so severities serialize by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(b []byte) error {
	v, _ := ParseSeverity(string(b))
	*s = v
	return nil
}
