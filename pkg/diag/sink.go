package diag

import (
	"context"
	"log/slog"
)

// Sink receives every message as it is logged, for live diagnostics.
type Sink interface {
	Event(Message)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Message)

// Event implements Sink.
func (f SinkFunc) Event(m Message) { f(m) }

// SlogSink mirrors diagnostics onto a structured logger.
type SlogSink struct {
	Logger *slog.Logger
}

// Event implements Sink.
func (s SlogSink) Event(m Message) {
	if s.Logger == nil {
		return
	}
	level := slog.LevelError
	switch m.Severity {
	case SeverityWarn:
		level = slog.LevelWarn
	case SeverityDebug:
		level = slog.LevelDebug
	}
	attrs := []slog.Attr{slog.String("url", m.URL)}
	if m.Range != nil {
		attrs = append(attrs, slog.Int("line", m.Range.Start.Line+1), slog.Int("char", m.Range.Start.Character))
	}
	if m.Tag != "" {
		attrs = append(attrs, slog.String("tag", m.Tag))
	}
	s.Logger.LogAttrs(context.Background(), level, m.Text, attrs...)
}

// MultiSink fans an event out to several sinks.
type MultiSink []Sink

// Event implements Sink.
func (ms MultiSink) Event(m Message) {
	for _, s := range ms {
		if s != nil {
			s.Event(m)
		}
	}
}
