// Package diag implements the diagnostics log shared by every translation
// of one compilation, plus sinks and a pretty printer for its messages.
package diag

// maxTagLen bounds the backward scan for a trailing [tag].
const maxTagLen = 64

// Log is an append-only store of diagnostics. It is owned by the root
// translator and shared by reference with every child translation.
type Log struct {
	messages []Message
	sink     Sink
}

// NewLog creates an empty log. sink may be nil.
func NewLog(sink Sink) *Log {
	return &Log{sink: sink}
}

// SetSink replaces the event sink used to mirror messages.
func (l *Log) SetSink(sink Sink) {
	l.sink = sink
}

// Log appends a message. A trailing "[tag]" on the text is moved into the
// Tag field unless the message already carries one.
func (l *Log) Log(msg Message) {
	if msg.Tag == "" {
		msg.Text, msg.Tag = SplitTag(msg.Text)
	}
	l.messages = append(l.messages, msg)
	if l.sink != nil {
		l.sink.Event(msg)
	}
}

// HasErrors reports whether any message has a severity other than warn.
func (l *Log) HasErrors() bool {
	for i := range l.messages {
		if l.messages[i].IsError() {
			return true
		}
	}
	return false
}

// HasErrorsIn reports whether any blocking message was logged against url.
func (l *Log) HasErrorsIn(url string) bool {
	for i := range l.messages {
		if l.messages[i].URL == url && l.messages[i].IsError() {
			return true
		}
	}
	return false
}

// ErrorsSince reports whether a blocking message was logged after the
// first n messages.
func (l *Log) ErrorsSince(n int) bool {
	for i := n; i < len(l.messages); i++ {
		if l.messages[i].IsError() {
			return true
		}
	}
	return false
}

// Len returns the number of logged messages.
func (l *Log) Len() int {
	return len(l.messages)
}

// Snapshot returns a copy of the log. Responses carry snapshots so they
// stay immutable after being handed to a caller.
func (l *Log) Snapshot() []Message {
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Reset clears the log. Only valid between independent translation attempts.
func (l *Log) Reset() {
	l.messages = nil
}

// SplitTag splits "text [tag]" into ("text", "tag"). The scan walks back
// from the end of the string over at most maxTagLen tag characters, so the
// cost is bounded regardless of input.
func SplitTag(text string) (string, string) {
	end := len(text)
	if end < 3 || text[end-1] != ']' {
		return text, ""
	}
	i := end - 2
	for ; i >= 0 && end-2-i < maxTagLen; i-- {
		c := text[i]
		if c == '[' {
			break
		}
		if !isTagChar(c) {
			return text, ""
		}
	}
	if i < 0 || text[i] != '[' || i == end-2 {
		return text, ""
	}
	tag := text[i+1 : end-1]
	head := i
	for head > 0 && (text[head-1] == ' ' || text[head-1] == '\t') {
		head--
	}
	return text[:head], tag
}

func isTagChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_' || c == '.'
}
