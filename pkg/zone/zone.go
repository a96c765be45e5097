// Package zone tracks externally supplied data by key. A key is referenced
// while translating, reported as needed until a caller supplies a value or
// an error for it, and never requested again afterwards.
package zone

import "github.com/leapstack-labs/semql/pkg/model"

// Status is the resolution state of a zone key.
type Status int

// Zone key states.
const (
	StatusUnknown Status = iota
	StatusNeeded
	StatusPresent
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusNeeded:
		return "needed"
	case StatusPresent:
		return "present"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is the state of one key.
type Entry[T any] struct {
	Status  Status
	Value   T
	Message string
	// FirstReference is where the key was first asked for, if anywhere.
	FirstReference *model.Location
}

// Zone maps keys to values supplied from outside the pipeline.
// A Zone is not safe for concurrent use.
type Zone[T any] struct {
	entries map[string]*Entry[T]
	order   []string
}

// New returns an empty zone.
func New[T any]() *Zone[T] {
	return &Zone[T]{entries: map[string]*Entry[T]{}}
}

// Define stores a value for key unconditionally. It is used for preloaded
// data, before any translation has referenced the key.
func (z *Zone[T]) Define(key string, value T) {
	e := z.entry(key)
	e.Status = StatusPresent
	e.Value = value
	e.Message = ""
}

// Reference records that key is needed. Keys that are already known keep
// their state; only the first reference location is remembered.
func (z *Zone[T]) Reference(key string, loc *model.Location) {
	e := z.entry(key)
	if e.Status == StatusUnknown {
		e.Status = StatusNeeded
	}
	if e.FirstReference == nil && loc != nil {
		ref := *loc
		e.FirstReference = &ref
	}
}

// Entry returns the state of key. Keys never seen report StatusUnknown.
func (z *Zone[T]) Entry(key string) Entry[T] {
	if e, ok := z.entries[key]; ok {
		return *e
	}
	return Entry[T]{}
}

// Get returns the value for key if it is present.
func (z *Zone[T]) Get(key string) (T, bool) {
	if e, ok := z.entries[key]; ok && e.Status == StatusPresent {
		return e.Value, true
	}
	var zero T
	return zero, false
}

// Undefined returns the keys still waiting for data, in the order they
// were first seen. The result is nil when nothing is outstanding.
func (z *Zone[T]) Undefined() []string {
	var out []string
	for _, k := range z.order {
		if z.entries[k].Status == StatusNeeded {
			out = append(out, k)
		}
	}
	return out
}

// UpdateFrom resolves needed keys from values and errs. Keys that are not
// currently needed are ignored, so a stale or repeated update can never
// overwrite a resolved entry. When a key appears in both maps the value
// wins. It returns the number of keys resolved.
func (z *Zone[T]) UpdateFrom(values map[string]T, errs map[string]string) int {
	n := 0
	for _, k := range z.order {
		e := z.entries[k]
		if e.Status != StatusNeeded {
			continue
		}
		if v, ok := values[k]; ok {
			e.Status = StatusPresent
			e.Value = v
			n++
			continue
		}
		if msg, ok := errs[k]; ok {
			e.Status = StatusError
			e.Message = msg
			n++
		}
	}
	return n
}

// Len returns the number of keys the zone knows about.
func (z *Zone[T]) Len() int {
	return len(z.order)
}

func (z *Zone[T]) entry(key string) *Entry[T] {
	e, ok := z.entries[key]
	if !ok {
		e = &Entry[T]{}
		z.entries[key] = e
		z.order = append(z.order, key)
	}
	return e
}
