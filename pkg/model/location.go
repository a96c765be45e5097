// Package model defines the compiled, SQL-generation-ready semantic model
// produced by translation, plus the location types shared by diagnostics
// and editor services.
//
// The Golden Rule: pkg/model imports ONLY stdlib and small value-copy
// helpers. Everything else depends on model, not the reverse.
package model

import "fmt"

// Position is a zero-based line and character offset into a document.
type Position struct {
	Line      int `json:"line" yaml:"line"`
	Character int `json:"character" yaml:"character"`
}

// Before reports whether p sorts before o.
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Character < o.Character
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

// Range is a half-open span of a document.
type Range struct {
	Start Position `json:"start" yaml:"start"`
	End   Position `json:"end" yaml:"end"`
}

// Contains reports whether pos falls inside the range. The end position
// is treated as inclusive so a cursor just after a word still matches it.
func (r Range) Contains(pos Position) bool {
	return !pos.Before(r.Start) && !r.End.Before(pos)
}

// Location is a range inside a specific document.
type Location struct {
	URL   string `json:"url" yaml:"url"`
	Range Range  `json:"range" yaml:"range"`
}

// ReferenceKind names what a document reference points at.
type ReferenceKind string

// Reference kinds.
const (
	RefSource   ReferenceKind = "source"
	RefQuery    ReferenceKind = "query"
	RefTable    ReferenceKind = "table"
	RefImport   ReferenceKind = "import"
	RefSQLBlock ReferenceKind = "sqlBlock"
)

// DocumentReference records that the text at Location refers to an entity
// defined at Definition. Used for hover and go-to-definition.
type DocumentReference struct {
	Text       string        `json:"text" yaml:"text"`
	Kind       ReferenceKind `json:"kind" yaml:"kind"`
	Location   Location      `json:"location" yaml:"location"`
	Definition *Location     `json:"definition,omitempty" yaml:"definition,omitempty"`
}
