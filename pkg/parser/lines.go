package parser

import (
	"sort"

	"github.com/leapstack-labs/semql/pkg/model"
)

// LineTable holds the byte offset at which each line of a document starts.
type LineTable []int

// NewLineTable computes the line start offsets of text.
func NewLineTable(text string) LineTable {
	lines := LineTable{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	return lines
}

// Position converts a byte offset to a zero-based line and character.
func (lt LineTable) Position(offset int) model.Position {
	if len(lt) == 0 {
		return model.Position{Character: offset}
	}
	// index of the last line starting at or before offset
	line := sort.Search(len(lt), func(i int) bool { return lt[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return model.Position{Line: line, Character: offset - lt[line]}
}

// Offset converts a zero-based position back to a byte offset.
func (lt LineTable) Offset(pos model.Position) int {
	if pos.Line < 0 || len(lt) == 0 {
		return 0
	}
	if pos.Line >= len(lt) {
		return lt[len(lt)-1] + pos.Character
	}
	return lt[pos.Line] + pos.Character
}

// Range returns the range covered by the inclusive token span start..stop.
// The stop token may sit on a later line than the start token; its end is
// located through the table rather than assumed to share a line.
func (r *Result) Range(start, stop int) model.Range {
	first := r.Token(start)
	last := r.Token(stop)
	if stop < start {
		last = first
	}
	return model.Range{
		Start: r.Lines.Position(first.Pos.Offset),
		End:   r.Lines.Position(last.End()),
	}
}

// NodeRange returns the range of a parse tree node.
func (r *Result) NodeRange(n *Node) model.Range {
	return r.Range(n.Start, n.Stop)
}
