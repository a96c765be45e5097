package translate

import (
	"sort"

	"github.com/leapstack-labs/semql/pkg/model"
)

// ReferenceList records every reference made by one document, ordered by
// position, for hover and go-to-definition.
type ReferenceList struct {
	refs []model.DocumentReference
}

// Add inserts a reference, keeping the list sorted by start position. A
// reference already recorded at the same range is replaced.
func (l *ReferenceList) Add(ref model.DocumentReference) {
	start := ref.Location.Range.Start
	i := sort.Search(len(l.refs), func(i int) bool {
		return !l.refs[i].Location.Range.Start.Before(start)
	})
	if i < len(l.refs) && l.refs[i].Location.Range == ref.Location.Range {
		l.refs[i] = ref
		return
	}
	l.refs = append(l.refs, model.DocumentReference{})
	copy(l.refs[i+1:], l.refs[i:])
	l.refs[i] = ref
}

// Find returns the innermost reference containing pos.
func (l *ReferenceList) Find(pos model.Position) (model.DocumentReference, bool) {
	var best model.DocumentReference
	found := false
	for _, r := range l.refs {
		if pos.Before(r.Location.Range.Start) {
			break
		}
		if r.Location.Range.Contains(pos) {
			best, found = r, true
		}
	}
	return best, found
}

// All returns the references in position order.
func (l *ReferenceList) All() []model.DocumentReference {
	return append([]model.DocumentReference(nil), l.refs...)
}

// Len returns the number of references.
func (l *ReferenceList) Len() int {
	return len(l.refs)
}
