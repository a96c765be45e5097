// Package ast builds the semantic tree of a SemQL document from its parse
// tree and compiles it, statement by statement, into a model.ModelDef.
//
// Elements never reach out to the pipeline directly. Everything they need
// from outside (schemas, inline SQL results, imported models, the
// diagnostics log) comes through the Env interface.
package ast

import (
	"github.com/leapstack-labs/semql/pkg/diag"
	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/leapstack-labs/semql/pkg/zone"
)

// Element is a node of the semantic tree.
type Element interface {
	Location() model.Location
	// ElementType names the element in diagnostics.
	ElementType() string
	Children() []Element
}

// DocStatement is an element that contributes to the document model.
// Needs reports data the statement is still waiting for; Execute is only
// called once Needs returns nil and runs at most once per statement.
type DocStatement interface {
	Element
	Needs(env Env, doc *Document) *Request
	Execute(env Env, doc *Document)
}

// Request asks the caller for data discovered only while compiling.
type Request struct {
	SQL []model.SQLBlock
}

// merge folds other into r and returns the result. Either may be nil.
func (r *Request) merge(other *Request) *Request {
	if other == nil {
		return r
	}
	if r == nil {
		return other
	}
	r.SQL = append(r.SQL, other.SQL...)
	return r
}

// Env is the translation context an element compiles against.
type Env interface {
	// URL is the document being compiled.
	URL() string
	Log() *diag.Log
	// Table returns the schema zone entry for a table path read through
	// connection.
	Table(connection, path string) zone.Entry[*model.StructDef]
	// SQLResult returns the zone entry for an inline SQL block, registering
	// the block as needed when it was not seen before.
	SQLResult(block model.SQLBlock) zone.Entry[*model.StructDef]
	// ImportNeeds reports data the imported document still waits for.
	ImportNeeds(url string) *Request
	// ImportModel returns the compiled model of an imported document, or
	// false when it could not be translated.
	ImportModel(url string) (*model.ModelDef, bool)
	AddReference(ref model.DocumentReference)
}

// base carries the location every element has.
type base struct {
	loc model.Location
}

func (b *base) Location() model.Location { return b.loc }

func errorf(env Env, loc model.Location, format string, args ...any) {
	env.Log().Log(diag.Errorf(loc, format, args...))
}

// Unimplemented stands in for a parse node the builder has no translation
// for. Its presence means the parser and the builder disagree.
type Unimplemented struct {
	base
	What string
}

func (u *Unimplemented) ElementType() string { return "unimplemented" }
func (u *Unimplemented) Children() []Element { return nil }

// Walk calls fn for el and every descendant in pre-order.
func Walk(el Element, fn func(Element)) {
	if isNil(el) {
		return
	}
	fn(el)
	for _, c := range el.Children() {
		Walk(c, fn)
	}
}

// FindUnimplemented returns every Unimplemented element under root.
func FindUnimplemented(root Element) []*Unimplemented {
	var out []*Unimplemented
	Walk(root, func(el Element) {
		if u, ok := el.(*Unimplemented); ok {
			out = append(out, u)
		}
	})
	return out
}

// Only keeps the elements of els that implement T, in order. Every other
// element is dropped; each offending element type is diagnosed once, at
// its first occurrence.
func Only[T any](log *diag.Log, els []Element, context string) []T {
	out := make([]T, 0, len(els))
	reported := map[string]bool{}
	for _, el := range els {
		if isNil(el) {
			continue
		}
		if t, ok := el.(T); ok {
			out = append(out, t)
			continue
		}
		typ := el.ElementType()
		if reported[typ] {
			continue
		}
		reported[typ] = true
		log.Log(diag.Errorf(el.Location(), "'%s' is not legal in %s", typ, context))
	}
	return out
}

// children collects non-nil elements into a slice.
func children(els ...Element) []Element {
	out := make([]Element, 0, len(els))
	for _, el := range els {
		if !isNil(el) {
			out = append(out, el)
		}
	}
	return out
}

// isNil reports whether el is a nil interface. Builders never store typed
// nil pointers in an Element.
func isNil(el Element) bool {
	return el == nil
}
