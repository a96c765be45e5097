package ast

import (
	"github.com/leapstack-labs/semql/pkg/diag"
	"github.com/leapstack-labs/semql/pkg/model"
)

// Document is the root of a translated document. It owns the namespace
// its statements define into.
type Document struct {
	base
	Statements []DocStatement

	done         []bool
	completed    bool
	model        *model.ModelDef
	failed       map[string]bool
	failedImport bool
	used         map[string]bool
	selected     []*ImportItem
	queries      []*model.Query
	sqlBlocks    []model.SQLBlock
	blockIDs     map[string]bool
}

// NewDocument returns a document over the given statements.
func NewDocument(loc model.Location, statements []DocStatement) *Document {
	d := &Document{
		base:       base{loc: loc},
		Statements: statements,
	}
	d.Initialize(nil)
	return d
}

func (d *Document) ElementType() string { return "document" }

func (d *Document) Children() []Element {
	out := make([]Element, 0, len(d.Statements))
	for _, s := range d.Statements {
		out = append(out, s)
	}
	return out
}

// Initialize resets the namespace, seeding it from extending when given.
// Entries keep the exported state they had in extending.
func (d *Document) Initialize(extending *model.ModelDef) {
	d.done = make([]bool, len(d.Statements))
	d.completed = false
	d.model = model.NewModelDef(d.loc.URL)
	d.failed = map[string]bool{}
	d.failedImport = false
	d.used = map[string]bool{}
	d.selected = nil
	d.queries = nil
	d.sqlBlocks = nil
	d.blockIDs = map[string]bool{}
	if extending == nil {
		return
	}
	for _, name := range extending.Names {
		e := extending.Contents[name].Clone()
		if e == nil {
			continue
		}
		d.model.Names = append(d.model.Names, name)
		d.model.Contents[name] = e
		if e.Exported {
			d.model.Exports = append(d.model.Exports, name)
		}
	}
}

// Compile executes every statement not yet executed, in source order. It
// stops at the first statement that needs more data and returns that
// request; calling Compile again after the data arrives resumes there.
// A nil result means the document is complete.
func (d *Document) Compile(env Env) *Request {
	for i, st := range d.Statements {
		if d.done[i] {
			continue
		}
		if req := st.Needs(env, d); req != nil {
			return req
		}
		st.Execute(env, d)
		d.done[i] = true
	}
	if !d.completed {
		d.warnUnused(env)
	}
	d.completed = true
	return nil
}

// warnUnused reports names picked by a selective import that nothing in
// the document refers to.
func (d *Document) warnUnused(env Env) {
	for _, item := range d.selected {
		if !d.used[item.Name] {
			env.Log().Log(diag.Warnf(item.loc, "'%s' is imported but never used", item.Name))
		}
	}
}

// Completed reports whether every statement has executed.
func (d *Document) Completed() bool {
	return d.completed
}

// Executed returns how many statements have executed so far.
func (d *Document) Executed() int {
	n := 0
	for _, ok := range d.done {
		if ok {
			n++
		}
	}
	return n
}

// Define adds a named entry. Redefining a name is an error and keeps the
// first definition.
func (d *Document) Define(env Env, name string, entry *model.Entry, loc model.Location) bool {
	if _, exists := d.model.Contents[name]; exists {
		errorf(env, loc, "Cannot redefine '%s'", name)
		return false
	}
	d.model.Names = append(d.model.Names, name)
	d.model.Contents[name] = entry
	if entry.Exported {
		d.model.Exports = append(d.model.Exports, name)
	}
	return true
}

// Lookup returns the named entry or nil.
func (d *Document) Lookup(name string) *model.Entry {
	return d.model.Entry(name)
}

// Use looks up name on behalf of a reference to it.
func (d *Document) Use(name string) *model.Entry {
	e := d.model.Entry(name)
	if e != nil {
		d.used[name] = true
	}
	return e
}

// MarkFailed records that the definition of name did not compile, so
// references to it can stay quiet.
func (d *Document) MarkFailed(name string) {
	d.failed[name] = true
}

// MarkImportFailed records that an import of a whole document failed.
// The names it would have defined are unknown, so every undefined name
// is then treated as failed.
func (d *Document) MarkImportFailed() {
	d.failedImport = true
}

// Failed reports whether the definition of name did not compile.
func (d *Document) Failed(name string) bool {
	return d.failed[name] || d.failedImport
}

// AddQuery appends an anonymous top level query.
func (d *Document) AddQuery(q *model.Query) {
	d.queries = append(d.queries, q)
}

// AddSQLBlock records an inline SQL block used by the document.
func (d *Document) AddSQLBlock(b model.SQLBlock) {
	if d.blockIDs[b.ID] {
		return
	}
	d.blockIDs[b.ID] = true
	d.sqlBlocks = append(d.sqlBlocks, b)
}

// ModelDef returns the namespace compiled so far.
func (d *Document) ModelDef() *model.ModelDef {
	return d.model
}

// Queries returns the anonymous top level queries in source order.
func (d *Document) Queries() []*model.Query {
	return d.queries
}

// SQLBlocks returns the inline SQL blocks in first-use order.
func (d *Document) SQLBlocks() []model.SQLBlock {
	return d.sqlBlocks
}
