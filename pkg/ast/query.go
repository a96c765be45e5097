package ast

import (
	"strconv"

	"github.com/leapstack-labs/semql/pkg/model"
)

// QueryElement is an element that produces a query.
type QueryElement interface {
	Element
	Needs(env Env, doc *Document) *Request
	// Query compiles the query, or logs and returns nil.
	Query(env Env, doc *Document) *model.Query
}

// QueryRef names a query defined in the namespace.
type QueryRef struct {
	base
	Name string
}

func (q *QueryRef) ElementType() string           { return "query reference" }
func (q *QueryRef) Children() []Element           { return nil }
func (q *QueryRef) Needs(Env, *Document) *Request { return nil }

func (q *QueryRef) Query(env Env, doc *Document) *model.Query {
	entry := doc.Use(q.Name)
	if entry == nil {
		if !doc.Failed(q.Name) {
			errorf(env, q.loc, "Undefined query '%s'", q.Name)
		}
		return nil
	}
	if entry.Kind != model.EntryQuery || entry.Query == nil {
		errorf(env, q.loc, "'%s' is not a query", q.Name)
		return nil
	}
	env.AddReference(model.DocumentReference{
		Text:       q.Name,
		Kind:       model.RefQuery,
		Location:   q.loc,
		Definition: entry.Location,
	})
	return entry.Query.Clone()
}

// QueryProperty is a property legal inside "-> { }".
type QueryProperty interface {
	Element
	querySegment(env Env, fs *fieldSpace, seg *segmentBuilder)
}

// Pipeline is "source -> { properties }". When Source is itself a
// Pipeline the new segment is appended to its pipeline.
type Pipeline struct {
	base
	Source     Source
	Properties []QueryProperty
}

func (p *Pipeline) ElementType() string { return "query" }

func (p *Pipeline) Children() []Element {
	out := children(p.Source)
	for _, prop := range p.Properties {
		out = append(out, prop)
	}
	return out
}

func (p *Pipeline) Needs(env Env, doc *Document) *Request {
	return p.Source.Needs(env, doc)
}

func (p *Pipeline) Query(env Env, doc *Document) *model.Query {
	var q *model.Query
	var input *model.StructDef

	switch src := p.Source.(type) {
	case *QuerySource:
		q = src.Query.Query(env, doc)
		if q == nil {
			return nil
		}
		input = q.OutputStruct("")
	default:
		input = p.Source.Struct(env, doc)
		if IsErrorStruct(input) {
			return nil
		}
		q = &model.Query{Struct: input}
		if named, ok := p.Source.(*NamedSource); ok {
			if e := doc.Lookup(named.Name); e != nil && e.Kind == model.EntrySource {
				q.StructRef = named.Name
			}
		}
	}

	loc := p.loc
	q.Location = &loc
	seg, ok := p.segment(env, input)
	if !ok {
		return nil
	}
	q.Pipeline = append(q.Pipeline, seg)
	return q
}

// segment compiles the properties of this stage against input.
func (p *Pipeline) segment(env Env, input *model.StructDef) (model.Segment, bool) {
	before := env.Log().Len()
	fs := newFieldSpace(input)
	sb := &segmentBuilder{seg: model.Segment{Type: model.ReduceSegment}, names: map[string]bool{}}

	// order_by refers to output fields, so it runs after everything else
	var deferred []QueryProperty
	for _, prop := range p.Properties {
		if _, ok := prop.(*OrderBy); ok {
			deferred = append(deferred, prop)
			continue
		}
		prop.querySegment(env, fs, sb)
	}
	for _, prop := range deferred {
		prop.querySegment(env, fs, sb)
	}

	if len(sb.seg.Fields) == 0 && !env.Log().ErrorsSince(before) {
		errorf(env, p.loc, "Query has no group_by or aggregate fields")
	}
	return sb.seg, !env.Log().ErrorsSince(before)
}

// segmentBuilder accumulates one reduce segment.
type segmentBuilder struct {
	seg   model.Segment
	names map[string]bool
}

func (sb *segmentBuilder) add(env Env, item *QueryItem, f model.QueryField) {
	if sb.names[f.Name] {
		errorf(env, item.loc, "Output field '%s' is already defined", f.Name)
		return
	}
	sb.names[f.Name] = true
	sb.seg.Fields = append(sb.seg.Fields, f)
}

// QueryItem is one entry of group_by or aggregate: a field name, or a
// name bound to an expression.
type QueryItem struct {
	base
	Name string
	Expr Expr
}

func (i *QueryItem) ElementType() string { return "query field" }
func (i *QueryItem) Children() []Element { return children(i.Expr) }

// GroupBy is "group_by: items".
type GroupBy struct {
	base
	Items []*QueryItem
}

func (g *GroupBy) ElementType() string { return "group_by" }
func (g *GroupBy) Children() []Element { return itemChildren(g.Items) }

func (g *GroupBy) querySegment(env Env, fs *fieldSpace, sb *segmentBuilder) {
	for _, item := range g.Items {
		if item.Expr == nil {
			f, ok := fs.s.Field(item.Name)
			if !ok {
				errorf(env, item.loc, "'%s' is not defined", item.Name)
				continue
			}
			if f.IsAggregate() {
				errorf(env, item.loc, "Cannot group by measure '%s'", item.Name)
				continue
			}
			sb.add(env, item, model.QueryField{Name: item.Name, Type: f.Type, Kind: model.KindDimension, Ref: item.Name})
			continue
		}
		c := fs.compile(env, item.Expr)
		if c.typ() != model.TypeError && c.aggregate {
			errorf(env, item.loc, "Cannot group by an aggregate expression")
			continue
		}
		sb.add(env, item, model.QueryField{Name: item.Name, Type: c.typ(), Kind: model.KindDimension, Expr: c.expr})
	}
}

// Aggregate is "aggregate: items".
type Aggregate struct {
	base
	Items []*QueryItem
}

func (a *Aggregate) ElementType() string { return "aggregate" }
func (a *Aggregate) Children() []Element { return itemChildren(a.Items) }

func (a *Aggregate) querySegment(env Env, fs *fieldSpace, sb *segmentBuilder) {
	for _, item := range a.Items {
		if item.Expr == nil {
			f, ok := fs.s.Field(item.Name)
			if !ok {
				errorf(env, item.loc, "'%s' is not defined", item.Name)
				continue
			}
			if !f.IsAggregate() {
				errorf(env, item.loc, "'%s' is not a measure", item.Name)
				continue
			}
			sb.add(env, item, model.QueryField{Name: item.Name, Type: f.Type, Kind: model.KindMeasure, Ref: item.Name})
			continue
		}
		c := fs.compile(env, item.Expr)
		if c.typ() != model.TypeError && !c.aggregate {
			errorf(env, item.loc, "Aggregate expression required for '%s'", item.Name)
			continue
		}
		sb.add(env, item, model.QueryField{Name: item.Name, Type: c.typ(), Kind: model.KindMeasure, Expr: c.expr})
	}
}

func itemChildren(items []*QueryItem) []Element {
	out := make([]Element, 0, len(items))
	for _, i := range items {
		out = append(out, i)
	}
	return out
}

func (w *Where) querySegment(env Env, fs *fieldSpace, sb *segmentBuilder) {
	sb.seg.Filters = append(sb.seg.Filters, w.filters(env, fs)...)
}

// OrderItem is one ordering term. Exactly one of Field and Column is set;
// Column is 1-based.
type OrderItem struct {
	base
	Field  string
	Column int
	Desc   bool
}

func (o *OrderItem) ElementType() string { return "order item" }
func (o *OrderItem) Children() []Element { return nil }

// OrderBy is "order_by: items".
type OrderBy struct {
	base
	Items []*OrderItem
}

func (o *OrderBy) ElementType() string { return "order_by" }

func (o *OrderBy) Children() []Element {
	out := make([]Element, 0, len(o.Items))
	for _, i := range o.Items {
		out = append(out, i)
	}
	return out
}

func (o *OrderBy) querySegment(env Env, _ *fieldSpace, sb *segmentBuilder) {
	for _, item := range o.Items {
		name := item.Field
		if name == "" {
			if item.Column < 1 || item.Column > len(sb.seg.Fields) {
				errorf(env, item.loc, "order_by column %d is out of range", item.Column)
				continue
			}
			name = sb.seg.Fields[item.Column-1].Name
		} else if !sb.names[name] {
			errorf(env, item.loc, "Unknown field '%s' in order_by", name)
			continue
		}
		sb.seg.OrderBy = append(sb.seg.OrderBy, model.OrderBy{Field: name, Desc: item.Desc})
	}
}

// Limit is "limit: n".
type Limit struct {
	base
	Rows int
}

func (l *Limit) ElementType() string { return "limit" }
func (l *Limit) Children() []Element { return nil }

func (l *Limit) querySegment(_ Env, _ *fieldSpace, sb *segmentBuilder) {
	sb.seg.Limit = l.Rows
}

// parseLimit converts a limit literal, reporting whether it is a positive
// integer.
func parseLimit(text string) (int, bool) {
	n, err := strconv.Atoi(text)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
