package ast

import (
	"github.com/google/uuid"
	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/leapstack-labs/semql/pkg/zone"
)

// Source is an element that produces a struct.
type Source interface {
	Element
	// Needs reports data the source waits for before Struct can run.
	Needs(env Env, doc *Document) *Request
	// Struct compiles the source. Failures are logged and yield a struct
	// for which IsErrorStruct is true.
	Struct(env Env, doc *Document) *model.StructDef
}

// TableSource is conn.table('path').
type TableSource struct {
	base
	Connection string
	Path       string
}

func (s *TableSource) ElementType() string { return "table source" }
func (s *TableSource) Children() []Element { return nil }

// Needs is always nil: table schemas are resolved before compiling.
func (s *TableSource) Needs(Env, *Document) *Request { return nil }

func (s *TableSource) Struct(env Env, _ *Document) *model.StructDef {
	entry := env.Table(s.Connection, s.Path)
	switch entry.Status {
	case zone.StatusPresent:
		st := entry.Value.Clone()
		if st == nil {
			st = &model.StructDef{}
		}
		st.Name = s.Path
		st.Connection = s.Connection
		st.Source = model.StructSource{Type: model.SourceTable, TablePath: s.Path}
		loc := s.loc
		st.Location = &loc
		return st
	case zone.StatusError:
		errorf(env, s.loc, "Schema error '%s': %s", s.Path, entry.Message)
	default:
		errorf(env, s.loc, "Schema read failure for '%s'", s.Path)
	}
	return errorStruct()
}

// SQLSource is conn.sql("select ...").
type SQLSource struct {
	base
	Connection string
	SQL        string
}

func (s *SQLSource) ElementType() string { return "sql source" }
func (s *SQLSource) Children() []Element { return nil }

// Block returns the inline SQL block. Its id is derived from the
// connection and the statement text, so the same SQL is fetched once.
func (s *SQLSource) Block() model.SQLBlock {
	loc := s.loc
	return model.SQLBlock{
		ID:         BlockID(s.Connection, s.SQL),
		SQL:        s.SQL,
		Connection: s.Connection,
		Location:   &loc,
	}
}

// BlockID returns the stable id of an inline SQL block.
func BlockID(connection, sql string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(connection+"\x00"+sql)).String()
}

func (s *SQLSource) Needs(env Env, _ *Document) *Request {
	block := s.Block()
	if env.SQLResult(block).Status == zone.StatusNeeded {
		return &Request{SQL: []model.SQLBlock{block}}
	}
	return nil
}

func (s *SQLSource) Struct(env Env, doc *Document) *model.StructDef {
	block := s.Block()
	entry := env.SQLResult(block)
	switch entry.Status {
	case zone.StatusPresent:
		doc.AddSQLBlock(block)
		st := entry.Value.Clone()
		if st == nil {
			st = &model.StructDef{}
		}
		st.Name = block.ID
		st.Connection = s.Connection
		st.Source = model.StructSource{Type: model.SourceSQL, SQL: s.SQL, BlockID: block.ID}
		loc := s.loc
		st.Location = &loc
		return st
	case zone.StatusError:
		errorf(env, s.loc, "Invalid SQL, %s", entry.Message)
	default:
		errorf(env, s.loc, "SQL block was never resolved")
	}
	return errorStruct()
}

// NamedSource refers to a source or query defined in the namespace.
type NamedSource struct {
	base
	Name string
}

func (s *NamedSource) ElementType() string           { return "named source" }
func (s *NamedSource) Children() []Element           { return nil }
func (s *NamedSource) Needs(Env, *Document) *Request { return nil }

func (s *NamedSource) Struct(env Env, doc *Document) *model.StructDef {
	entry := doc.Use(s.Name)
	if entry == nil {
		if !doc.Failed(s.Name) {
			errorf(env, s.loc, "Undefined data source '%s'", s.Name)
		}
		return errorStruct()
	}

	ref := model.DocumentReference{Text: s.Name, Location: s.loc, Definition: entry.Location}
	switch entry.Kind {
	case model.EntrySource:
		ref.Kind = model.RefSource
		env.AddReference(ref)
		return entry.Source.Clone()
	case model.EntryQuery:
		ref.Kind = model.RefQuery
		env.AddReference(ref)
		return entry.Query.OutputStruct(s.Name)
	default:
		errorf(env, s.loc, "'%s' is not a source", s.Name)
		return errorStruct()
	}
}

// QuerySource uses the output of a query as a source.
type QuerySource struct {
	base
	Query QueryElement
}

func (s *QuerySource) ElementType() string { return "query source" }
func (s *QuerySource) Children() []Element { return children(s.Query) }

func (s *QuerySource) Needs(env Env, doc *Document) *Request {
	return s.Query.Needs(env, doc)
}

func (s *QuerySource) Struct(env Env, doc *Document) *model.StructDef {
	q := s.Query.Query(env, doc)
	if q == nil {
		return errorStruct()
	}
	return q.OutputStruct("")
}

// SourceProperty is a property legal inside "extend { }".
type SourceProperty interface {
	Element
	extendSource(env Env, fs *fieldSpace)
}

// ExtendSource adds fields, filters and a primary key to a source.
type ExtendSource struct {
	base
	Base       Source
	Properties []SourceProperty
}

func (s *ExtendSource) ElementType() string { return "extend source" }

func (s *ExtendSource) Children() []Element {
	out := children(s.Base)
	for _, p := range s.Properties {
		out = append(out, p)
	}
	return out
}

func (s *ExtendSource) Needs(env Env, doc *Document) *Request {
	return s.Base.Needs(env, doc)
}

func (s *ExtendSource) Struct(env Env, doc *Document) *model.StructDef {
	st := s.Base.Struct(env, doc)
	if IsErrorStruct(st) {
		return st
	}
	fs := newFieldSpace(st)
	for _, p := range s.Properties {
		p.extendSource(env, fs)
	}
	return st
}

// PrimaryKey is "primary_key: name".
type PrimaryKey struct {
	base
	Field string
}

func (p *PrimaryKey) ElementType() string { return "primary_key" }
func (p *PrimaryKey) Children() []Element { return nil }

func (p *PrimaryKey) extendSource(env Env, fs *fieldSpace) {
	if _, ok := fs.s.Field(p.Field); !ok {
		errorf(env, p.loc, "Primary key '%s' is not a field of the source", p.Field)
		return
	}
	fs.s.PrimaryKey = p.Field
}

// FieldDecl is a named field definition, "name is expr".
type FieldDecl struct {
	base
	Name string
	Expr Expr
}

func (f *FieldDecl) ElementType() string { return "field definition" }
func (f *FieldDecl) Children() []Element { return children(f.Expr) }

// FieldList is a "dimension:" or "measure:" property.
type FieldList struct {
	base
	Kind   model.FieldKind
	Fields []*FieldDecl
}

func (l *FieldList) ElementType() string { return string(l.Kind) }

func (l *FieldList) Children() []Element {
	out := make([]Element, 0, len(l.Fields))
	for _, f := range l.Fields {
		out = append(out, f)
	}
	return out
}

func (l *FieldList) extendSource(env Env, fs *fieldSpace) {
	for _, f := range l.Fields {
		if _, exists := fs.s.Field(f.Name); exists {
			errorf(env, f.loc, "Cannot redefine field '%s'", f.Name)
			continue
		}
		c := fs.compile(env, f.Expr)
		if c.typ() != model.TypeError {
			switch {
			case l.Kind == model.KindDimension && c.aggregate:
				errorf(env, f.loc, "Cannot use an aggregate expression as a dimension")
			case l.Kind == model.KindMeasure && !c.aggregate:
				errorf(env, f.loc, "Cannot use a scalar expression as a measure")
			}
		}
		loc := f.loc
		fs.s.Fields = append(fs.s.Fields, model.FieldDef{
			Name:     f.Name,
			Type:     c.typ(),
			Kind:     l.Kind,
			Expr:     c.expr,
			Location: &loc,
		})
	}
}

// Where is a "where:" property. It filters a source or a query segment.
type Where struct {
	base
	Conditions []Expr
}

func (w *Where) ElementType() string { return "where" }

func (w *Where) Children() []Element {
	out := make([]Element, 0, len(w.Conditions))
	for _, c := range w.Conditions {
		out = append(out, c)
	}
	return out
}

func (w *Where) filters(env Env, fs *fieldSpace) []model.Filter {
	var out []model.Filter
	for _, cond := range w.Conditions {
		if f, ok := fs.filter(env, cond); ok {
			out = append(out, f)
		}
	}
	return out
}

func (w *Where) extendSource(env Env, fs *fieldSpace) {
	fs.s.Filters = append(fs.s.Filters, w.filters(env, fs)...)
}
