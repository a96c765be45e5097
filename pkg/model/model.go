package model

import (
	"fmt"
	"strings"

	"github.com/mitchellh/copystructure"
)

// FieldType is the data type of a field or expression.
type FieldType string

// Field types. Native types a connection cannot map are reported as
// TypeSQLNative; TypeError marks an expression that failed to compile so
// follow-on diagnostics can be suppressed.
const (
	TypeString    FieldType = "string"
	TypeNumber    FieldType = "number"
	TypeBoolean   FieldType = "boolean"
	TypeDate      FieldType = "date"
	TypeTimestamp FieldType = "timestamp"
	TypeSQLNative FieldType = "sql native"
	TypeNull      FieldType = "null"
	TypeError     FieldType = "error"
)

// FieldKind distinguishes raw columns from computed fields.
type FieldKind string

// Field kinds.
const (
	KindColumn    FieldKind = "column"
	KindDimension FieldKind = "dimension"
	KindMeasure   FieldKind = "measure"
)

// ExprNode names the shape of an Expr.
type ExprNode string

// Expression node kinds.
const (
	ExprField     ExprNode = "field"
	ExprLiteral   ExprNode = "literal"
	ExprCall      ExprNode = "call"
	ExprAggregate ExprNode = "aggregate"
	ExprBinary    ExprNode = "binary"
	ExprUnary     ExprNode = "unary"
)

// Expr is a compiled expression tree. Field paths are resolved against the
// owning struct, so a code generator can emit SQL without name lookup.
type Expr struct {
	Node  ExprNode  `json:"node" yaml:"node"`
	Type  FieldType `json:"type" yaml:"type"`
	Path  []string  `json:"path,omitempty" yaml:"path,omitempty"`
	Func  string    `json:"func,omitempty" yaml:"func,omitempty"`
	Op    string    `json:"op,omitempty" yaml:"op,omitempty"`
	Value string    `json:"value,omitempty" yaml:"value,omitempty"`
	Args  []*Expr   `json:"args,omitempty" yaml:"args,omitempty"`
}

// FieldDef is one field of a struct.
type FieldDef struct {
	Name     string    `json:"name" yaml:"name"`
	Type     FieldType `json:"type" yaml:"type"`
	Kind     FieldKind `json:"kind" yaml:"kind"`
	Expr     *Expr     `json:"expr,omitempty" yaml:"expr,omitempty"`
	Location *Location `json:"location,omitempty" yaml:"location,omitempty"`
}

// IsAggregate reports whether the field is a measure.
func (f FieldDef) IsAggregate() bool {
	return f.Kind == KindMeasure
}

// Filter is a compiled boolean condition plus the source text it came from.
type Filter struct {
	Source string `json:"source" yaml:"source"`
	Expr   *Expr  `json:"expr" yaml:"expr"`
}

// StructSourceType says where a struct's rows come from.
type StructSourceType string

// Struct source types.
const (
	SourceTable StructSourceType = "table"
	SourceSQL   StructSourceType = "sql"
	SourceQuery StructSourceType = "query"
)

// StructSource describes the origin of a struct.
type StructSource struct {
	Type      StructSourceType `json:"type" yaml:"type"`
	TablePath string           `json:"tablePath,omitempty" yaml:"tablePath,omitempty"`
	SQL       string           `json:"sql,omitempty" yaml:"sql,omitempty"`
	BlockID   string           `json:"blockId,omitempty" yaml:"blockId,omitempty"`
	Query     *Query           `json:"query,omitempty" yaml:"query,omitempty"`
}

// StructDef is a table-like shape: a schema fetched from a connection,
// optionally extended with computed fields and filters.
type StructDef struct {
	Name       string       `json:"name" yaml:"name"`
	As         string       `json:"as,omitempty" yaml:"as,omitempty"`
	Connection string       `json:"connection,omitempty" yaml:"connection,omitempty"`
	Dialect    string       `json:"dialect,omitempty" yaml:"dialect,omitempty"`
	Source     StructSource `json:"source" yaml:"source"`
	Fields     []FieldDef   `json:"fields" yaml:"fields"`
	PrimaryKey string       `json:"primaryKey,omitempty" yaml:"primaryKey,omitempty"`
	Filters    []Filter     `json:"filters,omitempty" yaml:"filters,omitempty"`
	Location   *Location    `json:"location,omitempty" yaml:"location,omitempty"`
}

// Field returns the named field, if present.
func (s *StructDef) Field(name string) (FieldDef, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// Clone returns a deep copy of the struct.
func (s *StructDef) Clone() *StructDef {
	if s == nil {
		return nil
	}
	return mustCopy(s)
}

// OrderBy is one ordering term of a query segment.
type OrderBy struct {
	Field string `json:"field" yaml:"field"`
	Desc  bool   `json:"desc,omitempty" yaml:"desc,omitempty"`
}

// QueryField is one output column of a reduce segment.
type QueryField struct {
	Name string    `json:"name" yaml:"name"`
	Type FieldType `json:"type" yaml:"type"`
	Kind FieldKind `json:"kind" yaml:"kind"`
	// Ref is set when the output is a plain reference to a source field.
	Ref  string `json:"ref,omitempty" yaml:"ref,omitempty"`
	Expr *Expr  `json:"expr,omitempty" yaml:"expr,omitempty"`
}

// Segment is one stage of a query pipeline.
type Segment struct {
	Type    string       `json:"type" yaml:"type"`
	Fields  []QueryField `json:"fields" yaml:"fields"`
	Filters []Filter     `json:"filters,omitempty" yaml:"filters,omitempty"`
	OrderBy []OrderBy    `json:"orderBy,omitempty" yaml:"orderBy,omitempty"`
	Limit   int          `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// ReduceSegment is the only segment type the language produces today.
const ReduceSegment = "reduce"

// Query is a compiled query. StructRef names an exported model entry when
// the query reads from one; otherwise Struct carries the inline shape.
type Query struct {
	Name      string     `json:"name,omitempty" yaml:"name,omitempty"`
	StructRef string     `json:"structRef,omitempty" yaml:"structRef,omitempty"`
	Struct    *StructDef `json:"struct,omitempty" yaml:"struct,omitempty"`
	Pipeline  []Segment  `json:"pipeline" yaml:"pipeline"`
	Location  *Location  `json:"location,omitempty" yaml:"location,omitempty"`
}

// OutputStruct returns the shape produced by the last pipeline segment,
// which lets a query be used as the source of another query.
func (q *Query) OutputStruct(name string) *StructDef {
	out := &StructDef{
		Name:   name,
		Source: StructSource{Type: SourceQuery, Query: q},
	}
	if q.Struct != nil {
		out.Connection = q.Struct.Connection
		out.Dialect = q.Struct.Dialect
	}
	if len(q.Pipeline) == 0 {
		return out
	}
	for _, f := range q.Pipeline[len(q.Pipeline)-1].Fields {
		out.Fields = append(out.Fields, FieldDef{Name: f.Name, Type: f.Type, Kind: KindColumn})
	}
	return out
}

// Clone returns a deep copy of the query.
func (q *Query) Clone() *Query {
	if q == nil {
		return nil
	}
	return mustCopy(q)
}

// EntryKind says what a model entry holds.
type EntryKind string

// Entry kinds.
const (
	EntrySource     EntryKind = "source"
	EntryQuery      EntryKind = "query"
	EntryConnection EntryKind = "connection"
)

// Entry is one named member of a model.
type Entry struct {
	Kind       EntryKind  `json:"kind" yaml:"kind"`
	Source     *StructDef `json:"source,omitempty" yaml:"source,omitempty"`
	Query      *Query     `json:"query,omitempty" yaml:"query,omitempty"`
	Connection string     `json:"connection,omitempty" yaml:"connection,omitempty"`
	Exported   bool       `json:"exported" yaml:"exported"`
	Location   *Location  `json:"location,omitempty" yaml:"location,omitempty"`
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	return mustCopy(e)
}

// ModelDef is the compiled namespace of one document. Names preserves
// insertion order since Contents is a map.
type ModelDef struct {
	Name     string            `json:"name" yaml:"name"`
	Exports  []string          `json:"exports" yaml:"exports"`
	Names    []string          `json:"names" yaml:"names"`
	Contents map[string]*Entry `json:"contents" yaml:"contents"`
}

// NewModelDef returns an empty model.
func NewModelDef(name string) *ModelDef {
	return &ModelDef{
		Name:     name,
		Exports:  []string{},
		Names:    []string{},
		Contents: map[string]*Entry{},
	}
}

// Entry returns the named entry or nil.
func (m *ModelDef) Entry(name string) *Entry {
	if m == nil {
		return nil
	}
	return m.Contents[name]
}

// Exported returns the exported entries in definition order.
func (m *ModelDef) Exported() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.Exports...)
}

// SQLBlock is an inline SQL statement whose result schema must be fetched
// from its connection before the source using it can compile.
type SQLBlock struct {
	ID         string    `json:"id" yaml:"id"`
	SQL        string    `json:"sql" yaml:"sql"`
	Connection string    `json:"connection" yaml:"connection"`
	Location   *Location `json:"location,omitempty" yaml:"location,omitempty"`
}

// TableKey names the schema of table path as read through connection.
// The same path read through two connections is two tables.
func TableKey(connection, path string) string {
	return connection + ":" + path
}

// SplitTableKey reverses TableKey. Connection names never contain a
// colon, so the first one separates the two.
func SplitTableKey(key string) (connection, path string) {
	connection, path, ok := strings.Cut(key, ":")
	if !ok {
		return "", key
	}
	return connection, path
}

func mustCopy[T any](v *T) *T {
	c, err := copystructure.Copy(v)
	if err != nil {
		// Model values are plain data; a failed copy is a programming error.
		panic(fmt.Sprintf("model: deep copy failed: %v", err))
	}
	return c.(*T)
}
