package connection

import "github.com/leapstack-labs/semql/pkg/model"

// Column is one column as reported by a database.
type Column struct {
	Name string
	Type string
}

// Fields converts database columns to model fields.
func Fields(columns []Column) []model.FieldDef {
	out := make([]model.FieldDef, 0, len(columns))
	for _, c := range columns {
		out = append(out, model.FieldDef{Name: c.Name, Type: MapType(c.Type), Kind: model.KindColumn})
	}
	return out
}

// TableStruct builds the struct of a table read through cfg.
func TableStruct(cfg Config, path string, columns []Column) *model.StructDef {
	return &model.StructDef{
		Name:       path,
		Connection: cfg.Type,
		Dialect:    cfg.Type,
		Source:     model.StructSource{Type: model.SourceTable, TablePath: path},
		Fields:     Fields(columns),
	}
}

// SQLStruct builds the struct of a statement's result.
func SQLStruct(cfg Config, statement string, columns []Column) *model.StructDef {
	return &model.StructDef{
		Connection: cfg.Type,
		Dialect:    cfg.Type,
		Source:     model.StructSource{Type: model.SourceSQL, SQL: statement},
		Fields:     Fields(columns),
	}
}
