package testutil

import (
	"strings"

	"github.com/leapstack-labs/semql/pkg/model"
)

// Schema builds a table schema from "name:type" column specs. A spec
// without a type is a string column.
func Schema(columns ...string) *model.StructDef {
	s := &model.StructDef{}
	for _, c := range columns {
		name, typ, ok := strings.Cut(c, ":")
		if !ok {
			typ = string(model.TypeString)
		}
		s.Fields = append(s.Fields, model.FieldDef{
			Name: name,
			Type: model.FieldType(typ),
			Kind: model.KindColumn,
		})
	}
	return s
}

// Flights is the schema most tests read from.
func Flights() *model.StructDef {
	return Schema("id:number", "carrier:string", "origin:string", "distance:number", "dep_time:timestamp")
}
