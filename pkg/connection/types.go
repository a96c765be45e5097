package connection

import (
	"strings"

	"github.com/leapstack-labs/semql/pkg/model"
)

var nativeTypes = map[string]model.FieldType{
	"BOOL":    model.TypeBoolean,
	"BOOLEAN": model.TypeBoolean,

	"DATE":                        model.TypeDate,
	"DATETIME":                    model.TypeTimestamp,
	"TIMESTAMP":                   model.TypeTimestamp,
	"TIMESTAMPTZ":                 model.TypeTimestamp,
	"TIMESTAMP WITH TIME ZONE":    model.TypeTimestamp,
	"TIMESTAMP WITHOUT TIME ZONE": model.TypeTimestamp,

	"INT": model.TypeNumber, "INT2": model.TypeNumber, "INT4": model.TypeNumber, "INT8": model.TypeNumber,
	"INTEGER": model.TypeNumber, "UINTEGER": model.TypeNumber,
	"DECIMAL": model.TypeNumber, "NUMERIC": model.TypeNumber, "REAL": model.TypeNumber,
	"FLOAT": model.TypeNumber, "FLOAT4": model.TypeNumber, "FLOAT8": model.TypeNumber,
	"DOUBLE": model.TypeNumber, "DOUBLE PRECISION": model.TypeNumber,

	"TEXT": model.TypeString, "STRING": model.TypeString, "UUID": model.TypeString,
	"CLOB": model.TypeString, "NAME": model.TypeString,
}

// MapType maps a native database type name to a field type. Parameters
// such as "(10,2)" and array suffixes are ignored; anything unknown is
// reported as model.TypeSQLNative.
func MapType(native string) model.FieldType {
	t := strings.ToUpper(strings.TrimSpace(native))
	if i := strings.IndexAny(t, "(["); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	if ft, ok := nativeTypes[t]; ok {
		return ft
	}
	switch {
	case strings.HasSuffix(t, "INT"): // BIGINT, SMALLINT, HUGEINT, UBIGINT...
		return model.TypeNumber
	case strings.Contains(t, "CHAR"): // VARCHAR, CHARACTER VARYING...
		return model.TypeString
	}
	return model.TypeSQLNative
}
