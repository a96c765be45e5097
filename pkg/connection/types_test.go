package connection

import (
	"testing"

	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/stretchr/testify/assert"
)

func TestMapType(t *testing.T) {
	tests := []struct {
		native string
		want   model.FieldType
	}{
		{"BIGINT", model.TypeNumber},
		{"integer", model.TypeNumber},
		{"HUGEINT", model.TypeNumber},
		{"DECIMAL(18,3)", model.TypeNumber},
		{"double precision", model.TypeNumber},
		{"VARCHAR", model.TypeString},
		{"character varying(255)", model.TypeString},
		{"text", model.TypeString},
		{"UUID", model.TypeString},
		{"BOOLEAN", model.TypeBoolean},
		{"date", model.TypeDate},
		{"TIMESTAMP WITH TIME ZONE", model.TypeTimestamp},
		{"DATETIME", model.TypeTimestamp},
		{"INTERVAL", model.TypeSQLNative},
		{"POINT", model.TypeSQLNative},
		{"INTEGER[]", model.TypeNumber},
		{"", model.TypeSQLNative},
	}
	for _, tt := range tests {
		t.Run(tt.native, func(t *testing.T) {
			assert.Equal(t, tt.want, MapType(tt.native))
		})
	}
}
