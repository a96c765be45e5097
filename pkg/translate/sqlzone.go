package translate

import (
	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/leapstack-labs/semql/pkg/zone"
)

// SQLZone is the zone of inline SQL result schemas, keyed by block id. It
// remembers each block so needs can carry the statement and connection.
type SQLZone struct {
	*zone.Zone[*model.StructDef]
	blocks map[string]model.SQLBlock
}

// NewSQLZone returns an empty SQL zone.
func NewSQLZone() *SQLZone {
	return &SQLZone{Zone: zone.New[*model.StructDef](), blocks: map[string]model.SQLBlock{}}
}

// ReferenceBlock records that block's result schema is needed.
func (z *SQLZone) ReferenceBlock(block model.SQLBlock) {
	if _, ok := z.blocks[block.ID]; !ok {
		z.blocks[block.ID] = block
	}
	z.Reference(block.ID, block.Location)
}

// UndefinedBlocks returns the blocks still waiting for a schema, in
// first-reference order.
func (z *SQLZone) UndefinedBlocks() []model.SQLBlock {
	ids := z.Undefined()
	out := make([]model.SQLBlock, 0, len(ids))
	for _, id := range ids {
		out = append(out, z.blocks[id])
	}
	return out
}
