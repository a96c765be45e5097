package walk

import (
	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/leapstack-labs/semql/pkg/parser"
)

// Symbol types.
const (
	SymbolSource       = "source"
	SymbolQuery        = "query"
	SymbolUnnamedQuery = "unnamed_query"
	SymbolField        = "field"
)

// Symbol is one entry of the document outline.
type Symbol struct {
	Name     string      `json:"name" yaml:"name"`
	Type     string      `json:"type" yaml:"type"`
	Range    model.Range `json:"range" yaml:"range"`
	Children []Symbol    `json:"children" yaml:"children"`
}

// Symbols returns the outline of a document: defined sources and queries,
// anonymous run queries, and the fields each of them declares.
func Symbols(res *parser.Result) []Symbol {
	out := []Symbol{}
	if res == nil || res.Root == nil {
		return out
	}
	for _, st := range res.Root.Children {
		var sym Symbol
		switch st.Kind {
		case parser.KindDefineSource:
			sym = Symbol{Name: st.Text, Type: SymbolSource}
		case parser.KindDefineQuery:
			sym = Symbol{Name: st.Text, Type: SymbolQuery}
		case parser.KindRun:
			sym = Symbol{Type: SymbolUnnamedQuery}
		default:
			continue
		}
		sym.Range = res.NodeRange(st)
		sym.Children = fieldSymbols(res, st)
		out = append(out, sym)
	}
	return out
}

// fieldSymbols collects named fields declared anywhere under n.
func fieldSymbols(res *parser.Result, n *parser.Node) []Symbol {
	out := []Symbol{}
	n.Walk(func(c *parser.Node) bool {
		switch c.Kind {
		case parser.KindFieldDef:
			out = append(out, Symbol{Name: c.Text, Type: SymbolField, Range: res.NodeRange(c), Children: []Symbol{}})
			return false
		case parser.KindQueryItem:
			// a bare name reuses a field, only "name is expr" declares one
			if c.Child(1) != nil {
				out = append(out, Symbol{Name: c.Text, Type: SymbolField, Range: res.NodeRange(c), Children: []Symbol{}})
			}
			return false
		}
		return true
	})
	return out
}
