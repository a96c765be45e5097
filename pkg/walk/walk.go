// Package walk holds read-only walkers over SemQL parse results: the
// external reference scanner used by translation, and the editor
// services built on the token stream and parse tree (document symbols,
// highlights, completions and help context).
//
// Walkers never modify the parse result and tolerate partial trees left
// behind by syntax errors.
package walk

import (
	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/leapstack-labs/semql/pkg/parser"
)

// TableRef is a conn.table('path') reference.
type TableRef struct {
	Connection string
	Path       string
	Location   model.Location
}

// ImportRef is an import statement. URL is as written, not resolved.
type ImportRef struct {
	URL      string
	Location model.Location
}

// Externals lists everything a document needs from outside itself, in
// source order.
type Externals struct {
	Tables  []TableRef
	Imports []ImportRef
}

// FindExternals scans the parse tree of the document at url for table
// and import references.
func FindExternals(url string, res *parser.Result) Externals {
	var ext Externals
	if res == nil || res.Root == nil {
		return ext
	}
	loc := func(n *parser.Node) model.Location {
		return model.Location{URL: url, Range: res.NodeRange(n)}
	}
	res.Root.Walk(func(n *parser.Node) bool {
		switch n.Kind {
		case parser.KindTableSource:
			ref := TableRef{Path: n.Text, Location: loc(n)}
			if conn := n.Child(0); conn != nil {
				ref.Connection = conn.Text
			}
			if path := n.Child(1); path != nil {
				ref.Location = loc(path)
			}
			ext.Tables = append(ext.Tables, ref)
			return false
		case parser.KindImport:
			ext.Imports = append(ext.Imports, ImportRef{URL: n.Text, Location: loc(n)})
			return false
		case parser.KindErrorStmt:
			return false
		}
		return true
	})
	return ext
}
