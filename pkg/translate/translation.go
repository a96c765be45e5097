package translate

import (
	"github.com/leapstack-labs/semql/pkg/ast"
	"github.com/leapstack-labs/semql/pkg/diag"
	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/leapstack-labs/semql/pkg/parser"
	"github.com/leapstack-labs/semql/pkg/zone"
)

// Translation is the translation of one document. The root document and
// every document it imports, directly or not, each have exactly one,
// registered by URL with the root Translator.
type Translation struct {
	root *Translator
	url  string
	rule parser.Rule

	// children are imported URLs in first-import order; the translations
	// themselves live in the root registry.
	children  []string
	childSeen map[string]bool
	childLocs map[string]model.Location

	references ReferenceList

	parse     parseStep
	externals externalsStep
	build     astStep
	compile   compileStep
	metadata  metadataStep
}

func newTranslation(root *Translator, url string, rule parser.Rule) *Translation {
	return &Translation{
		root:      root,
		url:       url,
		rule:      rule,
		childSeen: map[string]bool{},
		childLocs: map[string]model.Location{},
	}
}

// URL returns the document URL.
func (t *Translation) URL() string { return t.url }

// Children returns the URLs imported by the document, in import order.
func (t *Translation) Children() []string {
	return append([]string(nil), t.children...)
}

// Parsed returns the parse result once the document has been parsed.
func (t *Translation) Parsed() *parser.Result {
	return t.parse.result
}

// AST returns the built element tree, if the AST step succeeded.
func (t *Translation) AST() ast.Element {
	return t.build.root
}

// References returns what the document refers to, by position.
func (t *Translation) References() *ReferenceList {
	return &t.references
}

// addChild registers an imported document. It is idempotent per URL; a
// document imported from several places has one translation.
func (t *Translation) addChild(url string, loc model.Location) *Translation {
	if !t.childSeen[url] {
		t.childSeen[url] = true
		t.childLocs[url] = loc
		t.children = append(t.children, url)
	}
	child, ok := t.root.registry[url]
	if !ok {
		child = newTranslation(t.root, url, parser.RuleDocument)
		t.root.registry[url] = child
		t.root.logger.Debug("child translation created", "url", url, "parent", t.url)
	}
	return child
}

func (t *Translation) child(url string) *Translation {
	return t.root.registry[url]
}

func (t *Translation) isRoot() bool {
	return t == t.root.main
}

// failed reports whether errors block this document. The root fails on
// any error anywhere; an imported document only on its own, so that the
// import statement in its parent can report the failure in place.
func (t *Translation) failed() bool {
	if t.isRoot() {
		return t.root.log.HasErrors()
	}
	return t.root.log.HasErrorsIn(t.url)
}

func (t *Translation) logAt(loc model.Location, format string, args ...any) {
	t.root.log.Log(diag.Errorf(loc, format, args...))
}

// The methods below make a Translation the environment its AST compiles
// in.

// Log returns the shared diagnostics log.
func (t *Translation) Log() *diag.Log { return t.root.log }

// Table returns the schema zone entry for a table path read through
// connection.
func (t *Translation) Table(connection, path string) zone.Entry[*model.StructDef] {
	return t.root.tables.Entry(model.TableKey(connection, path))
}

// SQLResult references an inline SQL block and returns its zone entry.
func (t *Translation) SQLResult(block model.SQLBlock) zone.Entry[*model.StructDef] {
	t.root.sql.ReferenceBlock(block)
	return t.root.sql.Entry(block.ID)
}

// ImportNeeds returns what the imported document still waits for.
func (t *Translation) ImportNeeds(url string) *ast.Request {
	child := t.child(url)
	if child == nil || t.root.inProgress[url] {
		return nil
	}
	res := child.compile.step(child, nil)
	if res.kind != stepNeeds {
		return nil
	}
	return &ast.Request{SQL: res.needs.CompileSQL}
}

// ImportModel returns the model of an imported document, or false when
// it failed to translate.
func (t *Translation) ImportModel(url string) (*model.ModelDef, bool) {
	child := t.child(url)
	if child == nil || t.root.inProgress[url] {
		return nil, false
	}
	if res := child.compile.step(child, nil); res.kind != stepSuccess {
		return nil, false
	}
	return child.compile.translated.ModelDef, true
}

// AddReference records a reference made by the document.
func (t *Translation) AddReference(ref model.DocumentReference) {
	t.references.Add(ref)
}

var _ ast.Env = (*Translation)(nil)
