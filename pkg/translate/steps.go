package translate

import (
	"fmt"
	"net/url"

	"github.com/leapstack-labs/semql/pkg/ast"
	"github.com/leapstack-labs/semql/pkg/diag"
	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/leapstack-labs/semql/pkg/parser"
	"github.com/leapstack-labs/semql/pkg/walk"
	"github.com/leapstack-labs/semql/pkg/zone"
)

// Every step is a memo cell: it answers "needs" for as long as data is
// missing and, once it reaches a final answer, returns that answer
// forever without recomputing.
//
//	parse -> externals -> build -> compile
//	parse -> metadata

type stepKind int

const (
	stepNeeds stepKind = iota
	stepFatal
	stepSuccess
)

type stepResult struct {
	kind  stepKind
	needs Needs
}

var (
	fatalResult   = stepResult{kind: stepFatal}
	successResult = stepResult{kind: stepSuccess}
)

// memo stores a final result in cell and returns it.
func memo(cell **stepResult, r stepResult) stepResult {
	*cell = &r
	return r
}

// ---------- parse ----------

type parseStep struct {
	response *stepResult
	result   *parser.Result
}

func (s *parseStep) step(t *Translation) stepResult {
	if s.response != nil {
		return *s.response
	}
	root := t.root

	if !isAbsoluteURL(t.url) {
		root.log.Log(diag.Message{Text: "Could not compute full path URL", URL: t.url, Severity: diag.SeverityError})
		return memo(&s.response, fatalResult)
	}

	root.docs.Reference(t.url, nil)
	entry := root.docs.Entry(t.url)
	switch entry.Status {
	case zone.StatusNeeded:
		return stepResult{kind: stepNeeds, needs: Needs{URLs: root.docs.Undefined()}}
	case zone.StatusError:
		text := fmt.Sprintf("Source for '%s' missing: %s", t.url, entry.Message)
		if entry.FirstReference != nil {
			root.log.Log(diag.At(*entry.FirstReference, diag.SeverityError, text))
		} else {
			root.log.Log(diag.Message{Text: text, URL: t.url, Severity: diag.SeverityError})
		}
		return memo(&s.response, fatalResult)
	}

	text := entry.Value
	if text == "" {
		text = "\n"
	}
	res, err := parseSafely(text, t.rule)
	if err != nil {
		root.log.Log(diag.Message{Text: fmt.Sprintf("Internal error: %v", err), URL: t.url, Severity: diag.SeverityError})
		return memo(&s.response, fatalResult)
	}
	for _, e := range res.Errors {
		r := model.Range{
			Start: res.Lines.Position(e.Pos.Offset),
			End:   res.Lines.Position(e.Pos.Offset + e.Len),
		}
		root.log.Log(diag.Message{Text: e.Message, URL: t.url, Range: &r, Severity: diag.SeverityError})
	}
	s.result = res
	root.logger.Debug("document parsed", "url", t.url, "tokens", len(res.Tokens), "syntax_errors", len(res.Errors))
	return memo(&s.response, successResult)
}

// parseSafely runs the parser, turning a panic into an error.
func parseSafely(text string, rule parser.Rule) (res *parser.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser failed: %v", r)
		}
	}()
	return parser.Parse(text, rule), nil
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}

// ---------- externals ----------

// externalsStep registers every table and import the document refers to,
// recurses into imported documents and answers with everything still
// missing anywhere below the root.
type externalsStep struct {
	response *stepResult
	scanned  bool
	tables   []string
	cycles   map[string]bool
}

func (s *externalsStep) step(t *Translation) stepResult {
	if s.response != nil {
		return *s.response
	}
	if r := t.parse.step(t); r.kind != stepSuccess {
		return r
	}
	if !s.scanned {
		s.scan(t)
		s.scanned = true
	}

	root := t.root
	root.inProgress[t.url] = true
	defer delete(root.inProgress, t.url)

	waiting := false
	for _, path := range s.tables {
		if root.tables.Entry(path).Status == zone.StatusNeeded {
			waiting = true
		}
	}
	for _, u := range t.children {
		switch root.docs.Entry(u).Status {
		case zone.StatusNeeded:
			waiting = true
		case zone.StatusPresent:
			if root.inProgress[u] {
				if !s.cycles[u] {
					s.cycles[u] = true
					t.logAt(t.childLocs[u], "Circular import of '%s'", u)
				}
				continue
			}
			child := t.child(u)
			if child.externals.step(child).kind == stepNeeds {
				waiting = true
			}
		}
	}
	if waiting {
		return stepResult{kind: stepNeeds, needs: root.outstanding()}
	}
	return memo(&s.response, successResult)
}

func (s *externalsStep) scan(t *Translation) {
	root := t.root
	s.cycles = map[string]bool{}
	ext := walk.FindExternals(t.url, t.parse.result)

	for _, ref := range ext.Tables {
		key := model.TableKey(ref.Connection, ref.Path)
		root.tableConnections[key] = ref.Connection
		loc := ref.Location
		root.tables.Reference(key, &loc)
		s.tables = append(s.tables, key)
		t.references.Add(model.DocumentReference{Text: ref.Path, Kind: model.RefTable, Location: ref.Location})
	}

	for _, ref := range ext.Imports {
		full, err := ast.ResolveURL(t.url, ref.URL)
		if err != nil {
			t.logAt(ref.Location, "Malformed URL '%s'", ref.URL)
			continue
		}
		t.addChild(full, ref.Location)
		loc := ref.Location
		root.docs.Reference(full, &loc)
	}
	root.logger.Debug("externals scanned", "url", t.url, "tables", len(ext.Tables), "imports", len(ext.Imports))
}

// ---------- build ----------

type astStep struct {
	response *stepResult
	root     ast.Element
}

func (s *astStep) step(t *Translation) stepResult {
	if s.response != nil {
		return *s.response
	}
	if r := t.externals.step(t); r.kind != stepSuccess {
		return r
	}

	root := t.root
	root.inProgress[t.url] = true
	defer delete(root.inProgress, t.url)

	for _, u := range t.children {
		if root.inProgress[u] {
			continue
		}
		child := t.child(u)
		if r := child.build.step(child); r.kind == stepNeeds {
			return r
		}
	}

	el := ast.NewBuilder(t.url, t.parse.result, root.log).Build()
	if root.log.HasErrorsIn(t.url) {
		return memo(&s.response, fatalResult)
	}
	if missing := ast.FindUnimplemented(el); len(missing) > 0 {
		for _, u := range missing {
			root.log.Log(diag.Errorf(u.Location(), "Internal error: no translation for %s", u.What))
		}
		return memo(&s.response, fatalResult)
	}
	s.root = el
	root.logger.Debug("ast built", "url", t.url)
	return memo(&s.response, successResult)
}

// ---------- compile ----------

type compileStep struct {
	response    *stepResult
	initialized bool
	translated  *Translated
}

func (s *compileStep) step(t *Translation, extending *model.ModelDef) stepResult {
	if s.response != nil {
		return *s.response
	}
	switch r := t.build.step(t); r.kind {
	case stepNeeds:
		return r
	case stepFatal:
		return memo(&s.response, fatalResult)
	}

	root := t.root
	doc, ok := t.build.root.(*ast.Document)
	if !ok {
		t.logAt(t.build.root.Location(), "'%s' did not parse to a document", t.url)
		return memo(&s.response, fatalResult)
	}
	if !s.initialized {
		doc.Initialize(extending)
		s.initialized = true
	}

	root.inProgress[t.url] = true
	defer delete(root.inProgress, t.url)

	for {
		before := doc.Executed()
		req := doc.Compile(t)
		if req == nil {
			break
		}
		for _, b := range req.SQL {
			root.sql.ReferenceBlock(b)
		}
		if blocks := root.sql.UndefinedBlocks(); len(blocks) > 0 {
			root.logger.Debug("compile waiting for sql", "url", t.url, "blocks", len(blocks))
			return stepResult{kind: stepNeeds, needs: Needs{CompileSQL: blocks}}
		}
		if doc.Executed() == before {
			t.logAt(doc.Location(), "Internal error: compile of '%s' made no progress", t.url)
			return memo(&s.response, fatalResult)
		}
	}

	s.translated = &Translated{
		ModelDef:  doc.ModelDef(),
		Queries:   doc.Queries(),
		SQLBlocks: doc.SQLBlocks(),
	}
	if t.failed() {
		return memo(&s.response, fatalResult)
	}
	root.logger.Debug("document compiled", "url", t.url, "names", len(s.translated.ModelDef.Names))
	return memo(&s.response, successResult)
}

// ---------- metadata ----------

type metadataStep struct {
	response *MetadataResponse
}

func (s *metadataStep) step(t *Translation) *MetadataResponse {
	if s.response != nil {
		return s.response
	}
	errs := t.root.log.Snapshot
	switch r := t.parse.step(t); r.kind {
	case stepNeeds:
		return &MetadataResponse{Needs: r.needs, Errors: errs()}
	case stepFatal:
		s.response = &MetadataResponse{Errors: errs(), Final: true}
		return s.response
	}
	res := t.parse.result
	s.response = &MetadataResponse{
		Symbols:    walk.Symbols(res),
		Highlights: walk.Highlights(res),
		Errors:     errs(),
		Final:      true,
	}
	return s.response
}
