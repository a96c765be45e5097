package ast

import "github.com/leapstack-labs/semql/pkg/model"

// ImportItem is one name of a selective import. From is the exported
// name in the imported document; it equals Name unless renamed.
type ImportItem struct {
	base
	Name string
	From string
}

func (i *ImportItem) ElementType() string { return "import item" }
func (i *ImportItem) Children() []Element { return nil }

// ImportStatement copies exported entries of another document into this
// one. FullURL is empty when URL could not be resolved.
type ImportStatement struct {
	base
	URL     string
	FullURL string
	Items   []*ImportItem
}

func (s *ImportStatement) ElementType() string { return "import" }

func (s *ImportStatement) Children() []Element {
	out := make([]Element, 0, len(s.Items))
	for _, i := range s.Items {
		out = append(out, i)
	}
	return out
}

func (s *ImportStatement) Needs(env Env, _ *Document) *Request {
	if s.FullURL == "" {
		return nil
	}
	return env.ImportNeeds(s.FullURL)
}

func (s *ImportStatement) Execute(env Env, doc *Document) {
	if s.FullURL == "" {
		return
	}
	imported, ok := env.ImportModel(s.FullURL)
	if !ok {
		errorf(env, s.loc, "import failed: '%s'", s.URL)
		if len(s.Items) == 0 {
			doc.MarkImportFailed()
		}
		for _, item := range s.Items {
			doc.MarkFailed(item.Name)
		}
		return
	}
	env.AddReference(model.DocumentReference{
		Text:       s.URL,
		Kind:       model.RefImport,
		Location:   s.loc,
		Definition: &model.Location{URL: s.FullURL},
	})

	if len(s.Items) == 0 {
		for _, name := range imported.Exports {
			doc.Define(env, name, importedEntry(imported.Contents[name]), s.loc)
		}
		return
	}
	for _, item := range s.Items {
		e := imported.Entry(item.From)
		if e == nil || !e.Exported {
			errorf(env, item.loc, "Cannot find '%s', not imported", item.From)
			continue
		}
		if doc.Define(env, item.Name, importedEntry(e), item.loc) {
			doc.selected = append(doc.selected, item)
		}
	}
}

// importedEntry copies an exported entry. Imported names are visible in
// the importing document but are not exported from it.
func importedEntry(e *model.Entry) *model.Entry {
	c := e.Clone()
	c.Exported = false
	return c
}

// DefineSource is "source: name is <source>".
type DefineSource struct {
	base
	Name    string
	NameLoc model.Location
	Source  Source
}

func (s *DefineSource) ElementType() string { return "define source" }
func (s *DefineSource) Children() []Element { return children(s.Source) }

func (s *DefineSource) Needs(env Env, doc *Document) *Request {
	return s.Source.Needs(env, doc)
}

func (s *DefineSource) Execute(env Env, doc *Document) {
	st := s.Source.Struct(env, doc)
	if IsErrorStruct(st) {
		if doc.Lookup(s.Name) == nil {
			doc.MarkFailed(s.Name)
		}
		return
	}
	st.As = s.Name
	loc := s.NameLoc
	doc.Define(env, s.Name, &model.Entry{
		Kind:     model.EntrySource,
		Source:   st,
		Exported: true,
		Location: &loc,
	}, s.loc)
}

// DefineQuery is "query: name is <query>".
type DefineQuery struct {
	base
	Name    string
	NameLoc model.Location
	Query   QueryElement
}

func (s *DefineQuery) ElementType() string { return "define query" }
func (s *DefineQuery) Children() []Element { return children(s.Query) }

func (s *DefineQuery) Needs(env Env, doc *Document) *Request {
	return s.Query.Needs(env, doc)
}

func (s *DefineQuery) Execute(env Env, doc *Document) {
	q := s.Query.Query(env, doc)
	if q == nil {
		if doc.Lookup(s.Name) == nil {
			doc.MarkFailed(s.Name)
		}
		return
	}
	q.Name = s.Name
	loc := s.NameLoc
	doc.Define(env, s.Name, &model.Entry{
		Kind:     model.EntryQuery,
		Query:    q,
		Exported: true,
		Location: &loc,
	}, s.loc)
}

// RunQuery is "run: <query>"; it adds an anonymous query to the document.
type RunQuery struct {
	base
	Query QueryElement
}

func (s *RunQuery) ElementType() string { return "run" }
func (s *RunQuery) Children() []Element { return children(s.Query) }

func (s *RunQuery) Needs(env Env, doc *Document) *Request {
	return s.Query.Needs(env, doc)
}

func (s *RunQuery) Execute(env Env, doc *Document) {
	if q := s.Query.Query(env, doc); q != nil {
		doc.AddQuery(q)
	}
}
