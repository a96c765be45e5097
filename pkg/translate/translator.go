// Package translate drives the incremental translation of a SemQL
// document and everything it imports into a compiled model.
//
// A Translator never performs I/O. Whenever it lacks a document text, a
// table schema or the result shape of an inline SQL block, Translate
// answers with a Needs listing the missing keys. The caller fetches them,
// hands them over with Update and calls Translate again; work already
// done is never repeated and no key is ever requested twice.
package translate

import (
	"log/slog"

	"github.com/leapstack-labs/semql/pkg/diag"
	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/leapstack-labs/semql/pkg/parser"
	"github.com/leapstack-labs/semql/pkg/walk"
	"github.com/leapstack-labs/semql/pkg/zone"
)

// Translator is the root of one translation. It owns the data zones, the
// diagnostics log and the registry of every document translation, keyed
// by URL.
type Translator struct {
	main   *Translation
	logger *slog.Logger
	log    *diag.Log

	tables           *zone.Zone[*model.StructDef]
	tableConnections map[string]string
	docs             *zone.Zone[string]
	sql              *SQLZone

	registry   map[string]*Translation
	inProgress map[string]bool
	final      *TranslateResponse
}

type options struct {
	logger  *slog.Logger
	sink    diag.Sink
	preload *UpdateData
	rule    parser.Rule
}

// Option configures a Translator.
type Option func(*options)

// WithLogger sets the structured logger for debug events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSink mirrors every diagnostic to sink as it is logged.
func WithSink(sink diag.Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithPreload makes data available before the first request, so it is
// never asked for. Only values are preloaded; errors are ignored.
func WithPreload(data UpdateData) Option {
	return func(o *options) {
		o.preload = &data
	}
}

// WithRule selects the grammar rule the root document is parsed with.
// Only RuleDocument produces a model; the other rules serve editors that
// check a fragment.
func WithRule(rule parser.Rule) Option {
	return func(o *options) {
		o.rule = rule
	}
}

// New returns a translator for the document at url, which must be an
// absolute URL.
func New(url string, opts ...Option) *Translator {
	o := options{rule: parser.RuleDocument}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	tr := &Translator{
		logger:           logger,
		log:              diag.NewLog(o.sink),
		tables:           zone.New[*model.StructDef](),
		tableConnections: map[string]string{},
		docs:             zone.New[string](),
		sql:              NewSQLZone(),
		registry:         map[string]*Translation{},
		inProgress:       map[string]bool{},
	}
	tr.main = newTranslation(tr, url, o.rule)
	tr.registry[url] = tr.main

	if o.preload != nil {
		for k, v := range o.preload.URLs {
			tr.docs.Define(k, v)
		}
		for k, v := range o.preload.Tables {
			tr.tables.Define(k, v)
		}
		for k, v := range o.preload.CompileSQL {
			tr.sql.Define(k, v)
		}
	}
	logger.Debug("translator created", "url", url, "rule", o.rule.String())
	return tr
}

// Root returns the translation of the root document.
func (tr *Translator) Root() *Translation {
	return tr.main
}

// Translation returns the translation registered for url, if any.
func (tr *Translator) Translation(url string) *Translation {
	return tr.registry[url]
}

// Translate advances the translation as far as the available data
// allows. extending seeds the root namespace; it is only consulted the
// first time compilation starts. Once final, the same response is
// returned on every call.
func (tr *Translator) Translate(extending *model.ModelDef) *TranslateResponse {
	if tr.final != nil {
		return tr.final
	}
	t := tr.main
	r := t.compile.step(t, extending)
	resp := &TranslateResponse{Errors: tr.log.Snapshot()}
	switch r.kind {
	case stepNeeds:
		resp.Needs = r.needs
		tr.logger.Debug("translation needs data",
			"tables", len(r.needs.Tables), "urls", len(r.needs.URLs), "sql", len(r.needs.CompileSQL))
		return resp
	case stepSuccess:
		resp.Translated = t.compile.translated
	}
	resp.Final = true
	tr.final = resp
	tr.logger.Debug("translation final", "url", t.url, "ok", resp.Translated != nil, "messages", len(resp.Errors))
	return resp
}

// Update supplies fetched data. Only keys currently needed are taken;
// anything else is ignored.
func (tr *Translator) Update(data UpdateData) {
	n := tr.tables.UpdateFrom(data.Tables, data.Errors.Tables)
	n += tr.docs.UpdateFrom(data.URLs, data.Errors.URLs)
	n += tr.sql.UpdateFrom(data.CompileSQL, data.Errors.CompileSQL)
	tr.logger.Debug("zones updated", "resolved", n)
}

// outstanding returns every key still needed by the parse, table and
// import stages, across all documents.
func (tr *Translator) outstanding() Needs {
	n := Needs{Tables: tr.tables.Undefined(), URLs: tr.docs.Undefined()}
	if len(n.Tables) > 0 {
		n.TableConnections = make(map[string]string, len(n.Tables))
		for _, key := range n.Tables {
			n.TableConnections[key] = tr.tableConnections[key]
		}
	}
	return n
}

// Metadata returns the outline and highlights of the root document.
func (tr *Translator) Metadata() *MetadataResponse {
	return tr.main.metadata.step(tr.main)
}

// Completions returns the completions at pos in the root document.
func (tr *Translator) Completions(pos model.Position) *CompletionsResponse {
	t := tr.main
	switch r := t.parse.step(t); r.kind {
	case stepNeeds:
		return &CompletionsResponse{Needs: r.needs, Errors: tr.log.Snapshot()}
	case stepFatal:
		return &CompletionsResponse{Errors: tr.log.Snapshot(), Final: true}
	}
	return &CompletionsResponse{
		Completions: walk.Completions(t.parse.result, pos),
		Errors:      tr.log.Snapshot(),
		Final:       true,
	}
}

// HelpContext returns the keyword under pos in the root document.
func (tr *Translator) HelpContext(pos model.Position) *HelpContextResponse {
	t := tr.main
	switch r := t.parse.step(t); r.kind {
	case stepNeeds:
		return &HelpContextResponse{Needs: r.needs, Errors: tr.log.Snapshot()}
	case stepFatal:
		return &HelpContextResponse{Errors: tr.log.Snapshot(), Final: true}
	}
	return &HelpContextResponse{
		HelpContext: walk.HelpContextAt(t.parse.result, pos),
		Errors:      tr.log.Snapshot(),
		Final:       true,
	}
}

// ReferenceAt returns the reference under pos in the root document.
func (tr *Translator) ReferenceAt(pos model.Position) (model.DocumentReference, bool) {
	return tr.main.references.Find(pos)
}

// Errors returns a snapshot of every diagnostic logged so far.
func (tr *Translator) Errors() []diag.Message {
	return tr.log.Snapshot()
}

// PrettyErrors renders every diagnostic with the source line it points
// at, when the text of its document is known.
func (tr *Translator) PrettyErrors() string {
	return diag.Pretty(tr.log.Snapshot(), tr.docs.Get)
}
