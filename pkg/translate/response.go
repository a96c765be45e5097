package translate

import (
	"github.com/leapstack-labs/semql/pkg/diag"
	"github.com/leapstack-labs/semql/pkg/model"
	"github.com/leapstack-labs/semql/pkg/walk"
)

// Needs lists the external data a translation is waiting for. Each key
// appears in at most one Needs response over the life of a translator.
type Needs struct {
	// Tables are keyed by model.TableKey, "connection:path".
	Tables []string `json:"tables,omitempty" yaml:"tables,omitempty"`
	// TableConnections maps each needed table to the connection that
	// should describe it.
	TableConnections map[string]string `json:"tableConnections,omitempty" yaml:"tableConnections,omitempty"`
	URLs             []string          `json:"urls,omitempty" yaml:"urls,omitempty"`
	CompileSQL       []model.SQLBlock  `json:"compileSQL,omitempty" yaml:"compileSQL,omitempty"`
}

// Empty reports whether nothing is needed.
func (n Needs) Empty() bool {
	return len(n.Tables) == 0 && len(n.URLs) == 0 && len(n.CompileSQL) == 0
}

// UpdateData carries data fetched in response to a Needs. Errors carry
// the reason a key could not be fetched; the key is then never asked for
// again and references to it fail with that reason.
type UpdateData struct {
	Tables     map[string]*model.StructDef `json:"tables,omitempty" yaml:"tables,omitempty"`
	URLs       map[string]string           `json:"urls,omitempty" yaml:"urls,omitempty"`
	CompileSQL map[string]*model.StructDef `json:"compileSQL,omitempty" yaml:"compileSQL,omitempty"`
	Errors     UpdateErrors                `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// UpdateErrors holds fetch failures per zone.
type UpdateErrors struct {
	Tables     map[string]string `json:"tables,omitempty" yaml:"tables,omitempty"`
	URLs       map[string]string `json:"urls,omitempty" yaml:"urls,omitempty"`
	CompileSQL map[string]string `json:"compileSQL,omitempty" yaml:"compileSQL,omitempty"`
}

// Translated is the result of a successful translation.
type Translated struct {
	ModelDef  *model.ModelDef  `json:"modelDef" yaml:"modelDef"`
	Queries   []*model.Query   `json:"queries" yaml:"queries"`
	SQLBlocks []model.SQLBlock `json:"sqlBlocks" yaml:"sqlBlocks"`
}

// TranslateResponse is the answer to Translate. Exactly one of three
// shapes is returned: Needs is non-empty and Final is false; Final is
// true and Translated is set; or Final is true with Errors explaining
// why there is no model.
type TranslateResponse struct {
	Needs
	Translated *Translated    `json:"translated,omitempty" yaml:"translated,omitempty"`
	Errors     []diag.Message `json:"errors" yaml:"errors"`
	Final      bool           `json:"final" yaml:"final"`
}

// MetadataResponse carries the document outline and highlights. It only
// needs the document text.
type MetadataResponse struct {
	Needs
	Symbols    []walk.Symbol    `json:"symbols,omitempty" yaml:"symbols,omitempty"`
	Highlights []walk.Highlight `json:"highlights,omitempty" yaml:"highlights,omitempty"`
	Errors     []diag.Message   `json:"errors" yaml:"errors"`
	Final      bool             `json:"final" yaml:"final"`
}

// CompletionsResponse carries completions at a position.
type CompletionsResponse struct {
	Needs
	Completions []walk.Completion `json:"completions,omitempty" yaml:"completions,omitempty"`
	Errors      []diag.Message    `json:"errors" yaml:"errors"`
	Final       bool              `json:"final" yaml:"final"`
}

// HelpContextResponse carries the keyword under a position.
type HelpContextResponse struct {
	Needs
	HelpContext *walk.HelpContext `json:"helpContext,omitempty" yaml:"helpContext,omitempty"`
	Errors      []diag.Message    `json:"errors" yaml:"errors"`
	Final       bool              `json:"final" yaml:"final"`
}
