package commands

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"github.com/leapstack-labs/semql/internal/config"
	"github.com/leapstack-labs/semql/internal/fetch"
	"github.com/leapstack-labs/semql/pkg/connection"
	"github.com/leapstack-labs/semql/pkg/token"
	"gopkg.in/yaml.v3"
)

//go:embed all:templates
var templateFS embed.FS

const templateRoot = "templates/minimal"

// scaffold is the project written by init: one connection, and a first
// document defining a source over one of its tables.
type scaffold struct {
	Connection string
	Config     connection.Config
	Table      string
	RootURL    string
}

// newScaffold validates the names and fills in the connection settings
// for typ.
func newScaffold(name, typ, table string) (*scaffold, error) {
	if !isIdentifier(name) {
		return nil, fmt.Errorf("connection name %q is not an identifier", name)
	}
	if !isIdentifier(table) {
		return nil, fmt.Errorf("table name %q is not an identifier", table)
	}

	cfg := connection.Config{Type: typ}
	switch typ {
	case "duckdb":
		cfg.Path = name + ".duckdb"
	case "sqlite":
		cfg.Path = name + ".db"
	case "postgres":
		cfg.Host = "localhost"
		cfg.Port = 5432
		cfg.Database = name
		cfg.Username = "${PGUSER}"
	default:
		return nil, fmt.Errorf("init cannot scaffold connection type %q\nHint: use one of duckdb, sqlite, postgres", typ)
	}
	return &scaffold{
		Connection: name,
		Config:     cfg,
		Table:      table,
		RootURL:    path.Join("models", "main"+DocumentExt),
	}, nil
}

// isIdentifier reports whether s can name something in a document.
func isIdentifier(s string) bool {
	if s == "" || token.LookupIdent(s) != token.IDENT {
		return false
	}
	for i, r := range s {
		if r != '_' && !unicode.IsLetter(r) && (i == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

// projectConfig is the layout of a generated semql.yaml.
type projectConfig struct {
	RootURL           string                       `yaml:"root_url"`
	DefaultConnection string                       `yaml:"default_connection"`
	Connections       map[string]connection.Config `yaml:"connections"`
	Fetch             projectFetch                 `yaml:"fetch"`
}

type projectFetch struct {
	Concurrency int    `yaml:"concurrency"`
	Timeout     string `yaml:"timeout"`
}

// configYAML renders semql.yaml.
func (s *scaffold) configYAML() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# semql project configuration\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	err := enc.Encode(projectConfig{
		RootURL:           s.RootURL,
		DefaultConnection: s.Connection,
		Connections:       map[string]connection.Config{s.Connection: s.Config},
		Fetch: projectFetch{
			Concurrency: fetch.DefaultConcurrency,
			Timeout:     fetch.DefaultTimeout.String(),
		},
	})
	if err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// write creates the project under dir and returns the files it created,
// relative to dir. Existing files are kept unless force is set.
func (s *scaffold) write(dir string, force bool) ([]string, error) {
	var created []string
	emit := func(rel string, content []byte) error {
		target := filepath.Join(dir, filepath.FromSlash(rel))
		if !force {
			if _, err := os.Stat(target); err == nil {
				return nil
			}
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
			return err
		}
		if err := os.WriteFile(target, content, 0o600); err != nil {
			return err
		}
		created = append(created, rel)
		return nil
	}

	cfg, err := s.configYAML()
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", config.ConfigFileName, err)
	}
	if err := emit(config.ConfigFileName, cfg); err != nil {
		return created, err
	}

	err = fs.WalkDir(templateFS, templateRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		content, err := templateFS.ReadFile(p)
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(p, templateRoot+"/")
		if name, ok := strings.CutSuffix(rel, ".tmpl"); ok {
			rel = name
			if content, err = s.render(p, content); err != nil {
				return err
			}
		}
		return emit(dotfile(rel), content)
	})
	return created, err
}

// render executes a .tmpl file against the scaffold.
func (s *scaffold) render(name string, text []byte) ([]byte, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(text))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// dotfile restores the leading dot of files embed would skip, such as
// "gitignore".
func dotfile(rel string) string {
	dir, base := path.Split(rel)
	if base == "gitignore" {
		return dir + ".gitignore"
	}
	return rel
}
