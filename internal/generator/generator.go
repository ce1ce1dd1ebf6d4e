// Package generator renders a service model into a Python MCP server package.
//
// Generation is pure: Generate returns artifacts and never touches the
// filesystem. Output is deterministic for a given model except for the
// "Generated on" line of server.py.
package generator

import (
	"bytes"
	"embed"
	"path"
	"text/template"
	"time"

	"github.com/PentesterFlow/mcpcreator/internal/errors"
	"github.com/PentesterFlow/mcpcreator/internal/model"
	"github.com/PentesterFlow/mcpcreator/internal/output"
)

// TimestampLayout formats the "Generated on" line.
const TimestampLayout = "2006-01-02T15:04:05.000000"

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("generator").
		Funcs(template.FuncMap{
			"py":  pyString,
			"doc": pyDoc,
		}).
		ParseFS(templateFS, "templates/*.tmpl"),
)

// Options configures a Generator.
type Options struct {
	// Prefix is joined to the service name to form the server name.
	Prefix string
	// OpenAPI adds openapi.yaml to the artifacts.
	OpenAPI bool
	// Now stamps server.py; defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the standard options.
func DefaultOptions() Options {
	return Options{
		Prefix:  model.DefaultPrefix,
		OpenAPI: true,
		Now:     time.Now,
	}
}

// Generator renders service models.
type Generator struct {
	opts Options
}

// New creates a generator.
func New(opts Options) *Generator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Generator{opts: opts}
}

// file maps a template to its path inside the server directory. An empty
// dir places it at the server root; "pkg" places it in the Python package.
type file struct {
	template string
	dir      string
	name     string
}

var packageFiles = []file{
	{template: "pyproject.toml.tmpl", name: "pyproject.toml"},
	{template: "__init__.py.tmpl", dir: "pkg", name: "__init__.py"},
	{template: "auth.py.tmpl", dir: "pkg", name: "auth.py"},
	{template: "client.py.tmpl", dir: "pkg", name: "client.py"},
	{template: "server.py.tmpl", dir: "pkg", name: "server.py"},
	{template: "README.md.tmpl", name: "README.md"},
	{template: "env.example.tmpl", name: ".env.example"},
}

// ServerDir returns the directory, relative to the output root, that holds
// the generated package.
func (g *Generator) ServerDir(m *model.ServiceModel) string {
	return m.ServerName(g.opts.Prefix)
}

// Generate renders every artifact for the model. Paths are slash-separated
// and relative to the output directory.
func (g *Generator) Generate(m *model.ServiceModel) ([]output.Artifact, error) {
	view := newServiceView(m, g.opts.Prefix, g.opts.Now().Format(TimestampLayout))
	root := view.ServerName

	artifacts := make([]output.Artifact, 0, len(packageFiles)+1)
	for _, f := range packageFiles {
		rel := path.Join(root, f.name)
		if f.dir == "pkg" {
			rel = path.Join(root, view.PackageName, f.name)
		}

		var buf bytes.Buffer
		if err := templates.ExecuteTemplate(&buf, f.template, view); err != nil {
			return nil, errors.NewGenerationError(rel, "render", err)
		}
		artifacts = append(artifacts, output.Artifact{Path: rel, Content: buf.Bytes()})
	}

	if g.opts.OpenAPI {
		rel := path.Join(root, "openapi.yaml")
		data, err := OpenAPI(m, g.opts.Prefix)
		if err != nil {
			return nil, errors.NewGenerationError(rel, "render", err)
		}
		artifacts = append(artifacts, output.Artifact{Path: rel, Content: data})
	}

	return artifacts, nil
}
