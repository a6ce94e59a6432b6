package pagetemplate

import (
	"embed"
	"encoding/json"
	"io"
	"io/fs"
	"path"
	"sort"

	"github.com/flosch/pongo2/v6"
	"github.com/goliatone/go-shader-export/export"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// EmbeddedTemplates returns the built-in page templates.
func EmbeddedTemplates() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Pongo2Executor executes pongo2 templates compiled from a file system.
type Pongo2Executor struct {
	templates map[string]*pongo2.Template
}

var _ TemplateExecutor = (*Pongo2Executor)(nil)

// NewPongo2Executor compiles every *.html file at the root of fsys. Templates
// are addressed by file name.
func NewPongo2Executor(fsys fs.FS) (*Pongo2Executor, error) {
	if fsys == nil {
		return nil, export.NewError(export.KindValidation, "template file system is required", nil)
	}
	if err := RegisterToJSON(); err != nil {
		return nil, err
	}

	names, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	executor := &Pongo2Executor{templates: make(map[string]*pongo2.Template, len(names))}
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		tpl, err := pongo2.FromString(string(raw))
		if err != nil {
			return nil, export.NewError(export.KindValidation, "compile template "+name, err)
		}
		executor.templates[path.Base(name)] = tpl
	}
	return executor, nil
}

// Names returns the compiled template names.
func (e *Pongo2Executor) Names() []string {
	if e == nil {
		return nil
	}
	names := make([]string, 0, len(e.templates))
	for name := range e.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExecuteTemplate renders a named template into w. Map data is used as the
// template context; any other value is exposed as "data".
func (e *Pongo2Executor) ExecuteTemplate(w io.Writer, name string, data any) error {
	if e == nil {
		return export.NewError(export.KindNotImpl, "pongo2 executor not configured", nil)
	}
	tpl, ok := e.templates[name]
	if !ok {
		return export.NewError(export.KindNotFound, "template "+name+" not found", nil)
	}

	var ctx pongo2.Context
	switch v := data.(type) {
	case pongo2.Context:
		ctx = v
	case map[string]any:
		ctx = pongo2.Context(v)
	default:
		ctx = pongo2.Context{"data": v}
	}
	return tpl.ExecuteWriter(ctx, w)
}

// RegisterToJSON registers a to_json filter for embedding JSON in templates.
func RegisterToJSON() error {
	if pongo2.FilterExists("to_json") {
		return nil
	}
	err := pongo2.RegisterFilter("to_json", func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		payload, err := json.Marshal(in.Interface())
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:to_json", OrigError: err}
		}
		return pongo2.AsSafeValue(string(payload)), nil
	})
	if err != nil && pongo2.FilterExists("to_json") {
		return nil
	}
	return err
}
