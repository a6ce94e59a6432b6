package pagetemplate

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-shader-export/catalog"
	"github.com/goliatone/go-shader-export/export"
)

// DefaultTemplateName is the template rendered when none is configured.
const DefaultTemplateName = "gallery.html"

// DefaultMaxShaders bounds the number of shaders rendered on one page.
const DefaultMaxShaders = 500

// TemplateExecutor executes a named template with data.
type TemplateExecutor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

// PageData is the input of one gallery page.
type PageData struct {
	Title       string
	BasePath    string
	Tag         string
	Shaders     []catalog.ShaderMetadata
	Tags        []string
	Formats     []export.FormatOption
	GeneratedAt time.Time
}

// Renderer renders gallery pages.
type Renderer struct {
	Templates    TemplateExecutor
	TemplateName string
	MaxShaders   int
}

// NewRenderer creates a renderer backed by the embedded pongo2 templates.
func NewRenderer() (*Renderer, error) {
	executor, err := NewPongo2Executor(EmbeddedTemplates())
	if err != nil {
		return nil, err
	}
	return &Renderer{Templates: executor, TemplateName: DefaultTemplateName}, nil
}

// Render writes the page for data to w and returns the bytes written.
func (r *Renderer) Render(ctx context.Context, w io.Writer, data PageData) (int64, error) {
	if r == nil || r.Templates == nil {
		return 0, export.NewError(export.KindValidation, "page renderer requires templates", nil)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	maxShaders := r.MaxShaders
	if maxShaders <= 0 {
		maxShaders = DefaultMaxShaders
	}
	if len(data.Shaders) > maxShaders {
		return 0, export.NewError(export.KindValidation, "page renderer max shaders exceeded", nil)
	}

	name := r.TemplateName
	if name == "" {
		name = DefaultTemplateName
	}

	var buf bytes.Buffer
	if err := r.Templates.ExecuteTemplate(&buf, name, data.templateContext()); err != nil {
		return 0, export.NewError(export.KindInternal, "render gallery page", err)
	}
	return buf.WriteTo(w)
}

func (d PageData) templateContext() map[string]any {
	title := d.Title
	if title == "" {
		title = "Shader Gallery"
	}
	base := strings.TrimRight(d.BasePath, "/")
	generatedAt := d.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	formats := make([]map[string]any, 0, len(d.Formats))
	for _, option := range d.Formats {
		formats = append(formats, map[string]any{
			"format":    string(option.Format),
			"label":     option.Label,
			"extension": option.Extension,
			"archive":   option.Archive,
		})
	}

	shaders := make([]map[string]any, 0, len(d.Shaders))
	for _, meta := range d.Shaders {
		shaderPath := base + "/shaders/" + url.PathEscape(meta.ID)
		links := make([]map[string]any, 0, len(d.Formats))
		for _, option := range d.Formats {
			links = append(links, map[string]any{
				"label": option.Label,
				"href":  shaderPath + "/export?format=" + url.QueryEscape(string(option.Format)),
			})
		}
		shaders = append(shaders, map[string]any{
			"id":          meta.ID,
			"name":        meta.Name,
			"description": meta.Description,
			"tags":        meta.Tags,
			"href":        shaderPath,
			"preview":     shaderPath + "/preview",
			"exports":     links,
		})
	}

	return map[string]any{
		"title":        title,
		"base_path":    base,
		"tag":          d.Tag,
		"tags":         d.Tags,
		"shaders":      shaders,
		"shader_count": len(shaders),
		"formats":      formats,
		"generated":    generatedAt.UTC().Format(time.RFC3339),
	}
}
