package gallery

import (
	"context"
	"fmt"

	"github.com/goliatone/go-shader-export/catalog"
	"github.com/goliatone/go-shader-export/export"
	"github.com/goliatone/go-shader-export/sources"
)

// PreviewContentType is the content type of preview images.
const PreviewContentType = "image/png"

// Previewer renders an HTML document into an image.
type Previewer interface {
	Preview(ctx context.Context, html string) ([]byte, error)
}

// PreviewerFunc adapts a function to a Previewer.
type PreviewerFunc func(ctx context.Context, html string) ([]byte, error)

func (f PreviewerFunc) Preview(ctx context.Context, html string) ([]byte, error) {
	if f == nil {
		return nil, export.NewError(export.KindNotImpl, "previewer func is nil", nil)
	}
	return f(ctx, html)
}

// Shader is a catalog record together with its sources.
type Shader struct {
	catalog.ShaderMetadata
	Sources export.SourcePair `json:"sources"`
}

// Service exposes the shader gallery: browsing, exporting, and previews.
type Service interface {
	List(ctx context.Context, tag string) ([]catalog.ShaderMetadata, error)
	Tags(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id string) (Shader, error)
	Formats() []export.FormatOption
	Export(ctx context.Context, id string, format export.Format, sink export.Sink) (export.ExportResult, error)
	ExportSources(ctx context.Context, req export.ExportRequest) (export.ExportResult, error)
	Preview(ctx context.Context, id string) ([]byte, error)
	History(format export.Format) []export.ExportResult
}

// Config supplies dependencies for Service.
type Config struct {
	Catalog   catalog.Catalog
	Loader    sources.Loader
	Exporter  *export.Exporter
	Previewer Previewer
	Logger    export.Logger
}

type service struct {
	catalog   catalog.Catalog
	loader    sources.Loader
	exporter  *export.Exporter
	previewer Previewer
	logger    export.Logger
}

// NewService creates a Service. Missing collaborators default to the seeded
// memory catalog, the embedded shaders, and a default exporter.
func NewService(cfg Config) Service {
	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.NewSeededCatalog()
	}
	loader := cfg.Loader
	if loader == nil {
		loader = sources.Embedded()
	}
	exporter := cfg.Exporter
	if exporter == nil {
		exporter = export.NewExporter()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = export.NopLogger{}
	}
	return &service{
		catalog:   cat,
		loader:    loader,
		exporter:  exporter,
		previewer: cfg.Previewer,
		logger:    logger,
	}
}

func (s *service) List(ctx context.Context, tag string) ([]catalog.ShaderMetadata, error) {
	return s.catalog.FilterByTag(ctx, tag)
}

func (s *service) Tags(ctx context.Context) ([]string, error) {
	return s.catalog.Tags(ctx)
}

func (s *service) Get(ctx context.Context, id string) (Shader, error) {
	meta, err := s.catalog.Get(ctx, id)
	if err != nil {
		return Shader{}, err
	}
	pair, err := s.loader.Load(ctx, id)
	if err != nil {
		s.logger.Errorf("load sources for %s: %v", id, err)
		return Shader{}, err
	}
	return Shader{ShaderMetadata: meta, Sources: pair}, nil
}

func (s *service) Formats() []export.FormatOption {
	return export.FormatOptions(s.exporter.Generators)
}

func (s *service) Export(ctx context.Context, id string, format export.Format, sink export.Sink) (export.ExportResult, error) {
	shader, err := s.Get(ctx, id)
	if err != nil {
		return export.ExportResult{}, err
	}
	return s.exporter.Export(ctx, export.ExportRequest{
		Sources: shader.Sources,
		Title:   shader.Name,
		Format:  format,
		Sink:    sink,
	})
}

func (s *service) ExportSources(ctx context.Context, req export.ExportRequest) (export.ExportResult, error) {
	return s.exporter.Export(ctx, req)
}

func (s *service) Preview(ctx context.Context, id string) ([]byte, error) {
	if s.previewer == nil {
		return nil, export.NewError(export.KindNotImpl, "preview rendering not configured", nil)
	}
	shader, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	page := export.GenerateHTML(shader.Sources, shader.Name)
	img, err := s.previewer.Preview(ctx, page)
	if err != nil {
		return nil, export.NewError(export.KindInternal, fmt.Sprintf("preview %q failed", id), err)
	}
	return img, nil
}

func (s *service) History(format export.Format) []export.ExportResult {
	if s.exporter.History == nil {
		return nil
	}
	if format != "" {
		format = export.NormalizeFormat(format)
	}
	return s.exporter.History.List(format)
}
