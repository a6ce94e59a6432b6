package gallery

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-shader-export/catalog"
	"github.com/goliatone/go-shader-export/export"
	"github.com/goliatone/go-shader-export/sources"
)

func newTestService(previewer Previewer) (Service, *export.MemorySink) {
	sink := export.NewMemorySink()
	exp := export.NewExporter()
	exp.Sink = sink
	return NewService(Config{Exporter: exp, Previewer: previewer}), sink
}

func TestService_ListAndTags(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	all, err := svc.List(ctx, "")
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 shaders, got %d (%v)", len(all), err)
	}
	colors, err := svc.List(ctx, "colors")
	if err != nil || len(colors) != 1 || colors[0].ID != "gradient" {
		t.Fatalf("unexpected filter result %+v (%v)", colors, err)
	}
	tags, err := svc.Tags(ctx)
	if err != nil || len(tags) == 0 {
		t.Fatalf("expected tags, got %v (%v)", tags, err)
	}
}

func TestService_GetLoadsSources(t *testing.T) {
	svc, _ := newTestService(nil)
	shader, err := svc.Get(context.Background(), "ripple")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if shader.Name != "Ripple Effect" || !strings.Contains(shader.Sources.Fragment, "gl_FragColor") {
		t.Fatalf("unexpected shader %+v", shader.ShaderMetadata)
	}

	if _, err := svc.Get(context.Background(), "missing"); export.KindFromError(err) != export.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_ExportUsesCatalogName(t *testing.T) {
	svc, sink := newTestService(nil)
	result, err := svc.Export(context.Background(), "noise", "react", nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if result.Filename != "noise-generator.jsx" {
		t.Fatalf("unexpected filename %q", result.Filename)
	}

	download, err := sink.Get("noise-generator.jsx")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	pair, _ := sources.Embedded().Load(context.Background(), "noise")
	if !strings.Contains(string(download.Data), pair.Fragment) {
		t.Fatalf("export does not embed the loaded fragment")
	}
	if !strings.Contains(string(download.Data), "const NoiseGenerator = ") {
		t.Fatalf("export does not use the catalog name identifier")
	}

	history := svc.History("")
	if len(history) != 1 || history[0].ID != result.ID {
		t.Fatalf("unexpected history %+v", history)
	}
	if len(svc.History("jsx")) != 1 {
		t.Fatalf("expected alias filtered history")
	}
}

func TestService_ExportMissingSources(t *testing.T) {
	cat, _ := catalog.NewMemoryCatalog(catalog.ShaderMetadata{ID: "lava", Name: "Lava Lamp"})
	exp := export.NewExporter()
	exp.Sink = export.NewMemorySink()
	svc := NewService(Config{Catalog: cat, Exporter: exp})

	if _, err := svc.Export(context.Background(), "lava", export.FormatHTML, nil); export.KindFromError(err) != export.KindNotFound {
		t.Fatalf("expected not found for missing sources, got %v", err)
	}
}

func TestService_Preview(t *testing.T) {
	svc, _ := newTestService(nil)
	if _, err := svc.Preview(context.Background(), "ripple"); export.KindFromError(err) != export.KindNotImpl {
		t.Fatalf("expected not implemented without previewer, got %v", err)
	}

	var rendered string
	svc, _ = newTestService(PreviewerFunc(func(_ context.Context, html string) ([]byte, error) {
		rendered = html
		return []byte("png"), nil
	}))
	img, err := svc.Preview(context.Background(), "gradient")
	if err != nil || string(img) != "png" {
		t.Fatalf("unexpected preview %q (%v)", img, err)
	}
	if !strings.Contains(rendered, "<title>Animated Gradient</title>") {
		t.Fatalf("previewer did not receive the static page")
	}

	svc, _ = newTestService(PreviewerFunc(func(context.Context, string) ([]byte, error) {
		return nil, errors.New("browser crashed")
	}))
	if _, err := svc.Preview(context.Background(), "gradient"); export.KindFromError(err) != export.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestService_Formats(t *testing.T) {
	svc, _ := newTestService(nil)
	if len(svc.Formats()) != 6 {
		t.Fatalf("expected 6 formats")
	}
}
