package command

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-shader-export/export"
	"github.com/goliatone/go-shader-export/gallery"
)

func newTestGallery() (gallery.Service, *export.MemorySink) {
	sink := export.NewMemorySink()
	exp := export.NewExporter()
	exp.Sink = sink
	return gallery.NewService(gallery.Config{Exporter: exp}), sink
}

func TestExportShader_Validate(t *testing.T) {
	if err := (ExportShader{}).Validate(); err == nil {
		t.Fatalf("expected error without id or sources")
	}
	if err := (ExportShader{ID: "ripple", Sources: &export.SourcePair{}}).Validate(); err == nil {
		t.Fatalf("expected error with both id and sources")
	}
	if err := (ExportShader{ID: "ripple"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExportShaderHandler_CatalogShader(t *testing.T) {
	svc, sink := newTestGallery()
	handler := NewExportShaderHandler(svc)

	var got export.ExportResult
	result := gcmd.NewResult[export.ExportResult]()
	ctx := gcmd.ContextWithResult(context.Background(), result)

	err := handler.Execute(ctx, ExportShader{ID: "gradient", Format: export.FormatAngular, Result: &got})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got.Filename != "animated-gradient-angular.zip" {
		t.Fatalf("unexpected filename %q", got.Filename)
	}

	stored, ok := result.Load()
	if !ok || stored.ID != got.ID {
		t.Fatalf("expected context result %q, got %q", got.ID, stored.ID)
	}
	if len(sink.Downloads()) != 1 {
		t.Fatalf("expected one download")
	}
}

func TestExportShaderHandler_AdHocSources(t *testing.T) {
	svc, sink := newTestGallery()
	handler := NewExportShaderHandler(svc)

	var got export.ExportResult
	err := handler.Execute(context.Background(), ExportShader{
		Title:   "My Shader",
		Sources: &export.SourcePair{Fragment: "void main(){}", Vertex: "void main(){}"},
		Result:  &got,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got.Filename != "my-shader.html" {
		t.Fatalf("expected default html export, got %q", got.Filename)
	}
	if _, err := sink.Get("my-shader.html"); err != nil {
		t.Fatalf("expected download: %v", err)
	}
}

func TestExportShaderHandler_RequiresService(t *testing.T) {
	var handler *ExportShaderHandler
	if err := handler.Execute(context.Background(), ExportShader{ID: "x"}); err == nil {
		t.Fatalf("expected error without service")
	}
}

func TestScaffoldShaderHandler(t *testing.T) {
	root := t.TempDir()
	handler := NewScaffoldShaderHandler()

	var dir string
	if err := handler.Execute(context.Background(), ScaffoldShader{Root: root, Name: "lava", Result: &dir}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if dir != filepath.Join(root, "lava") {
		t.Fatalf("unexpected dir %q", dir)
	}
	if _, err := os.Stat(filepath.Join(dir, "fragment.glsl")); err != nil {
		t.Fatalf("expected fragment file: %v", err)
	}

	handler.Scaffold = func(string, string) (string, error) { return "", errors.New("disk full") }
	if err := handler.Execute(context.Background(), ScaffoldShader{Root: root, Name: "other"}); err == nil {
		t.Fatalf("expected scaffold error")
	}
}
