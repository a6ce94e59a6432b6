package command

import (
	"context"
	"testing"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-shader-export/catalog"
	"github.com/goliatone/go-shader-export/export"
	"github.com/goliatone/go-shader-export/gallery"
	shaderqry "github.com/goliatone/go-shader-export/query"
)

func TestRegisterHandlers_Dispatch(t *testing.T) {
	svc, sink := newTestGallery()

	reg := gcmd.NewRegistry()
	subs, err := RegisterHandlers(reg, svc)
	if err != nil {
		t.Fatalf("register handlers: %v", err)
	}
	defer func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}()

	result, err := dispatcher.DispatchWithResult[ExportShader, export.ExportResult](
		context.Background(),
		ExportShader{ID: "ripple", Format: export.FormatNext},
	)
	if err != nil {
		t.Fatalf("dispatch export: %v", err)
	}
	if result.Filename != "ripple-effect-nextjs.zip" || !result.Archived {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, err := sink.Get("ripple-effect-nextjs.zip"); err != nil {
		t.Fatalf("expected archive download: %v", err)
	}

	records, err := dispatcher.Query[shaderqry.ListShaders, []catalog.ShaderMetadata](
		context.Background(),
		shaderqry.ListShaders{Tag: "animation"},
	)
	if err != nil {
		t.Fatalf("query list: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	shader, err := dispatcher.Query[shaderqry.GetShader, gallery.Shader](
		context.Background(),
		shaderqry.GetShader{ID: "ripple"},
	)
	if err != nil {
		t.Fatalf("query get: %v", err)
	}
	if shader.ID != "ripple" {
		t.Fatalf("unexpected shader %q", shader.ID)
	}
}

func TestRegisterHandlers_RequiresService(t *testing.T) {
	if _, err := RegisterHandlers(nil, nil); err == nil {
		t.Fatalf("expected error without service")
	}
}
