package command

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-shader-export/export"
)

func TestBatchCommand_RunHonorsLimits(t *testing.T) {
	svc, sink := newTestGallery()
	loader := func(ctx context.Context) ([]BatchItem, error) {
		return []BatchItem{
			{ID: "ripple", Format: export.FormatHTML},
			{ID: "noise", Format: export.FormatVue},
			{ID: "gradient", Format: export.FormatNext},
		}, nil
	}

	slept := 0
	cmd := NewBatchExportCommand(svc, sink, loader, WithBatchLimits(BatchLimits{MaxItems: 2, MinInterval: time.Millisecond}))
	cmd.sleep = func(time.Duration) { slept++ }

	results, err := cmd.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[1].Filename != "noise-generator.vue" {
		t.Fatalf("unexpected filename %q", results[1].Filename)
	}
	if slept != 1 {
		t.Fatalf("expected one pause between items, got %d", slept)
	}
	if len(sink.Downloads()) != 2 {
		t.Fatalf("expected 2 downloads, got %d", len(sink.Downloads()))
	}
}

func TestBatchCommand_RunFromFile(t *testing.T) {
	svc, sink := newTestGallery()
	path := filepath.Join(t.TempDir(), "batch.json")
	if err := os.WriteFile(path, []byte(`[{"id":"ripple","format":"jsx"},{"id":"noise"}]`), 0o644); err != nil {
		t.Fatalf("write batch: %v", err)
	}

	results, err := NewBatchExportCommand(svc, sink, nil).Run(context.Background(), path)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 2 || results[0].Filename != "ripple-effect.jsx" || results[1].Filename != "noise-generator.html" {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestBatchCommand_Errors(t *testing.T) {
	svc, sink := newTestGallery()
	if _, err := NewBatchExportCommand(svc, sink, nil).Run(context.Background(), ""); err == nil {
		t.Fatalf("expected error without loader")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	_ = os.WriteFile(path, []byte("{"), 0o644)
	if _, err := NewBatchExportCommand(svc, sink, nil).Run(context.Background(), path); err == nil {
		t.Fatalf("expected error for invalid batch file")
	}

	missing := func(context.Context) ([]BatchItem, error) {
		return []BatchItem{{ID: "ripple"}, {ID: "missing"}}, nil
	}
	results, err := NewBatchExportCommand(svc, sink, missing).Run(context.Background(), "")
	if export.KindFromError(err) != export.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected results up to the failure, got %d", len(results))
	}

	cli := NewBatchExportCommand(svc, sink, nil).CLIOptions()
	if len(cli.Path) == 0 || cli.Path[0] != "shaders-batch" {
		t.Fatalf("unexpected cli options %+v", cli)
	}
}
