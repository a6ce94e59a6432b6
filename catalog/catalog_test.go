package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-shader-export/export"
)

func TestMemoryCatalog_Seed(t *testing.T) {
	c := NewSeededCatalog()
	ctx := context.Background()

	records, err := c.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 || records[0].ID != "ripple" || records[2].ID != "gradient" {
		t.Fatalf("unexpected records %+v", records)
	}

	noise, err := c.Get(ctx, "noise")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if noise.Name != "Noise Generator" {
		t.Fatalf("unexpected name %q", noise.Name)
	}

	if _, err := c.Get(ctx, "missing"); export.KindFromError(err) != export.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryCatalog_FilterByTag(t *testing.T) {
	c := NewSeededCatalog()
	ctx := context.Background()

	animated, err := c.FilterByTag(ctx, "animation")
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(animated) != 3 {
		t.Fatalf("expected 3 animated shaders, got %d", len(animated))
	}

	blue, _ := c.FilterByTag(ctx, "blue")
	if len(blue) != 1 || blue[0].ID != "ripple" {
		t.Fatalf("unexpected blue shaders %+v", blue)
	}

	all, _ := c.FilterByTag(ctx, "")
	if len(all) != 3 {
		t.Fatalf("expected empty tag to match all, got %d", len(all))
	}

	none, _ := c.FilterByTag(ctx, "sepia")
	if len(none) != 0 {
		t.Fatalf("expected no matches, got %d", len(none))
	}
}

func TestMemoryCatalog_Tags(t *testing.T) {
	tags, err := NewSeededCatalog().Tags(context.Background())
	if err != nil {
		t.Fatalf("tags: %v", err)
	}
	want := []string{"waves", "animation", "blue", "noise", "procedural", "gradient", "colors"}
	if strings.Join(tags, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, tags)
	}
}

func TestMemoryCatalog_AddValidates(t *testing.T) {
	c, err := NewMemoryCatalog()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := c.Add(ShaderMetadata{Name: "x"}); export.KindFromError(err) != export.KindValidation {
		t.Fatalf("expected validation error for missing id")
	}
	if err := c.Add(ShaderMetadata{ID: "../x", Name: "x"}); export.KindFromError(err) != export.KindValidation {
		t.Fatalf("expected validation error for path id")
	}
	if err := c.Add(ShaderMetadata{ID: "lava", Name: "Lava Lamp"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.Add(ShaderMetadata{ID: "lava", Name: "Lava Lamp"}); export.KindFromError(err) != export.KindValidation {
		t.Fatalf("expected duplicate error")
	}
}

func TestMemoryCatalog_ReturnsCopies(t *testing.T) {
	c := NewSeededCatalog()
	ctx := context.Background()
	record, _ := c.Get(ctx, "ripple")
	record.Tags[0] = "mutated"

	again, _ := c.Get(ctx, "ripple")
	if again.Tags[0] != "waves" {
		t.Fatalf("catalog record was mutated through a returned copy")
	}
}

func TestLoadYAML(t *testing.T) {
	doc := `
shaders:
  - id: lava
    name: Lava Lamp
    description: Metaballs drifting upward
    tags: [blobs, animation]
  - id: home
    name: Home Background
`
	records, err := LoadYAML(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 2 || records[0].ID != "lava" || len(records[0].Tags) != 2 {
		t.Fatalf("unexpected records %+v", records)
	}

	if _, err := LoadYAML(strings.NewReader("shaders:\n  - name: missing id\n")); export.KindFromError(err) != export.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := LoadYAML(strings.NewReader("shaders: [")); export.KindFromError(err) != export.KindValidation {
		t.Fatalf("expected parse error, got %v", err)
	}
	empty, err := LoadYAML(strings.NewReader(""))
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty document to load nothing, got %v (%v)", empty, err)
	}
}
