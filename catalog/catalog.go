package catalog

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-shader-export/export"
)

// ShaderMetadata describes a shader in the gallery.
type ShaderMetadata struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags" yaml:"tags"`
}

// HasTag reports whether the shader carries tag.
func (m ShaderMetadata) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate checks the required fields.
func (m ShaderMetadata) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return export.NewError(export.KindValidation, "shader id is required", nil)
	}
	if strings.ContainsAny(m.ID, `/\`) {
		return export.NewError(export.KindValidation, fmt.Sprintf("shader id %q must not contain path separators", m.ID), nil)
	}
	if strings.TrimSpace(m.Name) == "" {
		return export.NewError(export.KindValidation, fmt.Sprintf("shader %q name is required", m.ID), nil)
	}
	return nil
}

// Catalog provides read access to shader metadata.
type Catalog interface {
	List(ctx context.Context) ([]ShaderMetadata, error)
	Get(ctx context.Context, id string) (ShaderMetadata, error)
	FilterByTag(ctx context.Context, tag string) ([]ShaderMetadata, error)
	Tags(ctx context.Context) ([]string, error)
}

// Seed returns the gallery's default shader records.
func Seed() []ShaderMetadata {
	return []ShaderMetadata{
		{
			ID:          "ripple",
			Name:        "Ripple Effect",
			Description: "A hypnotic ripple effect using sine waves",
			Tags:        []string{"waves", "animation", "blue"},
		},
		{
			ID:          "noise",
			Name:        "Noise Generator",
			Description: "Procedural noise pattern with animated movement",
			Tags:        []string{"noise", "procedural", "animation"},
		},
		{
			ID:          "gradient",
			Name:        "Animated Gradient",
			Description: "Smooth gradient transition with time-based animation",
			Tags:        []string{"gradient", "animation", "colors"},
		},
	}
}

// MemoryCatalog keeps shader metadata in memory, in insertion order.
type MemoryCatalog struct {
	mu      sync.RWMutex
	records map[string]ShaderMetadata
	order   []string
}

// NewMemoryCatalog creates a catalog holding records.
func NewMemoryCatalog(records ...ShaderMetadata) (*MemoryCatalog, error) {
	c := &MemoryCatalog{records: make(map[string]ShaderMetadata)}
	for _, record := range records {
		if err := c.Add(record); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// NewSeededCatalog creates a memory catalog holding Seed().
func NewSeededCatalog() *MemoryCatalog {
	c, err := NewMemoryCatalog(Seed()...)
	if err != nil {
		panic(err)
	}
	return c
}

// Add inserts a record. IDs are unique.
func (c *MemoryCatalog) Add(record ShaderMetadata) error {
	if err := record.Validate(); err != nil {
		return err
	}
	record.Tags = append([]string(nil), record.Tags...)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.records[record.ID]; exists {
		return export.NewError(export.KindValidation, fmt.Sprintf("shader %q already exists", record.ID), nil)
	}
	c.records[record.ID] = record
	c.order = append(c.order, record.ID)
	return nil
}

// List returns every record.
func (c *MemoryCatalog) List(ctx context.Context) ([]ShaderMetadata, error) {
	return c.filter(ctx, func(ShaderMetadata) bool { return true })
}

// Get returns the record for id.
func (c *MemoryCatalog) Get(ctx context.Context, id string) (ShaderMetadata, error) {
	_ = ctx
	c.mu.RLock()
	defer c.mu.RUnlock()
	record, ok := c.records[id]
	if !ok {
		return ShaderMetadata{}, export.NewError(export.KindNotFound, fmt.Sprintf("shader %q not found", id), nil)
	}
	return clone(record), nil
}

// FilterByTag returns the records carrying tag. An empty tag matches all.
func (c *MemoryCatalog) FilterByTag(ctx context.Context, tag string) ([]ShaderMetadata, error) {
	if tag == "" {
		return c.List(ctx)
	}
	return c.filter(ctx, func(m ShaderMetadata) bool { return m.HasTag(tag) })
}

// Tags returns the distinct tags in first-seen order.
func (c *MemoryCatalog) Tags(ctx context.Context) ([]string, error) {
	records, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	return CollectTags(records), nil
}

func (c *MemoryCatalog) filter(ctx context.Context, keep func(ShaderMetadata) bool) ([]ShaderMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ShaderMetadata, 0, len(c.order))
	for _, id := range c.order {
		record := c.records[id]
		if keep(record) {
			out = append(out, clone(record))
		}
	}
	return out, nil
}

// CollectTags returns the distinct tags of records in first-seen order.
func CollectTags(records []ShaderMetadata) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, record := range records {
		for _, tag := range record.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return tags
}

func clone(m ShaderMetadata) ShaderMetadata {
	m.Tags = append([]string(nil), m.Tags...)
	return m
}
