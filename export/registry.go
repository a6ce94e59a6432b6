package export

import (
	"fmt"
	"sync"
)

// SingleGenerator produces one source file.
type SingleGenerator func(src SourcePair, title string) string

// MultiGenerator produces a filename to content mapping.
type MultiGenerator func(src SourcePair, title string) FileSet

// Generator is a registry entry. Exactly one of Single or Multi is set.
type Generator struct {
	Format      Format
	Label       string
	Extension   string
	ContentType string
	Family      string
	Single      SingleGenerator
	Multi       MultiGenerator
}

// Generate runs the generator and wraps its output as an Artifact.
func (g Generator) Generate(src SourcePair, title string) Artifact {
	if g.Multi != nil {
		return Artifact{
			Format:      g.Format,
			Files:       g.Multi(src, title).Files(),
			Archive:     true,
			ArchiveName: ArchiveFilename(title, g.Family),
		}
	}

	contentType := g.ContentType
	if contentType == "" {
		contentType = ContentTypeText
	}
	return Artifact{
		Format: g.Format,
		Files: []File{{
			Name:        SingleFilename(title, g.Extension),
			ContentType: contentType,
			Content:     g.Single(src, title),
		}},
	}
}

// GeneratorRegistry stores generators by format.
type GeneratorRegistry struct {
	mu         sync.RWMutex
	generators map[Format]Generator
	order      []Format
}

// NewGeneratorRegistry creates an empty registry.
func NewGeneratorRegistry() *GeneratorRegistry {
	return &GeneratorRegistry{generators: make(map[Format]Generator)}
}

// NewDefaultRegistry creates a registry holding the built-in generators.
func NewDefaultRegistry() *GeneratorRegistry {
	reg := NewGeneratorRegistry()
	for _, gen := range BuiltinGenerators() {
		_ = reg.Register(gen)
	}
	return reg
}

// Register adds a generator for a format.
func (r *GeneratorRegistry) Register(gen Generator) error {
	if gen.Format == "" {
		return NewError(KindValidation, "generator format is required", nil)
	}
	if (gen.Single == nil) == (gen.Multi == nil) {
		return NewError(KindValidation, fmt.Sprintf("generator %q must set exactly one of single or multi", gen.Format), nil)
	}
	if gen.Single != nil && gen.Extension == "" {
		return NewError(KindValidation, fmt.Sprintf("generator %q requires an extension", gen.Format), nil)
	}
	if gen.Multi != nil && gen.Family == "" {
		return NewError(KindValidation, fmt.Sprintf("generator %q requires an archive family", gen.Format), nil)
	}
	if gen.Label == "" {
		gen.Label = string(gen.Format)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.generators[gen.Format]; exists {
		return NewError(KindValidation, fmt.Sprintf("generator for %q already registered", gen.Format), nil)
	}
	r.generators[gen.Format] = gen
	r.order = append(r.order, gen.Format)
	return nil
}

// Resolve returns the generator for the format.
func (r *GeneratorRegistry) Resolve(format Format) (Generator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gen, ok := r.generators[format]
	return gen, ok
}

// List returns generators in registration order.
func (r *GeneratorRegistry) List() []Generator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Generator, 0, len(r.order))
	for _, format := range r.order {
		out = append(out, r.generators[format])
	}
	return out
}
