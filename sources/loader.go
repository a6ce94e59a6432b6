package sources

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/goliatone/go-shader-export/export"
)

// Source file names inside a shader directory.
const (
	FragmentFile = "fragment.glsl"
	VertexFile   = "vertex.glsl"
)

// Loader resolves a shader id to its source pair.
type Loader interface {
	Load(ctx context.Context, id string) (export.SourcePair, error)
}

// LoaderFunc adapts a function to a Loader.
type LoaderFunc func(ctx context.Context, id string) (export.SourcePair, error)

// Load delegates to the function.
func (f LoaderFunc) Load(ctx context.Context, id string) (export.SourcePair, error) {
	if f == nil {
		return export.SourcePair{}, export.NewError(export.KindValidation, "loader func is nil", nil)
	}
	return f(ctx, id)
}

// FSLoader reads <id>/fragment.glsl and <id>/vertex.glsl from a file system.
type FSLoader struct {
	FS fs.FS
}

// NewFSLoader creates a loader over fsys.
func NewFSLoader(fsys fs.FS) *FSLoader {
	return &FSLoader{FS: fsys}
}

// Load reads both stages of the shader.
func (l *FSLoader) Load(ctx context.Context, id string) (export.SourcePair, error) {
	if l == nil || l.FS == nil {
		return export.SourcePair{}, export.NewError(export.KindNotImpl, "source file system not configured", nil)
	}
	if err := ValidateID(id); err != nil {
		return export.SourcePair{}, err
	}
	if err := ctx.Err(); err != nil {
		return export.SourcePair{}, err
	}

	fragment, err := l.read(id, FragmentFile)
	if err != nil {
		return export.SourcePair{}, err
	}
	vertex, err := l.read(id, VertexFile)
	if err != nil {
		return export.SourcePair{}, err
	}
	return export.SourcePair{Fragment: fragment, Vertex: vertex}, nil
}

// IDs lists the shader directories holding both stages.
func (l *FSLoader) IDs() ([]string, error) {
	if l == nil || l.FS == nil {
		return nil, export.NewError(export.KindNotImpl, "source file system not configured", nil)
	}
	entries, err := fs.ReadDir(l.FS, ".")
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if !exists(l.FS, path.Join(entry.Name(), FragmentFile)) || !exists(l.FS, path.Join(entry.Name(), VertexFile)) {
			continue
		}
		ids = append(ids, entry.Name())
	}
	return ids, nil
}

func (l *FSLoader) read(id, name string) (string, error) {
	data, err := fs.ReadFile(l.FS, path.Join(id, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", export.NewError(export.KindNotFound, fmt.Sprintf("shader %q has no %s", id, name), err)
		}
		return "", export.NewError(export.KindInternal, fmt.Sprintf("read shader %q %s", id, name), err)
	}
	return string(data), nil
}

// ValidateID rejects ids that are empty or reach outside their directory.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return export.NewError(export.KindValidation, "shader id is required", nil)
	}
	if id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return export.NewError(export.KindValidation, fmt.Sprintf("invalid shader id %q", id), nil)
	}
	return nil
}

func exists(fsys fs.FS, name string) bool {
	_, err := fs.Stat(fsys, name)
	return err == nil
}
