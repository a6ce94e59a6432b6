package storefs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-shader-export/export"
)

// Meta is the sidecar record written next to each saved download.
type Meta struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	SavedAt     time.Time `json:"saved_at"`
}

// Store saves downloads into a directory on disk.
type Store struct {
	Root string
	Now  func() time.Time
}

// NewStore creates a filesystem download sink rooted at root.
func NewStore(root string) *Store {
	return &Store{Root: root, Now: time.Now}
}

// Save writes the download atomically under its filename, replacing any
// previous file of the same name.
func (s *Store) Save(ctx context.Context, d export.Download) error {
	if err := s.check(d.Filename); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	pathOnDisk, err := s.resolvePath(d.Filename)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(pathOnDisk), 0o755); err != nil {
		return err
	}
	if err := writeAtomic(pathOnDisk, ".download-*", d.Data); err != nil {
		return err
	}

	contentType := d.ContentType
	if contentType == "" {
		contentType = export.ContentTypeForFile(d.Filename)
	}
	return s.writeMeta(pathOnDisk, Meta{
		Filename:    d.Filename,
		ContentType: contentType,
		Size:        int64(len(d.Data)),
		SavedAt:     s.now(),
	})
}

// Open reads a saved download back.
func (s *Store) Open(ctx context.Context, filename string) (export.Download, error) {
	_ = ctx
	if err := s.check(filename); err != nil {
		return export.Download{}, err
	}
	pathOnDisk, err := s.resolvePath(filename)
	if err != nil {
		return export.Download{}, err
	}

	data, err := os.ReadFile(pathOnDisk)
	if err != nil {
		if os.IsNotExist(err) {
			return export.Download{}, export.NewError(export.KindNotFound, fmt.Sprintf("download %q not found", filename), err)
		}
		return export.Download{}, err
	}

	meta := s.readMeta(pathOnDisk)
	if meta.ContentType == "" {
		meta.ContentType = export.ContentTypeForFile(filename)
	}
	return export.Download{Filename: filename, ContentType: meta.ContentType, Data: data}, nil
}

// Delete removes a saved download and its sidecar.
func (s *Store) Delete(ctx context.Context, filename string) error {
	_ = ctx
	if err := s.check(filename); err != nil {
		return err
	}
	pathOnDisk, err := s.resolvePath(filename)
	if err != nil {
		return err
	}
	_ = os.Remove(pathOnDisk)
	_ = os.Remove(metaPath(pathOnDisk))
	return nil
}

// List returns the sidecar records of every saved download, by filename.
func (s *Store) List(ctx context.Context) ([]Meta, error) {
	_ = ctx
	if s == nil || s.Root == "" {
		return nil, export.NewError(export.KindValidation, "store root is required", nil)
	}
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return nil, err
	}

	var out []Meta
	err = filepath.WalkDir(root, func(p string, entry os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == root {
				return filepath.SkipDir
			}
			return err
		}
		if entry.IsDir() || !strings.HasSuffix(p, metaSuffix) {
			return nil
		}
		meta := s.readMeta(strings.TrimSuffix(p, metaSuffix))
		if meta.Filename != "" {
			out = append(out, meta)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, nil
}

// Prune deletes downloads saved before now minus olderThan and returns the
// removed entries. A non-positive olderThan keeps everything.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) ([]Meta, error) {
	if olderThan <= 0 {
		return nil, nil
	}
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	cutoff := s.now().Add(-olderThan)
	var removed []Meta
	for _, meta := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if meta.SavedAt.IsZero() || !meta.SavedAt.Before(cutoff) {
			continue
		}
		if err := s.Delete(ctx, meta.Filename); err != nil {
			return removed, err
		}
		removed = append(removed, meta)
	}
	return removed, nil
}

func (s *Store) check(filename string) error {
	if s == nil {
		return export.NewError(export.KindInternal, "store is nil", nil)
	}
	if s.Root == "" {
		return export.NewError(export.KindValidation, "store root is required", nil)
	}
	if filename == "" {
		return export.NewError(export.KindValidation, "download filename is required", nil)
	}
	return nil
}

func (s *Store) resolvePath(filename string) (string, error) {
	clean := path.Clean("/" + filename)
	rel := strings.TrimPrefix(clean, "/")
	if rel == "" || rel == "." {
		return "", export.NewError(export.KindValidation, "invalid download filename", nil)
	}

	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", err
	}
	target := filepath.Join(root, filepath.FromSlash(rel))
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", export.NewError(export.KindValidation, "download filename escapes root", nil)
	}
	return target, nil
}

func (s *Store) writeMeta(pathOnDisk string, meta Meta) error {
	payload, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return writeAtomic(metaPath(pathOnDisk), ".meta-*", payload)
}

func (s *Store) readMeta(pathOnDisk string) Meta {
	data, err := os.ReadFile(metaPath(pathOnDisk))
	if err != nil {
		return Meta{}
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return Meta{}
	}
	return meta
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func writeAtomic(target, pattern string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), pattern)
	if err != nil {
		return err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

const metaSuffix = ".meta.json"

func metaPath(pathOnDisk string) string {
	return pathOnDisk + metaSuffix
}
