package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/klauspost/compress/zip"
)

// Archiver writes files into a single compressed archive.
type Archiver interface {
	Archive(ctx context.Context, files []File, w io.Writer) error
}

// ArchiverFunc adapts a function to an Archiver.
type ArchiverFunc func(ctx context.Context, files []File, w io.Writer) error

func (f ArchiverFunc) Archive(ctx context.Context, files []File, w io.Writer) error {
	if f == nil {
		return NewError(KindInternal, "archiver func is nil", nil)
	}
	return f(ctx, files, w)
}

// ZipArchiver writes deflate-compressed zip archives.
type ZipArchiver struct {
	Now func() time.Time
}

// Archive writes every file as a zip entry in order.
func (a ZipArchiver) Archive(ctx context.Context, files []File, w io.Writer) error {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}

	zw := zip.NewWriter(w)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			_ = zw.Close()
			return err
		}
		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:     file.Name,
			Method:   zip.Deflate,
			Modified: now(),
		})
		if err != nil {
			_ = zw.Close()
			return err
		}
		if _, err := io.WriteString(entry, file.Content); err != nil {
			_ = zw.Close()
			return err
		}
	}
	return zw.Close()
}

// Packager turns generated files into downloads.
type Packager struct {
	// NewArchiver builds the archive tooling on first use. A failed build is
	// retried on the next archive request.
	NewArchiver func() (Archiver, error)
	Logger      Logger

	mu       sync.Mutex
	archiver Archiver
}

// NewPackager creates a packager backed by ZipArchiver.
func NewPackager() *Packager {
	return &Packager{
		NewArchiver: func() (Archiver, error) { return ZipArchiver{}, nil },
		Logger:      NopLogger{},
	}
}

// Single saves one file.
func (p *Packager) Single(ctx context.Context, sink Sink, file File) (PackageResult, error) {
	if sink == nil {
		return PackageResult{}, NewError(KindValidation, "download sink is required", nil)
	}
	if err := ctx.Err(); err != nil {
		return PackageResult{}, err
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = ContentTypeForFile(file.Name)
	}
	data := []byte(file.Content)
	if err := sink.Save(ctx, Download{Filename: file.Name, ContentType: contentType, Data: data}); err != nil {
		return PackageResult{}, NewError(KindInternal, fmt.Sprintf("save %q failed", file.Name), err)
	}
	return PackageResult{
		Filenames: []string{file.Name},
		Bytes:     int64(len(data)),
	}, nil
}

// Archive saves files as one zip archive. When the archive cannot be built
// every file is saved individually instead.
func (p *Packager) Archive(ctx context.Context, sink Sink, name string, files []File) (PackageResult, error) {
	if sink == nil {
		return PackageResult{}, NewError(KindValidation, "download sink is required", nil)
	}
	if err := ctx.Err(); err != nil {
		return PackageResult{}, err
	}

	data, archiveErr := p.buildArchive(ctx, files)
	if archiveErr == nil {
		if err := sink.Save(ctx, Download{Filename: name, ContentType: ContentTypeZip, Data: data}); err != nil {
			return PackageResult{}, NewError(KindInternal, fmt.Sprintf("save %q failed", name), err)
		}
		return PackageResult{
			Filenames: []string{name},
			Archived:  true,
			Bytes:     int64(len(data)),
		}, nil
	}

	if errors.Is(archiveErr, context.Canceled) || errors.Is(archiveErr, context.DeadlineExceeded) {
		return PackageResult{}, archiveErr
	}

	p.logger().Errorf("archive %s failed, saving %d files individually: %v", name, len(files), archiveErr)
	result := PackageResult{FellBack: true, Cause: archiveErr}
	var saveErrs []error
	for _, file := range files {
		single, err := p.Single(ctx, sink, File{Name: file.Name, ContentType: ContentTypeForFile(file.Name), Content: file.Content})
		if err != nil {
			saveErrs = append(saveErrs, err)
			continue
		}
		result.Filenames = append(result.Filenames, single.Filenames...)
		result.Bytes += single.Bytes
	}
	if len(saveErrs) > 0 {
		return result, NewError(KindInternal, "fallback save failed", errors.Join(saveErrs...))
	}
	return result, nil
}

func (p *Packager) buildArchive(ctx context.Context, files []File) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("archiver panic: %v", r)
		}
	}()

	archiver, err := p.loadArchiver()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := archiver.Archive(ctx, files, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *Packager) loadArchiver() (Archiver, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.archiver != nil {
		return p.archiver, nil
	}
	if p.NewArchiver == nil {
		return nil, NewError(KindNotImpl, "archiver not configured", nil)
	}
	archiver, err := p.NewArchiver()
	if err != nil {
		return nil, err
	}
	if archiver == nil {
		return nil, NewError(KindNotImpl, "archiver unavailable", nil)
	}
	p.archiver = archiver
	return archiver, nil
}

func (p *Packager) logger() Logger {
	if p.Logger == nil {
		return NopLogger{}
	}
	return p.Logger
}
