package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"
)

func angularFiles() []File {
	return GenerateAngular(testSources(), "My Shader").Files()
}

func TestPackagerArchive_ZipEntriesMatch(t *testing.T) {
	sink := NewMemorySink()
	files := angularFiles()

	result, err := NewPackager().Archive(context.Background(), sink, "my-shader-angular.zip", files)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !result.Archived || result.FellBack {
		t.Fatalf("expected archived result, got %+v", result)
	}

	downloads := sink.Downloads()
	if len(downloads) != 1 {
		t.Fatalf("expected 1 download, got %d", len(downloads))
	}
	download := downloads[0]
	if download.Filename != "my-shader-angular.zip" || download.ContentType != ContentTypeZip {
		t.Fatalf("unexpected download %s (%s)", download.Filename, download.ContentType)
	}

	reader, err := zip.NewReader(bytes.NewReader(download.Data), int64(len(download.Data)))
	if err != nil {
		t.Fatalf("read zip: %v", err)
	}
	if len(reader.File) != len(files) {
		t.Fatalf("expected %d entries, got %d", len(files), len(reader.File))
	}
	for i, entry := range reader.File {
		if entry.Name != files[i].Name {
			t.Fatalf("expected entry %q, got %q", files[i].Name, entry.Name)
		}
		rc, err := entry.Open()
		if err != nil {
			t.Fatalf("open entry: %v", err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry: %v", err)
		}
		if string(data) != files[i].Content {
			t.Fatalf("entry %q content mismatch", entry.Name)
		}
	}
}

func TestPackagerArchive_FallsBackToIndividualFiles(t *testing.T) {
	sink := NewMemorySink()
	logger := &recordingLogger{}
	packager := &Packager{
		NewArchiver: func() (Archiver, error) {
			return ArchiverFunc(func(context.Context, []File, io.Writer) error {
				return errors.New("compressor unavailable")
			}), nil
		},
		Logger: logger,
	}
	files := angularFiles()

	result, err := packager.Archive(context.Background(), sink, "my-shader-angular.zip", files)
	if err != nil {
		t.Fatalf("fallback should not error: %v", err)
	}
	if !result.FellBack || result.Archived {
		t.Fatalf("expected fallback result, got %+v", result)
	}
	if result.Cause == nil {
		t.Fatalf("expected fallback cause")
	}
	if len(logger.errors) != 1 {
		t.Fatalf("expected archive failure to be logged once, got %d", len(logger.errors))
	}

	downloads := sink.Downloads()
	if len(downloads) != len(files) {
		t.Fatalf("expected %d downloads, got %d", len(files), len(downloads))
	}
	for i, download := range downloads {
		if download.Filename != files[i].Name {
			t.Fatalf("expected %q, got %q", files[i].Name, download.Filename)
		}
		if string(download.Data) != files[i].Content {
			t.Fatalf("download %q content mismatch", download.Filename)
		}
		if download.ContentType != ContentTypeForFile(download.Filename) {
			t.Fatalf("download %q has content type %q", download.Filename, download.ContentType)
		}
	}
}

func TestPackagerArchive_RecoversArchiverPanic(t *testing.T) {
	sink := NewMemorySink()
	packager := &Packager{
		NewArchiver: func() (Archiver, error) {
			return ArchiverFunc(func(context.Context, []File, io.Writer) error {
				panic("native compressor crashed")
			}), nil
		},
	}
	files := angularFiles()
	result, err := packager.Archive(context.Background(), sink, "x.zip", files)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !result.FellBack || len(sink.Downloads()) != len(files) {
		t.Fatalf("expected per-file fallback after panic, got %+v", result)
	}
}

func TestPackager_LoadsArchiverLazilyAndRetries(t *testing.T) {
	calls := 0
	packager := &Packager{
		NewArchiver: func() (Archiver, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("load failed")
			}
			return ZipArchiver{}, nil
		},
	}
	if calls != 0 {
		t.Fatalf("archiver should not load before first use")
	}

	sink := NewMemorySink()
	first, err := packager.Archive(context.Background(), sink, "a.zip", angularFiles())
	if err != nil {
		t.Fatalf("first archive: %v", err)
	}
	if !first.FellBack {
		t.Fatalf("expected first archive to fall back")
	}

	second, err := packager.Archive(context.Background(), sink, "b.zip", angularFiles())
	if err != nil {
		t.Fatalf("second archive: %v", err)
	}
	if !second.Archived {
		t.Fatalf("expected second archive to succeed after retry")
	}

	if _, err := packager.Archive(context.Background(), sink, "c.zip", angularFiles()); err != nil {
		t.Fatalf("third archive: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected archiver to be cached after success, loaded %d times", calls)
	}
}

func TestPackagerArchive_FallbackSaveErrors(t *testing.T) {
	failing := SinkFunc(func(context.Context, Download) error { return errors.New("disk full") })
	packager := &Packager{
		NewArchiver: func() (Archiver, error) { return nil, errors.New("no zip") },
	}
	result, err := packager.Archive(context.Background(), failing, "x.zip", angularFiles())
	if err == nil {
		t.Fatalf("expected error when every fallback save fails")
	}
	if KindFromError(err) != KindInternal {
		t.Fatalf("expected internal error, got %s", KindFromError(err))
	}
	if !result.FellBack || len(result.Filenames) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestPackager_RequiresSinkAndLiveContext(t *testing.T) {
	packager := NewPackager()
	if _, err := packager.Single(context.Background(), nil, File{Name: "a.html"}); KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := NewMemorySink()
	if _, err := packager.Archive(ctx, sink, "x.zip", angularFiles()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
	if len(sink.Downloads()) != 0 {
		t.Fatalf("expected no downloads after cancel")
	}
}

type recordingLogger struct {
	NopLogger
	warnings []string
	errors   []string
}

func (l *recordingLogger) Warnf(format string, args ...any) {
	l.warnings = append(l.warnings, format)
}

func (l *recordingLogger) Errorf(format string, args ...any) {
	l.errors = append(l.errors, format)
}
