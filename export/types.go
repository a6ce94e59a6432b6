package export

import (
	"context"
	"sort"
	"time"
)

// Format is the export target format key.
type Format string

const (
	FormatHTML    Format = "html"
	FormatReact   Format = "react"
	FormatVue     Format = "vue"
	FormatJS      Format = "js"
	FormatAngular Format = "angular"
	FormatNext    Format = "next"
)

// DefaultFormat is used for empty and unrecognized format keys.
const DefaultFormat = FormatHTML

// Content types declared on downloads.
const (
	ContentTypeHTML = "text/html"
	ContentTypeText = "text/plain"
	ContentTypeZip  = "application/zip"
)

// UnknownFormatPolicy decides what happens to unrecognized format keys.
type UnknownFormatPolicy string

const (
	UnknownFormatFallback UnknownFormatPolicy = "fallback"
	UnknownFormatReject   UnknownFormatPolicy = "reject"
)

// SourcePair holds the two GLSL stages of a shader effect.
// Both are opaque and substituted verbatim.
type SourcePair struct {
	Fragment string `json:"fragment" yaml:"fragment"`
	Vertex   string `json:"vertex" yaml:"vertex"`
}

// ExportRequest captures a single export action.
type ExportRequest struct {
	Sources SourcePair
	Title   string
	Format  Format
	Sink    Sink
}

// File is a named text blob with its declared content type.
type File struct {
	Name        string
	ContentType string
	Content     string
}

// FileSet maps relative filenames to content for multi-file formats.
type FileSet map[string]string

// Names returns the filenames in lexical order.
func (fs FileSet) Names() []string {
	names := make([]string, 0, len(fs))
	for name := range fs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Files converts the set into ordered files with content types inferred from
// each extension.
func (fs FileSet) Files() []File {
	files := make([]File, 0, len(fs))
	for _, name := range fs.Names() {
		files = append(files, File{
			Name:        name,
			ContentType: ContentTypeForFile(name),
			Content:     fs[name],
		})
	}
	return files
}

// Artifact is the output of one generator call.
type Artifact struct {
	Format      Format
	Files       []File
	Archive     bool
	ArchiveName string
}

// Filename returns the name the artifact downloads under.
func (a Artifact) Filename() string {
	if a.Archive {
		return a.ArchiveName
	}
	if len(a.Files) == 0 {
		return ""
	}
	return a.Files[0].Name
}

// FileSet returns the artifact files keyed by name.
func (a Artifact) FileSet() FileSet {
	set := make(FileSet, len(a.Files))
	for _, file := range a.Files {
		set[file.Name] = file.Content
	}
	return set
}

// Download is one file save event.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Sink receives downloads. It stands in for the browser file save.
type Sink interface {
	Save(ctx context.Context, d Download) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, d Download) error

func (f SinkFunc) Save(ctx context.Context, d Download) error {
	if f == nil {
		return NewError(KindInternal, "sink func is nil", nil)
	}
	return f(ctx, d)
}

// PackageResult describes what the packager saved.
type PackageResult struct {
	Filenames []string
	Archived  bool
	FellBack  bool
	Bytes     int64
	Cause     error
}

// ExportResult captures a completed export.
type ExportResult struct {
	ID              string    `json:"id"`
	Format          Format    `json:"format"`
	RequestedFormat Format    `json:"requested_format,omitempty"`
	Title           string    `json:"title"`
	Filename        string    `json:"filename"`
	Files           []string  `json:"files"`
	Archived        bool      `json:"archived"`
	FellBack        bool      `json:"fell_back"`
	Bytes           int64     `json:"bytes"`
	CreatedAt       time.Time `json:"created_at"`
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger is a no-op logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

// ChangeEvent describes export lifecycle events.
type ChangeEvent struct {
	Name      string
	ExportID  string
	Format    Format
	Title     string
	Timestamp time.Time
	// Result is the export as known when the event fired.
	Result   ExportResult
	Metadata map[string]any
}

// ChangeEmitter emits lifecycle events.
type ChangeEmitter interface {
	Emit(ctx context.Context, evt ChangeEvent) error
}

// ChangeEmitterFunc adapts a function to a ChangeEmitter.
type ChangeEmitterFunc func(ctx context.Context, evt ChangeEvent) error

func (f ChangeEmitterFunc) Emit(ctx context.Context, evt ChangeEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, evt)
}
