package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Exporter selects a generator by format key, runs it, and hands the output
// to the packager.
type Exporter struct {
	Generators    *GeneratorRegistry
	Packager      *Packager
	Sink          Sink
	DefaultFormat Format
	UnknownFormat UnknownFormatPolicy
	History       *History
	Logger        Logger
	Emitter       ChangeEmitter
	Now           func() time.Time
	IDGenerator   func() string
}

// NewExporter creates an exporter with the built-in generators and a zip packager.
func NewExporter() *Exporter {
	return &Exporter{
		Generators:    NewDefaultRegistry(),
		Packager:      NewPackager(),
		DefaultFormat: DefaultFormat,
		UnknownFormat: UnknownFormatFallback,
		History:       NewHistory(DefaultHistoryLimit),
		Logger:        NopLogger{},
		Now:           time.Now,
		IDGenerator:   uuid.NewString,
	}
}

// DownloadShader exports a source pair under title in the given format to
// the exporter's default sink.
func (e *Exporter) DownloadShader(ctx context.Context, fragment, vertex, title string, format Format) (ExportResult, error) {
	return e.Export(ctx, ExportRequest{
		Sources: SourcePair{Fragment: fragment, Vertex: vertex},
		Title:   title,
		Format:  format,
	})
}

// ResolveGenerator maps a format key to its generator, applying aliases, the
// default format, and the unknown format policy.
func (e *Exporter) ResolveGenerator(format Format) (Generator, error) {
	if e == nil || e.Generators == nil {
		return Generator{}, NewError(KindInternal, "generator registry is not configured", nil)
	}

	normalized := NormalizeFormat(format)
	if normalized != "" {
		if gen, ok := e.Generators.Resolve(normalized); ok {
			return gen, nil
		}
		if e.UnknownFormat == UnknownFormatReject {
			return Generator{}, NewError(KindValidation, fmt.Sprintf("unknown export format %q", format), nil)
		}
	}

	fallback := NormalizeFormat(e.DefaultFormat)
	if fallback == "" {
		fallback = DefaultFormat
	}
	gen, ok := e.Generators.Resolve(fallback)
	if !ok {
		return Generator{}, NewError(KindNotFound, fmt.Sprintf("default format %q not registered", fallback), nil)
	}
	if normalized != "" {
		e.logger().Warnf("unknown export format %q, using %s", format, fallback)
	}
	return gen, nil
}

// Generate produces the artifact for a request without saving it.
func (e *Exporter) Generate(req ExportRequest) (Artifact, error) {
	gen, err := e.ResolveGenerator(req.Format)
	if err != nil {
		return Artifact{}, err
	}
	return gen.Generate(req.Sources, req.Title), nil
}

// Export generates the request's artifact and saves it through the sink.
func (e *Exporter) Export(ctx context.Context, req ExportRequest) (ExportResult, error) {
	if e == nil {
		return ExportResult{}, NewError(KindInternal, "exporter is nil", nil)
	}
	sink := req.Sink
	if sink == nil {
		sink = e.Sink
	}
	if sink == nil {
		return ExportResult{}, NewError(KindValidation, "download sink is required", nil)
	}

	artifact, err := e.Generate(req)
	if err != nil {
		return ExportResult{}, err
	}

	result := ExportResult{
		ID:        e.newID(),
		Format:    artifact.Format,
		Title:     req.Title,
		Filename:  artifact.Filename(),
		CreatedAt: e.now(),
	}
	if NormalizeFormat(req.Format) != artifact.Format {
		result.RequestedFormat = req.Format
	}
	for _, file := range artifact.Files {
		result.Files = append(result.Files, file.Name)
	}

	e.emit(ctx, result, "export.generated", map[string]any{"files": len(artifact.Files)})

	var packaged PackageResult
	if artifact.Archive {
		packaged, err = e.packager().Archive(ctx, sink, artifact.ArchiveName, artifact.Files)
	} else {
		packaged, err = e.packager().Single(ctx, sink, artifact.Files[0])
	}
	result.Archived = packaged.Archived
	result.FellBack = packaged.FellBack
	result.Bytes = packaged.Bytes
	if err != nil {
		e.logger().Errorf("export %s (%s) failed: %v", result.ID, result.Format, err)
		e.emit(ctx, result, "export.failed", map[string]any{"error": err.Error()})
		return result, err
	}

	switch {
	case packaged.FellBack:
		e.emit(ctx, result, "export.fallback", map[string]any{
			"downloads": len(packaged.Filenames),
			"cause":     fmt.Sprint(packaged.Cause),
		})
	case packaged.Archived:
		e.emit(ctx, result, "export.archived", map[string]any{"bytes": packaged.Bytes})
	}

	if e.History != nil {
		e.History.Add(result)
	}
	e.emit(ctx, result, "export.completed", nil)
	e.logger().Infof("exported %q as %s to %s (%d bytes)", req.Title, result.Format, result.Filename, result.Bytes)
	return result, nil
}

func (e *Exporter) emit(ctx context.Context, result ExportResult, name string, meta map[string]any) {
	if e.Emitter == nil {
		return
	}
	if err := e.Emitter.Emit(ctx, ChangeEvent{
		Name:      name,
		ExportID:  result.ID,
		Format:    result.Format,
		Title:     result.Title,
		Timestamp: e.now(),
		Result:    result,
		Metadata:  meta,
	}); err != nil {
		e.logger().Debugf("emit %s failed: %v", name, err)
	}
}

func (e *Exporter) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Exporter) newID() string {
	if e.IDGenerator == nil {
		return uuid.NewString()
	}
	return e.IDGenerator()
}

func (e *Exporter) packager() *Packager {
	if e.Packager == nil {
		return NewPackager()
	}
	return e.Packager
}

func (e *Exporter) logger() Logger {
	if e.Logger == nil {
		return NopLogger{}
	}
	return e.Logger
}
