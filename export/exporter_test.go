package export

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestExporter() (*Exporter, *MemorySink) {
	sink := NewMemorySink()
	exp := NewExporter()
	exp.Sink = sink
	exp.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	exp.IDGenerator = func() string { return "exp-1" }
	return exp, sink
}

func TestExporter_DownloadShaderHTML(t *testing.T) {
	exp, sink := newTestExporter()

	result, err := exp.DownloadShader(context.Background(), "void main(){}", "void main(){}", "My Shader", FormatHTML)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if result.Filename != "my-shader.html" || result.Format != FormatHTML {
		t.Fatalf("unexpected result %+v", result)
	}

	downloads := sink.Downloads()
	if len(downloads) != 1 {
		t.Fatalf("expected 1 download, got %d", len(downloads))
	}
	if downloads[0].Filename != "my-shader.html" || downloads[0].ContentType != ContentTypeHTML {
		t.Fatalf("unexpected download %s (%s)", downloads[0].Filename, downloads[0].ContentType)
	}
	if string(downloads[0].Data) != GenerateHTML(SourcePair{Fragment: "void main(){}", Vertex: "void main(){}"}, "My Shader") {
		t.Fatalf("download content differs from generator output")
	}
}

func TestExporter_UnknownFormatFallsBackToHTML(t *testing.T) {
	exp, sink := newTestExporter()
	logger := &recordingLogger{}
	exp.Logger = logger

	if _, err := exp.DownloadShader(context.Background(), testFragment, testVertex, "My Shader", "svelte"); err != nil {
		t.Fatalf("unknown format: %v", err)
	}
	if _, err := exp.DownloadShader(context.Background(), testFragment, testVertex, "My Shader", "html"); err != nil {
		t.Fatalf("html format: %v", err)
	}

	downloads := sink.Downloads()
	if len(downloads) != 2 {
		t.Fatalf("expected 2 downloads, got %d", len(downloads))
	}
	if downloads[0].Filename != downloads[1].Filename || string(downloads[0].Data) != string(downloads[1].Data) {
		t.Fatalf("unknown format output differs from html output")
	}
	if len(logger.warnings) != 1 {
		t.Fatalf("expected one fallback warning, got %d", len(logger.warnings))
	}

	history := exp.History.List("")
	if history[1].RequestedFormat != "svelte" || history[1].Format != FormatHTML {
		t.Fatalf("expected requested format recorded, got %+v", history[1])
	}
}

func TestExporter_UnknownFormatRejected(t *testing.T) {
	exp, sink := newTestExporter()
	exp.UnknownFormat = UnknownFormatReject

	_, err := exp.DownloadShader(context.Background(), testFragment, testVertex, "My Shader", "svelte")
	if KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(sink.Downloads()) != 0 {
		t.Fatalf("expected no downloads")
	}

	if _, err := exp.DownloadShader(context.Background(), testFragment, testVertex, "My Shader", "jsx"); err != nil {
		t.Fatalf("aliases must still resolve under reject: %v", err)
	}
}

func TestExporter_MultiFileFormats(t *testing.T) {
	cases := []struct {
		format   Format
		filename string
		entries  int
	}{
		{FormatAngular, "my-shader-angular.zip", 3},
		{FormatNext, "my-shader-nextjs.zip", 2},
	}
	for _, tc := range cases {
		exp, sink := newTestExporter()
		result, err := exp.DownloadShader(context.Background(), testFragment, testVertex, "My Shader", tc.format)
		if err != nil {
			t.Fatalf("%s: %v", tc.format, err)
		}
		if !result.Archived || result.Filename != tc.filename || len(result.Files) != tc.entries {
			t.Fatalf("%s: unexpected result %+v", tc.format, result)
		}
		if got := sink.Downloads(); len(got) != 1 || got[0].ContentType != ContentTypeZip {
			t.Fatalf("%s: expected one zip download", tc.format)
		}
	}
}

func TestExporter_EmitsLifecycleEvents(t *testing.T) {
	exp, _ := newTestExporter()
	var names []string
	exp.Emitter = ChangeEmitterFunc(func(_ context.Context, evt ChangeEvent) error {
		names = append(names, evt.Name)
		if evt.ExportID != "exp-1" {
			t.Fatalf("unexpected export id %q", evt.ExportID)
		}
		return errors.New("ignored")
	})
	exp.Packager = &Packager{NewArchiver: func() (Archiver, error) { return nil, errors.New("no zip") }}

	result, err := exp.DownloadShader(context.Background(), testFragment, testVertex, "My Shader", FormatNext)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !result.FellBack {
		t.Fatalf("expected fallback result")
	}
	if strings.Join(names, ",") != "export.generated,export.fallback,export.completed" {
		t.Fatalf("unexpected events %v", names)
	}
}

func TestExporter_RequiresSink(t *testing.T) {
	exp := NewExporter()
	_, err := exp.DownloadShader(context.Background(), testFragment, testVertex, "x", FormatHTML)
	if KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	sink := NewMemorySink()
	if _, err := exp.Export(context.Background(), ExportRequest{Sources: testSources(), Title: "x", Sink: sink}); err != nil {
		t.Fatalf("request sink: %v", err)
	}
	if _, err := sink.Get("x.html"); err != nil {
		t.Fatalf("expected request sink to receive the download: %v", err)
	}
}

func TestHistory_BoundedNewestFirst(t *testing.T) {
	history := NewHistory(2)
	history.Add(ExportResult{ID: "1", Format: FormatHTML})
	history.Add(ExportResult{ID: "2", Format: FormatReact})
	history.Add(ExportResult{ID: "3", Format: FormatHTML})

	all := history.List("")
	if len(all) != 2 || all[0].ID != "3" || all[1].ID != "2" {
		t.Fatalf("unexpected history %+v", all)
	}
	if html := history.List(FormatHTML); len(html) != 1 || html[0].ID != "3" {
		t.Fatalf("unexpected filtered history %+v", html)
	}
}

func TestMemorySink_CopiesData(t *testing.T) {
	sink := NewMemorySink()
	data := []byte("abc")
	if err := sink.Save(context.Background(), Download{Filename: "a.txt", Data: data}); err != nil {
		t.Fatalf("save: %v", err)
	}
	data[0] = 'z'
	got, err := sink.Get("a.txt")
	if err != nil || string(got.Data) != "abc" {
		t.Fatalf("expected stored copy, got %q (%v)", got.Data, err)
	}
	if _, err := sink.Get("missing"); KindFromError(err) != KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := sink.Save(context.Background(), Download{}); KindFromError(err) != KindValidation {
		t.Fatalf("expected validation error for empty filename")
	}
}

func TestExporter_DefaultFormatAppliesToEmptyAndUnknownKeys(t *testing.T) {
	cases := []struct {
		name     string
		format   Format
		policy   UnknownFormatPolicy
		warnings int
		wantErr  bool
	}{
		{name: "empty key", format: ""},
		{name: "blank key", format: "  "},
		{name: "unknown key", format: "svelte", warnings: 1},
		{name: "empty key under reject", format: "", policy: UnknownFormatReject},
		{name: "unknown key under reject", format: "svelte", policy: UnknownFormatReject, wantErr: true},
	}
	for _, tc := range cases {
		exp, sink := newTestExporter()
		logger := &recordingLogger{}
		exp.Logger = logger
		exp.DefaultFormat = FormatReact
		exp.UnknownFormat = tc.policy

		result, err := exp.DownloadShader(context.Background(), testFragment, testVertex, "My Shader", tc.format)
		if tc.wantErr {
			if KindFromError(err) != KindValidation {
				t.Fatalf("%s: expected validation error, got %v", tc.name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if result.Format != FormatReact || result.Filename != "my-shader.jsx" {
			t.Fatalf("%s: expected react default, got %+v", tc.name, result)
		}
		if got := sink.Downloads(); len(got) != 1 || got[0].Filename != "my-shader.jsx" {
			t.Fatalf("%s: expected one jsx download", tc.name)
		}
		if len(logger.warnings) != tc.warnings {
			t.Fatalf("%s: expected %d warnings, got %d", tc.name, tc.warnings, len(logger.warnings))
		}
	}
}

func TestExporter_ExportLeavesUnsetFieldsUntouched(t *testing.T) {
	sink := NewMemorySink()
	exp := &Exporter{Generators: NewDefaultRegistry(), Sink: sink}

	for _, format := range []Format{FormatHTML, FormatAngular} {
		result, err := exp.DownloadShader(context.Background(), testFragment, testVertex, "My Shader", format)
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if result.ID == "" || result.CreatedAt.IsZero() {
			t.Fatalf("%s: expected generated id and timestamp, got %+v", format, result)
		}
	}
	if exp.Now != nil || exp.IDGenerator != nil || exp.Packager != nil {
		t.Fatalf("export must not assign exporter fields")
	}
	if len(sink.Downloads()) != 2 {
		t.Fatalf("expected 2 downloads, got %d", len(sink.Downloads()))
	}
}
