package exportapi

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/goliatone/go-shader-export/export"
)

// DefaultMaxBodyBytes bounds POST export payloads.
const DefaultMaxBodyBytes int64 = 1 << 20

// Request provides minimal request access for transport adapters.
type Request interface {
	Context() context.Context
	Method() string
	Path() string
	Header(name string) string
	Query(name string) string
	Body() io.ReadCloser
}

// ExportPayload is the JSON body of POST export requests. Either ID names a
// catalog shader or Fragment/Vertex carry ad-hoc sources.
type ExportPayload struct {
	ID       string        `json:"id,omitempty"`
	Title    string        `json:"title,omitempty"`
	Format   export.Format `json:"format,omitempty"`
	Fragment string        `json:"fragment,omitempty"`
	Vertex   string        `json:"vertex,omitempty"`
}

// HasSources reports whether the payload carries ad-hoc sources.
func (p ExportPayload) HasSources() bool {
	return p.Fragment != "" || p.Vertex != ""
}

// Validate checks that exactly one shader reference is present.
func (p ExportPayload) Validate() error {
	id := strings.TrimSpace(p.ID)
	switch {
	case id == "" && !p.HasSources():
		return export.NewError(export.KindValidation, "shader id or sources are required", nil)
	case id != "" && p.HasSources():
		return export.NewError(export.KindValidation, "shader id and sources are mutually exclusive", nil)
	}
	return nil
}

// DecodeExportPayload reads a JSON export payload of at most maxBytes.
func DecodeExportPayload(req Request, maxBytes int64) (ExportPayload, error) {
	if req == nil {
		return ExportPayload{}, export.NewError(export.KindInternal, "request is nil", nil)
	}
	body := req.Body()
	if body == nil {
		return ExportPayload{}, export.NewError(export.KindValidation, "request body is required", nil)
	}
	defer body.Close()
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	var payload ExportPayload
	decoder := json.NewDecoder(io.LimitReader(body, maxBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		return ExportPayload{}, export.NewError(export.KindValidation, "invalid request payload", err)
	}
	if err := payload.Validate(); err != nil {
		return ExportPayload{}, err
	}
	return payload, nil
}
