package query

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-shader-export/catalog"
	"github.com/goliatone/go-shader-export/export"
	"github.com/goliatone/go-shader-export/gallery"
)

func serviceRequired() error {
	return errors.New("gallery service is required", errors.CategoryInternal).
		WithTextCode("SERVICE_REQUIRED")
}

// GetShaderHandler returns a single shader.
type GetShaderHandler struct {
	Service gallery.Service
}

func NewGetShaderHandler(svc gallery.Service) *GetShaderHandler {
	return &GetShaderHandler{Service: svc}
}

func (h *GetShaderHandler) Query(ctx context.Context, msg GetShader) (gallery.Shader, error) {
	if h == nil || h.Service == nil {
		return gallery.Shader{}, serviceRequired()
	}
	return h.Service.Get(ctx, msg.ID)
}

// ListShadersHandler returns catalog records.
type ListShadersHandler struct {
	Service gallery.Service
}

func NewListShadersHandler(svc gallery.Service) *ListShadersHandler {
	return &ListShadersHandler{Service: svc}
}

func (h *ListShadersHandler) Query(ctx context.Context, msg ListShaders) ([]catalog.ShaderMetadata, error) {
	if h == nil || h.Service == nil {
		return nil, serviceRequired()
	}
	return h.Service.List(ctx, msg.Tag)
}

// ListFormatsHandler returns the export format options.
type ListFormatsHandler struct {
	Service gallery.Service
}

func NewListFormatsHandler(svc gallery.Service) *ListFormatsHandler {
	return &ListFormatsHandler{Service: svc}
}

func (h *ListFormatsHandler) Query(ctx context.Context, msg ListFormats) ([]export.FormatOption, error) {
	_ = ctx
	_ = msg
	if h == nil || h.Service == nil {
		return nil, serviceRequired()
	}
	return h.Service.Formats(), nil
}

// ExportHistoryHandler returns recent exports.
type ExportHistoryHandler struct {
	Service gallery.Service
}

func NewExportHistoryHandler(svc gallery.Service) *ExportHistoryHandler {
	return &ExportHistoryHandler{Service: svc}
}

func (h *ExportHistoryHandler) Query(ctx context.Context, msg ExportHistory) ([]export.ExportResult, error) {
	_ = ctx
	if h == nil || h.Service == nil {
		return nil, serviceRequired()
	}
	return h.Service.History(msg.Format), nil
}
