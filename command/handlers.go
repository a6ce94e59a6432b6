package command

import (
	"context"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-shader-export/export"
	"github.com/goliatone/go-shader-export/gallery"
	"github.com/goliatone/go-shader-export/sources"
)

// ExportShaderHandler handles shader export commands.
type ExportShaderHandler struct {
	Service gallery.Service
}

func NewExportShaderHandler(svc gallery.Service) *ExportShaderHandler {
	return &ExportShaderHandler{Service: svc}
}

func (h *ExportShaderHandler) Execute(ctx context.Context, msg ExportShader) error {
	if h == nil || h.Service == nil {
		return errors.New("gallery service is required", errors.CategoryInternal).
			WithTextCode("SERVICE_REQUIRED")
	}

	var (
		result export.ExportResult
		err    error
	)
	if msg.Sources != nil {
		result, err = h.Service.ExportSources(ctx, export.ExportRequest{
			Sources: *msg.Sources,
			Title:   msg.Title,
			Format:  msg.Format,
			Sink:    msg.Sink,
		})
	} else {
		result, err = h.Service.Export(ctx, msg.ID, msg.Format, msg.Sink)
	}
	if err != nil {
		return err
	}

	if msg.Result != nil {
		*msg.Result = result
	}
	if res := gcmd.ResultFromContext[export.ExportResult](ctx); res != nil {
		res.Store(result)
	}
	return nil
}

// ScaffoldShaderHandler creates shader directories.
type ScaffoldShaderHandler struct {
	Scaffold func(root, name string) (string, error)
}

func NewScaffoldShaderHandler() *ScaffoldShaderHandler {
	return &ScaffoldShaderHandler{Scaffold: sources.Scaffold}
}

func (h *ScaffoldShaderHandler) Execute(ctx context.Context, msg ScaffoldShader) error {
	if h == nil || h.Scaffold == nil {
		return errors.New("scaffold func is required", errors.CategoryInternal).
			WithTextCode("SCAFFOLD_REQUIRED")
	}
	dir, err := h.Scaffold(msg.Root, msg.Name)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = dir
	}
	if res := gcmd.ResultFromContext[string](ctx); res != nil {
		res.Store(dir)
	}
	return nil
}
