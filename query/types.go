package query

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-shader-export/export"
)

// GetShader requests a shader with its sources.
type GetShader struct {
	ID string
}

func (GetShader) Type() string { return "shader:get" }

func (msg GetShader) Validate() error {
	if strings.TrimSpace(msg.ID) == "" {
		return errors.New("shader ID is required", errors.CategoryValidation).
			WithTextCode("SHADER_ID_REQUIRED")
	}
	return nil
}

// ListShaders requests catalog records, optionally filtered by tag.
type ListShaders struct {
	Tag string
}

func (ListShaders) Type() string { return "shader:list" }

func (ListShaders) Validate() error { return nil }

// ListFormats requests the selectable export formats.
type ListFormats struct{}

func (ListFormats) Type() string { return "shader:formats" }

func (ListFormats) Validate() error { return nil }

// ExportHistory requests recent exports, optionally filtered by format.
type ExportHistory struct {
	Format export.Format
}

func (ExportHistory) Type() string { return "shader:history" }

func (ExportHistory) Validate() error { return nil }
