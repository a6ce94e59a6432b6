package command

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-shader-export/export"
)

// ExportShader exports a catalog shader, or ad-hoc sources, in a format.
type ExportShader struct {
	ID      string
	Title   string
	Sources *export.SourcePair
	Format  export.Format
	Sink    export.Sink
	Result  *export.ExportResult
}

func (ExportShader) Type() string { return "shader:export" }

func (msg ExportShader) Validate() error {
	if strings.TrimSpace(msg.ID) == "" && msg.Sources == nil {
		return errors.New("shader ID or sources are required", errors.CategoryValidation).
			WithTextCode("SHADER_REQUIRED")
	}
	if msg.ID != "" && msg.Sources != nil {
		return errors.New("shader ID and sources are mutually exclusive", errors.CategoryValidation).
			WithTextCode("SHADER_AMBIGUOUS")
	}
	return nil
}

// ScaffoldShader creates a new shader directory from the templates.
type ScaffoldShader struct {
	Root   string
	Name   string
	Result *string
}

func (ScaffoldShader) Type() string { return "shader:new" }

func (msg ScaffoldShader) Validate() error {
	if strings.TrimSpace(msg.Root) == "" {
		return errors.New("shader root is required", errors.CategoryValidation).
			WithTextCode("ROOT_REQUIRED")
	}
	if strings.TrimSpace(msg.Name) == "" {
		return errors.New("shader name is required", errors.CategoryValidation).
			WithTextCode("NAME_REQUIRED")
	}
	return nil
}
