package catalog

import (
	"errors"
	"io"

	"github.com/goliatone/go-shader-export/export"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Shaders []ShaderMetadata `yaml:"shaders"`
}

// LoadYAML parses shader records from a seed document:
//
//	shaders:
//	  - id: ripple
//	    name: Ripple Effect
//	    tags: [waves]
func LoadYAML(r io.Reader) ([]ShaderMetadata, error) {
	var doc seedFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, export.NewError(export.KindValidation, "invalid catalog seed", err)
	}
	for _, record := range doc.Shaders {
		if err := record.Validate(); err != nil {
			return nil, err
		}
	}
	return doc.Shaders, nil
}
