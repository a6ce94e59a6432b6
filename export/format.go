package export

import "strings"

// NormalizeFormat coerces format values into their canonical keys. Empty
// keys stay empty and unrecognized keys are returned lowercased, so the
// caller can apply its default format and UnknownFormatPolicy.
func NormalizeFormat(format Format) Format {
	normalized := strings.ToLower(strings.TrimSpace(string(format)))
	switch normalized {
	case "":
		return ""
	case string(FormatHTML), "htm", "static", "static-page":
		return FormatHTML
	case string(FormatReact), "jsx":
		return FormatReact
	case string(FormatVue), "vuejs":
		return FormatVue
	case string(FormatJS), "javascript", "vanilla", "vanilla-js":
		return FormatJS
	case string(FormatAngular), "ng":
		return FormatAngular
	case string(FormatNext), "nextjs", "next.js":
		return FormatNext
	default:
		return Format(normalized)
	}
}

// FormatOption describes a selectable export format.
type FormatOption struct {
	Format    Format `json:"format"`
	Label     string `json:"label"`
	Extension string `json:"extension,omitempty"`
	Archive   bool   `json:"archive"`
}

// FormatOptions lists the formats registered in the registry, in display order.
func FormatOptions(reg *GeneratorRegistry) []FormatOption {
	if reg == nil {
		return nil
	}
	generators := reg.List()
	options := make([]FormatOption, 0, len(generators))
	for _, gen := range generators {
		ext := gen.Extension
		if gen.Multi != nil {
			ext = "zip"
		}
		options = append(options, FormatOption{
			Format:    gen.Format,
			Label:     gen.Label,
			Extension: ext,
			Archive:   gen.Multi != nil,
		})
	}
	return options
}
