package export

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const identifierPrefix = "Shader"

// Slug derives the download base name from a title: lowercase with
// whitespace runs joined by hyphens. Other characters pass through.
func Slug(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), "-"))
}

// Identifier derives a code identifier from a title by capitalizing each
// whitespace separated word and concatenating them.
func Identifier(title string) string {
	caser := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, word := range strings.Fields(title) {
		b.WriteString(caser.String(word))
	}
	name := b.String()
	for _, r := range name {
		if unicode.IsUpper(r) {
			return name
		}
		break
	}
	return identifierPrefix + name
}

// SingleFilename returns <slug>.<ext>.
func SingleFilename(title, ext string) string {
	return Slug(title) + "." + strings.TrimPrefix(ext, ".")
}

// ArchiveFilename returns <slug>-<family>.zip.
func ArchiveFilename(title, family string) string {
	return Slug(title) + "-" + family + ".zip"
}

// ContentTypeForFile picks the declared content type from a filename.
func ContentTypeForFile(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".html"), strings.HasSuffix(lower, ".htm"):
		return ContentTypeHTML
	case strings.HasSuffix(lower, ".zip"):
		return ContentTypeZip
	default:
		return ContentTypeText
	}
}
