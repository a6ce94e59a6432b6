package export

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

var generatorTemplates = template.Must(
	template.New("generators").Delims("[[", "]]").ParseFS(embeddedTemplates, "templates/*.tmpl"),
)

type templateData struct {
	Title      string
	Identifier string
	Slug       string
	Fragment   string
	Vertex     string
}

func newTemplateData(src SourcePair, title string) templateData {
	return templateData{
		Title:      title,
		Identifier: Identifier(title),
		Slug:       Slug(title),
		Fragment:   src.Fragment,
		Vertex:     src.Vertex,
	}
}

// renderTemplate executes an embedded template. Templates are fixed at build
// time and the data holds only strings, so a failure is a programming error.
func renderTemplate(name string, data templateData) string {
	var b strings.Builder
	if err := generatorTemplates.ExecuteTemplate(&b, name, data); err != nil {
		panic(fmt.Errorf("export: render template %s: %w", name, err))
	}
	return b.String()
}

// GenerateHTML returns a standalone HTML document rendering the shader
// fullscreen.
func GenerateHTML(src SourcePair, title string) string {
	return renderTemplate("html.tmpl", newTemplateData(src, title))
}

// GenerateReact returns a React function component.
func GenerateReact(src SourcePair, title string) string {
	return renderTemplate("react.tmpl", newTemplateData(src, title))
}

// GenerateVue returns a Vue single file component.
func GenerateVue(src SourcePair, title string) string {
	return renderTemplate("vue.tmpl", newTemplateData(src, title))
}

// GenerateJavaScript returns a vanilla script that expects a global THREE.
func GenerateJavaScript(src SourcePair, title string) string {
	return renderTemplate("javascript.tmpl", newTemplateData(src, title))
}

// AngularComponent holds the three files of an Angular component.
type AngularComponent struct {
	TS   string
	HTML string
	CSS  string
}

// GenerateAngularComponent returns the ts/html/css parts of an Angular component.
func GenerateAngularComponent(src SourcePair, title string) AngularComponent {
	data := newTemplateData(src, title)
	return AngularComponent{
		TS:   renderTemplate("angular.component.ts.tmpl", data),
		HTML: renderTemplate("angular.component.html.tmpl", data),
		CSS:  renderTemplate("angular.component.css.tmpl", data),
	}
}

// GenerateAngular returns the Angular component files keyed by filename.
func GenerateAngular(src SourcePair, title string) FileSet {
	component := GenerateAngularComponent(src, title)
	base := Slug(title)
	return FileSet{
		base + ".component.ts":   component.TS,
		base + ".component.html": component.HTML,
		base + ".component.css":  component.CSS,
	}
}

// GenerateNextPage returns the Next.js page that lazy loads the renderer.
func GenerateNextPage(src SourcePair, title string) string {
	return renderTemplate("next.page.tmpl", newTemplateData(src, title))
}

// GenerateNextRenderer returns the client-only Next.js renderer component.
func GenerateNextRenderer(src SourcePair, title string) string {
	return renderTemplate("next.renderer.tmpl", newTemplateData(src, title))
}

// GenerateNext returns the Next.js page and renderer keyed by filename.
func GenerateNext(src SourcePair, title string) FileSet {
	base := Slug(title)
	return FileSet{
		base + ".jsx":          GenerateNextPage(src, title),
		base + "-renderer.jsx": GenerateNextRenderer(src, title),
	}
}

// BuiltinGenerators returns the generators shipped with the package, in
// display order.
func BuiltinGenerators() []Generator {
	return []Generator{
		{Format: FormatHTML, Label: "HTML", Extension: "html", ContentType: ContentTypeHTML, Single: GenerateHTML},
		{Format: FormatReact, Label: "React", Extension: "jsx", ContentType: ContentTypeText, Single: GenerateReact},
		{Format: FormatJS, Label: "JavaScript", Extension: "js", ContentType: ContentTypeText, Single: GenerateJavaScript},
		{Format: FormatAngular, Label: "Angular", Family: "angular", Multi: GenerateAngular},
		{Format: FormatVue, Label: "Vue", Extension: "vue", ContentType: ContentTypeText, Single: GenerateVue},
		{Format: FormatNext, Label: "Next.js", Family: "nextjs", Multi: GenerateNext},
	}
}
