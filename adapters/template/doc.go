// Package pagetemplate renders the shader gallery page.
//
// Renderer executes a named template through a TemplateExecutor. Both
// html/template and the pongo2 executor in this package satisfy it; the page
// data is passed as a map so templates of either syntax can address fields by
// lowercase key. The embedded default template uses pongo2 (Django) syntax.
//
// Rendering is buffered: output is written only after the template succeeds,
// and MaxShaders bounds the number of cards on one page.
package pagetemplate
