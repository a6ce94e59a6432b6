package exporthttp

import (
	"io/fs"
	"net/http"

	"github.com/goliatone/go-shader-export/sources"
)

// DefaultSourcesPath is where raw shader sources are served.
const DefaultSourcesPath = "/gallery/sources/"

// SourcesHandler serves raw GLSL files as <id>/<stage>.glsl under prefix.
// A nil fsys serves the bundled shaders.
func SourcesHandler(prefix string, fsys fs.FS) http.Handler {
	if prefix == "" {
		prefix = DefaultSourcesPath
	}
	if fsys == nil {
		fsys = sources.EmbeddedFS()
	}
	prefix = ensureTrailingSlash(prefix)
	files := http.StripPrefix(prefix, http.FileServer(http.FS(fsys)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		files.ServeHTTP(w, r)
	})
}

func ensureTrailingSlash(value string) string {
	if value == "" {
		return ""
	}
	if value[len(value)-1] == '/' {
		return value
	}
	return value + "/"
}
