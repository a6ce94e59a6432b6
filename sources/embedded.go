package sources

import (
	"embed"
	"io/fs"
)

//go:embed shaders
var embeddedShaders embed.FS

// EmbeddedFS returns the bundled shader directories.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedShaders, "shaders")
	if err != nil {
		panic(err)
	}
	return sub
}

// Embedded returns a loader over the bundled ripple, noise, and gradient shaders.
func Embedded() *FSLoader {
	return NewFSLoader(EmbeddedFS())
}
