// Package web embeds the HTML templates of the catalog overview page.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var content embed.FS

// Templates returns the template directory for the fiber html engine.
func Templates() http.FileSystem {
	sub, err := fs.Sub(content, "templates")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
