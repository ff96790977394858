// Package app embeds the single-page UI.
package app

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/neboloop/browserpilot/internal/httputil"
)

//go:embed dist
var dist embed.FS

// FileSystem returns the built UI rooted at dist/.
func FileSystem() (fs.FS, error) {
	return fs.Sub(dist, "dist")
}

// SPAHandler serves files from fsys and falls back to index.html for
// paths that do not name a file, so client-side routes resolve.
func SPAHandler(fsys fs.FS) http.Handler {
	files := http.FileServerFS(fsys)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" {
			name = "index.html"
		}
		if _, err := fs.Stat(fsys, name); err != nil {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				httputil.NotFound(w, "")
				return
			}
			r = r.Clone(r.Context())
			r.URL.Path = "/"
		}
		if name == "index.html" || r.URL.Path == "/" {
			w.Header().Set("Cache-Control", "no-cache")
		}
		files.ServeHTTP(w, r)
	})
}
