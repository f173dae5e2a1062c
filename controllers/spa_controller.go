package controllers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// SPAHandler serves a pre-built single-page application. Existing files are
// served as-is; every other path gets index.html so client-side routing works.
type SPAHandler struct {
	dir        string
	fileServer http.Handler
}

// NewSPAHandler creates a handler for the build directory dir
func NewSPAHandler(dir string) *SPAHandler {
	return &SPAHandler{
		dir:        dir,
		fileServer: http.FileServer(http.Dir(dir)),
	}
}

// Available reports whether dir contains an index.html
func (h *SPAHandler) Available() bool {
	info, err := os.Stat(filepath.Join(h.dir, "index.html"))
	return err == nil && !info.IsDir()
}

// ServeHTTP implements http.Handler
func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.NotFound(w, r)
		return
	}

	name := path.Clean("/" + r.URL.Path)
	if name != "/" {
		if info, err := os.Stat(filepath.Join(h.dir, filepath.FromSlash(name))); err == nil && !info.IsDir() {
			h.fileServer.ServeHTTP(w, r)
			return
		}
	}

	index, err := os.Open(filepath.Join(h.dir, "index.html"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer index.Close()

	info, err := index.Stat()
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, "index.html", info.ModTime(), index)
}
