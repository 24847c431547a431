//go:build !dev

package resources

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
)

//go:embed static/*
var staticFS embed.FS

// Handler serves the embedded assets. File names carry no content hash, so
// browsers revalidate after an hour.
func Handler(logger *slog.Logger) http.Handler {
	fsys, err := fs.Sub(staticFS, "static")
	if err != nil {
		logger.Error("embedded static assets unavailable", "err", err)
		return http.NotFoundHandler()
	}
	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(fsys)))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		fileServer.ServeHTTP(w, r)
	})
}
