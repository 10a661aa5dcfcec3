package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all HTML routes on the provided mux.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Static assets (embedded via go:embed).
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Page routes.
	mux.HandleFunc("GET /examine", h.requireAdmin(h.Examine))
	mux.HandleFunc("GET /flush", h.requireAdmin(h.Flush))
	mux.HandleFunc("GET /status", h.Status)
	mux.HandleFunc("GET /oauth/callback", h.OAuthCallback)
}
