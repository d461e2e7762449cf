package portal

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/example/hubben/internal/version"
)

//go:embed static/*
var staticFS embed.FS

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/", http.StatusFound)
	})
	mux.HandleFunc("GET /ui/{$}", s.handleList)
	mux.HandleFunc("GET /ui/index.html", s.handleList)
	mux.HandleFunc("GET /ui/report.html", s.handleReport)
	if s.cfg.LiveFilter {
		mux.HandleFunc("GET "+LiveFilterPath, s.handleLiveFilter)
	}
	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /ui/static/", http.StripPrefix("/ui/static/", http.FileServerFS(static)))
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, version.Get())
	})
	mux.Handle("GET /metrics", s.metrics.Handler())
}
