package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"blog/web"
)

// Routes builds the full HTTP handler, middleware included.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(web.Static())))
	mux.Handle("GET /metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /{$}", h.withIdentity(h.Index))
	mux.HandleFunc("GET /about", h.withIdentity(h.About))
	mux.HandleFunc("GET /contact", h.withIdentity(h.Contact))

	mux.HandleFunc("GET /register", h.withIdentity(h.Register))
	mux.HandleFunc("POST /register", h.withIdentity(h.Register))
	mux.HandleFunc("GET /login", h.withIdentity(h.Login))
	mux.HandleFunc("POST /login", h.withIdentity(h.Login))
	mux.HandleFunc("GET /logout", h.Logout)

	mux.HandleFunc("GET /post/{id}", h.withIdentity(h.ShowPost))
	mux.HandleFunc("POST /post/{id}", h.withIdentity(h.ShowPost))

	// admin only
	mux.HandleFunc("GET /new-post", h.RequireAdmin(h.NewPost))
	mux.HandleFunc("POST /new-post", h.RequireAdmin(h.NewPost))
	mux.HandleFunc("GET /edit-post/{id}", h.RequireAdmin(h.EditPost))
	mux.HandleFunc("POST /edit-post/{id}", h.RequireAdmin(h.EditPost))
	mux.HandleFunc("GET /delete/{id}", h.RequireAdmin(h.DeletePost))

	// 404 fallback
	mux.HandleFunc("/", h.NotFound)

	return WithRecover(h.WithLogging(mux), h.logger)
}
