package handlers

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"blog/internal/auth"
	"blog/internal/db"
	"blog/internal/forms"
	"blog/internal/metrics"
	"blog/internal/models"
	"blog/web"
)

// DateLayout renders post dates as "Month DD, YYYY".
const DateLayout = "January 02, 2006"

type Handler struct {
	store    *db.Store
	sessions *auth.Manager
	hasher   auth.Hasher
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	tpls     *template.Template
	now      func() time.Time
}

func New(store *db.Store, sessions *auth.Manager, hasher auth.Hasher, reg *prometheus.Registry, logger *slog.Logger) *Handler {
	tpls := template.Must(template.New("").Funcs(funcs).ParseFS(web.Templates, "templates/*.html"))
	return &Handler{
		store:    store,
		sessions: sessions,
		hasher:   hasher,
		metrics:  metrics.New(reg),
		gatherer: reg,
		logger:   logger,
		tpls:     tpls,
		now:      time.Now,
	}
}

var funcs = template.FuncMap{
	"gravatar": gravatarURL,
	"year":     func() int { return time.Now().Year() },
}

func gravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=100&d=identicon&r=g"
}

// identityHandler is a page handler that receives the caller's session
// identity explicitly.
type identityHandler func(w http.ResponseWriter, r *http.Request, id auth.Identity)

func (h *Handler) withIdentity(next identityHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next(w, r, h.sessions.Current(r))
	}
}

// page is the data handed to every template.
type page struct {
	Title     string
	Logged    bool
	IsAdmin   bool
	Flashes   []string
	Errors    forms.Errors
	FormError string

	Posts []postView

	Post        models.Post
	Author      string
	Body        template.HTML
	Comments    []commentView
	CommentText string

	PostForm     forms.PostForm
	IsEdit       bool
	LoginForm    forms.LoginForm
	RegisterForm forms.RegisterForm
}

type postView struct {
	ID       int64
	Title    string
	Subtitle string
	Date     string
	Author   string
}

type commentView struct {
	Text        string
	Author      string
	AuthorEmail string
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, id auth.Identity, status int, name string, p *page) {
	p.Logged = id.Authenticated
	p.IsAdmin = id.IsAdmin()
	p.Flashes = h.sessions.Flashes(w, r)
	if p.Errors == nil {
		p.Errors = forms.Errors{}
	}

	buf := new(bytes.Buffer)
	if err := h.tpls.ExecuteTemplate(buf, name, p); err != nil {
		h.serverError(w, r, fmt.Errorf("render %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// pathID parses the {id} wildcard.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

// authorNames resolves user ids to display names.
func (h *Handler) authorNames(r *http.Request, ids ...int64) (map[int64]models.User, error) {
	return h.store.UsersByID(r.Context(), ids...)
}

// -------- Pages

func (h *Handler) Index(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	posts, err := h.store.ListPosts(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.AuthorID)
	}
	authors, err := h.authorNames(r, ids...)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		views = append(views, postView{
			ID:       p.ID,
			Title:    p.Title,
			Subtitle: p.Subtitle,
			Date:     p.Date,
			Author:   authors[p.AuthorID].Name,
		})
	}
	h.render(w, r, id, http.StatusOK, "index", &page{Title: "Blog", Posts: views})
}

func (h *Handler) About(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	h.render(w, r, id, http.StatusOK, "about", &page{Title: "About"})
}

func (h *Handler) Contact(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	h.render(w, r, id, http.StatusOK, "contact", &page{Title: "Contact"})
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.sessions.Current(r), http.StatusNotFound, "notfound", &page{Title: "Not Found"})
}
