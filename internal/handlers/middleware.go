package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"runtime/debug"
	"strconv"
	"testing"
	"time"

	"blog/internal/auth"
)

// WithRecover wraps an http.Handler and recovers from panics,
// returning HTTP 500 instead of crashing the server.
func WithRecover(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Do not catch panics when running "go test".
		if !testing.Testing() {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error(fmt.Sprintf("panic: %#v\n%s", rec, debug.Stack()), "method", r.Method, "path", r.URL.Path)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
		}
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += n
	return n, err
}

// patternRe strips the METHOD prefix from a ServeMux pattern.
var patternRe = regexp.MustCompile(`^[^\s/]*\s+`)

// WithLogging logs each request and records it in the request metrics.
func (h *Handler) WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(sw, r)

		duration := time.Since(start)
		route := patternRe.ReplaceAllString(r.Pattern, "")
		if route == "" {
			route = "unmatched"
		}
		h.metrics.Requests.WithLabelValues(r.Method, route, strconv.Itoa(sw.statusCode)).Inc()
		h.metrics.RequestDuration.WithLabelValues(r.Method, route).Observe(duration.Seconds())

		h.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"status", sw.statusCode,
			"bytes", sw.bytesWritten,
			"duration", duration.Seconds())
	})
}

// RequireAdmin lets only the admin identity through. Anonymous callers are
// sent to the login page; everyone else gets 401.
func (h *Handler) RequireAdmin(next identityHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := h.sessions.Current(r)
		switch auth.Authorize(id) {
		case auth.RedirectLogin:
			http.Redirect(w, r, "/login", http.StatusFound)
		case auth.Unauthorized:
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		default:
			next(w, r, id)
		}
	}
}
