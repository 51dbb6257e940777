package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"blog/internal/models"
)

const sessionCookie = "blog_session"

// SessionStore persists server-side session rows.
type SessionStore interface {
	CreateSession(ctx context.Context, id string, userID int64, expires time.Time) error
	SessionUser(ctx context.Context, id string) (int64, time.Time, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID int64) error
}

// Identity is the caller as seen by a single request.
type Identity struct {
	UserID        int64
	Authenticated bool
}

func Anonymous() Identity { return Identity{} }

func UserIdentity(id int64) Identity { return Identity{UserID: id, Authenticated: true} }

func (i Identity) IsAdmin() bool {
	return i.Authenticated && i.UserID == models.AdminID
}

type Manager struct {
	store  SessionStore
	secret []byte
	maxAge time.Duration
	secure bool
}

func NewManager(store SessionStore, secret string, maxAge time.Duration) *Manager {
	return &Manager{store: store, secret: []byte(secret), maxAge: maxAge}
}

// SetSecure marks issued cookies as HTTPS-only.
func (m *Manager) SetSecure(secure bool) { m.secure = secure }

// Create starts a new session for userID, replacing any previous ones.
func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, userID int64) error {
	id := uuid.New().String()
	expires := time.Now().Add(m.maxAge)

	if err := m.store.DeleteUserSessions(ctx, userID); err != nil {
		return err
	}
	if err := m.store.CreateSession(ctx, id, userID, expires); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    m.sign(id),
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  expires,
	})
	return nil
}

// Destroy ends the caller's session, if any, and clears the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	if id, ok := m.sessionID(r); ok {
		_ = m.store.DeleteSession(r.Context(), id)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// Current resolves the request's identity. Any failure yields Anonymous.
func (m *Manager) Current(r *http.Request) Identity {
	id, ok := m.sessionID(r)
	if !ok {
		return Anonymous()
	}
	uid, exp, err := m.store.SessionUser(r.Context(), id)
	if err != nil || time.Now().After(exp) {
		return Anonymous()
	}
	return UserIdentity(uid)
}

func (m *Manager) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	return m.verify(c.Value)
}

// sign appends an HMAC of value keyed by the secret.
func (m *Manager) sign(value string) string {
	return value + "." + m.mac(value)
}

func (m *Manager) verify(signed string) (string, bool) {
	i := strings.LastIndexByte(signed, '.')
	if i < 0 {
		return "", false
	}
	value, sig := signed[:i], signed[i+1:]
	if !hmac.Equal([]byte(sig), []byte(m.mac(value))) {
		return "", false
	}
	return value, true
}

func (m *Manager) mac(value string) string {
	h := hmac.New(sha256.New, m.secret)
	h.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
