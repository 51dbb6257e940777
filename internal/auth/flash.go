package auth

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookie = "blog_flash"

// Flash queues a one-time notice shown on the next rendered page.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, msg string) {
	msgs := append(m.peekFlashes(r), msg)
	raw, err := json.Marshal(msgs)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    m.sign(base64.RawURLEncoding.EncodeToString(raw)),
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Flashes returns the queued notices and clears them.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []string {
	msgs := m.peekFlashes(r)
	if _, err := r.Cookie(flashCookie); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookie,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			MaxAge:   -1,
		})
	}
	return msgs
}

func (m *Manager) peekFlashes(r *http.Request) []string {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	payload, ok := m.verify(c.Value)
	if !ok {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil
	}
	var msgs []string
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil
	}
	return msgs
}
