package handlers

import (
	"errors"
	"net/http"

	"blog/internal/auth"
	"blog/internal/db"
	"blog/internal/forms"
	"blog/internal/metrics"
	"blog/internal/models"
)

const (
	msgUserExists   = "User already exists please log in."
	msgUnknownUser  = "User does not exist please register"
	msgWrongPass    = "Wrong password, Please try again"
	msgLoggedIn     = "You were successfully logged in"
	msgLoggedOut    = "You have successfully logged out!"
	msgLoginComment = "You need to login or register to comment."
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	if r.Method == http.MethodGet {
		h.render(w, r, id, http.StatusOK, "register", &page{Title: "Register"})
		return
	}

	form := forms.ParseRegisterForm(r)
	if errs := form.Validate(); !errs.Valid() {
		h.render(w, r, id, http.StatusOK, "register", &page{Title: "Register", RegisterForm: form, Errors: errs})
		return
	}

	hash, err := h.hasher.Hash(form.Password)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	user := models.User{Email: form.Email, Name: form.Name, PasswordHash: hash}

	ctx := r.Context()
	err = h.store.Tx(ctx, func(tx *db.Store) error {
		if _, err := tx.UserByEmail(ctx, user.Email); err == nil {
			return db.ErrDuplicate
		} else if !errors.Is(err, db.ErrNotFound) {
			return err
		}
		return tx.CreateUser(ctx, &user)
	})
	if errors.Is(err, db.ErrDuplicate) {
		h.metrics.Auth(metrics.EventRegisterDuplicate)
		h.sessions.Flash(w, r, msgUserExists)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	} else if err != nil {
		h.serverError(w, r, err)
		return
	}

	if err := h.sessions.Create(ctx, w, user.ID); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.metrics.Auth(metrics.EventRegister)
	h.logger.Info("user registered", "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	if r.Method == http.MethodGet {
		h.render(w, r, id, http.StatusOK, "login", &page{Title: "Login"})
		return
	}

	form := forms.ParseLoginForm(r)
	if errs := form.Validate(); !errs.Valid() {
		h.render(w, r, id, http.StatusOK, "login", &page{Title: "Login", LoginForm: form, Errors: errs})
		return
	}

	ctx := r.Context()
	user, err := h.store.UserByEmail(ctx, form.Email)
	if errors.Is(err, db.ErrNotFound) {
		h.metrics.Auth(metrics.EventLoginUnknown)
		h.render(w, r, id, http.StatusOK, "login", &page{Title: "Login", LoginForm: form, FormError: msgUnknownUser})
		return
	} else if err != nil {
		h.serverError(w, r, err)
		return
	}

	if !h.hasher.Check(user.PasswordHash, form.Password) {
		h.metrics.Auth(metrics.EventLoginWrongPass)
		h.render(w, r, id, http.StatusOK, "login", &page{Title: "Login", LoginForm: form, FormError: msgWrongPass})
		return
	}

	if err := h.sessions.Create(ctx, w, user.ID); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.metrics.Auth(metrics.EventLogin)
	h.sessions.Flash(w, r, msgLoggedIn)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Destroy(w, r)
	h.metrics.Auth(metrics.EventLogout)
	h.sessions.Flash(w, r, msgLoggedOut)
	http.Redirect(w, r, "/login", http.StatusFound)
}
