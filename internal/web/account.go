package web

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"geniusdesign/internal/auth"
	"geniusdesign/internal/storage"
)

type authPage struct {
	page
	Next  string
	Email string
	Error string
}

// AuthPage renders GET /auth.
func (h Handler) AuthPage(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"))
	if _, ok := auth.UserFromContext(r.Context()); ok {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	h.render(w, http.StatusOK, "auth", authPage{page: newPage(r, "Sign in"), Next: next})
}

// AuthSubmit handles POST /auth for both sign-in and sign-up.
func (h Handler) AuthSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	data := authPage{
		page:  newPage(r, "Sign in"),
		Next:  safeNext(r.FormValue("next")),
		Email: strings.TrimSpace(r.FormValue("email")),
	}
	password := r.FormValue("password")

	var (
		profile storage.Profile
		err     error
	)
	if r.FormValue("action") == "register" {
		profile, err = h.Accounts.Register(r.Context(), data.Email, password)
	} else {
		profile, err = h.Accounts.Login(r.Context(), data.Email, password)
	}
	if err != nil {
		status := http.StatusUnauthorized
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			data.Error = "Invalid email or password"
		case errors.Is(err, auth.ErrInvalidInput):
			data.Error = "Enter a valid email and a password of at least 6 characters"
			status = http.StatusBadRequest
		case errors.Is(err, storage.ErrProfileExists):
			data.Error = "Email is already registered"
			status = http.StatusConflict
		default:
			h.logger().Error("Sign-in failed", zap.Error(err))
			data.Error = "Could not sign in"
			status = http.StatusInternalServerError
		}
		h.render(w, status, "auth", data)
		return
	}

	if _, err := h.Sessions.SetCookie(w, profile.ID); err != nil {
		h.logger().Error("Failed to issue session", zap.Error(err))
		data.Error = "Could not create session"
		h.render(w, http.StatusInternalServerError, "auth", data)
		return
	}
	http.Redirect(w, r, data.Next, http.StatusSeeOther)
}

// Logout handles POST /logout.
func (h Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.ClearCookie(w)
	http.Redirect(w, r, "/auth", http.StatusSeeOther)
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
