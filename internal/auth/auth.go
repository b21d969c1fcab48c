package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"geniusdesign/internal/storage"
)

var (
	// ErrInvalidCredentials is returned when email/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidInput is returned when registration fields are missing or too short.
	ErrInvalidInput = errors.New("email and password (at least 6 characters) are required")
)

const minPasswordLength = 6

type contextKey string

const (
	userContextKey  contextKey = "auth/user"
	tokenContextKey contextKey = "auth/token"
)

// Service registers and authenticates accounts against the profile store.
type Service struct {
	Profiles    storage.ProfileStore
	FreeCredits int
}

// Register creates a profile holding the signup credit grant.
func (s Service) Register(ctx context.Context, email, password string) (storage.Profile, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") || len(password) < minPasswordLength {
		return storage.Profile{}, ErrInvalidInput
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return storage.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	return s.Profiles.CreateProfile(ctx, storage.Profile{
		Email:        email,
		PasswordHash: string(hashed),
		Credits:      s.FreeCredits,
		CreatedAt:    time.Now(),
	})
}

// Login checks the password and returns the matching profile.
func (s Service) Login(ctx context.Context, email, password string) (storage.Profile, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return storage.Profile{}, ErrInvalidCredentials
	}
	profile, err := s.Profiles.GetProfileByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Profile{}, ErrInvalidCredentials
		}
		return storage.Profile{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return storage.Profile{}, ErrInvalidCredentials
	}
	return profile, nil
}

// Middleware attaches the authenticated profile to the request context when a valid token exists.
type Middleware struct {
	Profiles storage.ProfileStore
	Sessions SessionManager
	Logger   *zap.Logger
}

// InjectUser parses the bearer header or session cookie and loads the profile into context.
func (m Middleware) InjectUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.Sessions.TokenFromRequest(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := m.Sessions.Parse(token)
		if err != nil {
			// Clear unusable cookies to avoid loops.
			m.Sessions.ClearCookie(w)
			next.ServeHTTP(w, r)
			return
		}
		profile, err := m.Profiles.GetProfile(r.Context(), claims.UserID)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) && m.Logger != nil {
				m.Logger.Warn("Failed to load session profile", zap.String("user_id", claims.UserID), zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}
		ctx := WithUser(r.Context(), profile)
		ctx = WithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth ensures a user exists in context or returns 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePage redirects anonymous visitors to the sign-in page and back afterwards.
func RequirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/auth?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Handler exposes auth endpoints for registering and logging in users.
type Handler struct {
	Service  Service
	Sessions SessionManager
	Logger   *zap.Logger
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register.
func (h Handler) Register(w http.ResponseWriter, r *http.Request) {
	var payload authRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.Service.Register(r.Context(), payload.Email, payload.Password)
	switch {
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, storage.ErrProfileExists):
		writeError(w, http.StatusConflict, "Email is already registered")
		return
	case err != nil:
		h.logger().Error("Failed to register profile", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Could not create account")
		return
	}

	token, err := h.Sessions.SetCookie(w, profile.ID)
	if err != nil {
		h.logger().Error("Failed to issue session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Could not create session")
		return
	}
	_ = jsonResponse(w, http.StatusCreated, profileResponse(profile, token))
}

// Login handles POST /api/auth/login.
func (h Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload authRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.Service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger().Error("Failed to log in", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Could not sign in")
		return
	}

	token, err := h.Sessions.SetCookie(w, profile.ID)
	if err != nil {
		h.logger().Error("Failed to issue session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Could not create session")
		return
	}
	_ = jsonResponse(w, http.StatusOK, profileResponse(profile, token))
}

// Logout handles POST /api/auth/logout.
func (h Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.Sessions.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the current profile with its credit balance.
func (h Handler) Me(w http.ResponseWriter, r *http.Request) {
	profile, ok := UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	_ = jsonResponse(w, http.StatusOK, profileResponse(profile, ""))
}

func (h Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func profileResponse(p storage.Profile, token string) map[string]any {
	resp := map[string]any{
		"id":         p.ID,
		"email":      p.Email,
		"credits":    p.Credits,
		"created_at": p.CreatedAt,
	}
	if token != "" {
		resp["access_token"] = token
	}
	return resp
}

// WithUser stores the authenticated profile in context.
func WithUser(ctx context.Context, profile storage.Profile) context.Context {
	return context.WithValue(ctx, userContextKey, profile)
}

// UserFromContext extracts the authenticated profile from context if present.
func UserFromContext(ctx context.Context) (storage.Profile, bool) {
	profile, ok := ctx.Value(userContextKey).(storage.Profile)
	return profile, ok
}

// WithToken stores the raw session token so outgoing calls can forward it.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// TokenFromContext returns the session token attached by InjectUser.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	_ = jsonResponse(w, status, map[string]string{"error": message})
}

func jsonResponse(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}
