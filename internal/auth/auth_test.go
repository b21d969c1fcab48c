package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geniusdesign/internal/storage"
)

func testSessions() SessionManager {
	return SessionManager{Secret: []byte("test-secret"), Duration: time.Hour}
}

func TestSessionManager_IssueAndParse(t *testing.T) {
	sm := testSessions()
	token, exp, err := sm.Issue("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := sm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestSessionManager_RejectsBadTokens(t *testing.T) {
	sm := testSessions()

	_, err := sm.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrUnauthorized)

	other := SessionManager{Secret: []byte("other-secret")}
	forged, _, err := other.Issue("user-1")
	require.NoError(t, err)
	_, err = sm.Parse(forged)
	assert.ErrorIs(t, err, ErrUnauthorized)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString(sm.Secret)
	require.NoError(t, err)
	_, err = sm.Parse(expired)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = SessionManager{}.Issue("user-1")
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	token, ok = BearerToken("bearer   xyz ")
	assert.True(t, ok)
	assert.Equal(t, "xyz", token)

	_, ok = BearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = BearerToken("Bearer ")
	assert.False(t, ok)
	_, ok = BearerToken("")
	assert.False(t, ok)
}

func TestService_RegisterGrantsFreeCredits(t *testing.T) {
	ctx := context.Background()
	svc := Service{Profiles: storage.NewInMemoryProfileStore(), FreeCredits: 3}

	profile, err := svc.Register(ctx, " Ana@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", profile.Email)
	assert.Equal(t, 3, profile.Credits)
	assert.NotEqual(t, "secret1", profile.PasswordHash)

	_, err = svc.Register(ctx, "ana@example.com", "secret2")
	assert.ErrorIs(t, err, storage.ErrProfileExists)

	_, err = svc.Register(ctx, "bob@example.com", "short")
	assert.ErrorIs(t, err, ErrInvalidInput)

	logged, err := svc.Login(ctx, "ANA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, logged.ID)

	_, err = svc.Login(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMiddleware_InjectUserFromBearerAndCookie(t *testing.T) {
	ctx := context.Background()
	profiles := storage.NewInMemoryProfileStore()
	svc := Service{Profiles: profiles, FreeCredits: 2}
	profile, err := svc.Register(ctx, "cam@example.com", "secret1")
	require.NoError(t, err)

	sm := testSessions()
	token, _, err := sm.Issue(profile.ID)
	require.NoError(t, err)

	mw := Middleware{Profiles: profiles, Sessions: sm}
	var seen storage.Profile
	var seenToken string
	h := mw.InjectUser(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		seenToken = TokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, profile.ID, seen.ID)
	assert.Equal(t, token, seenToken)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "garbage"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "session_token=;")
}

func TestRequirePage_RedirectsToAuth(t *testing.T) {
	h := RequirePage(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/result/abc?v=1", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth?next=%2Fresult%2Fabc%3Fv%3D1", rec.Header().Get("Location"))
}

func TestHandler_RegisterLoginMe(t *testing.T) {
	profiles := storage.NewInMemoryProfileStore()
	sm := testSessions()
	h := Handler{Service: Service{Profiles: profiles, FreeCredits: 3}, Sessions: sm}

	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"email":"dee@example.com","password":"secret1"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, float64(3), body["credits"])
	assert.NotEmpty(t, body["access_token"])
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "session_token=")

	rec = httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"email":"dee@example.com","password":"secret1"}`)))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"dee@example.com","password":"nope"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"dee@example.com","password":"secret1"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	profile, err := profiles.GetProfileByEmail(context.Background(), "dee@example.com")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil).WithContext(WithUser(context.Background(), profile))
	rec = httptest.NewRecorder()
	h.Me(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"dee@example.com"`)

	rec = httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}
