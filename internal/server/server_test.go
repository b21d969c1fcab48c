package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"geniusdesign/internal/auth"
	"geniusdesign/internal/events"
	"geniusdesign/internal/generation"
	"geniusdesign/internal/metrics"
	"geniusdesign/internal/storage"
	"geniusdesign/internal/web"
)

func testRouter(t *testing.T) (http.Handler, auth.SessionManager, storage.ProfileStore) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	profiles := storage.NewInMemoryProfileStore()
	sessions := auth.SessionManager{Secret: []byte("secret")}
	results := storage.NewInMemoryResultStore()
	broker := events.NewBroker()

	h := Handlers{
		Web:        web.Handler{Results: results, Sessions: sessions, Logger: logger},
		Generation: generation.Handler{Generator: generation.NewHeuristic(1), Profiles: profiles, Sessions: sessions, Events: broker, Logger: logger},
		Auth:       auth.Handler{Service: auth.Service{Profiles: profiles, FreeCredits: 3}, Sessions: sessions, Logger: logger},
		Session:    auth.Middleware{Profiles: profiles, Sessions: sessions, Logger: logger},
		Events:     events.Handler{Broker: broker},
		Metrics:    metrics.New(),
		Static:     web.Static(""),
	}
	return Router(h, logger), sessions, profiles
}

func TestHealth(t *testing.T) {
	router, _, _ := testRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestPagesRedirectAnonymousVisitors(t *testing.T) {
	router, _, _ := testRouter(t)
	for _, target := range []string{"/", "/design", "/decor", "/result/abc"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code, target)
		assert.Contains(t, rec.Header().Get("Location"), "/auth?next=", target)
	}
}

func TestSharePageIsPublic(t *testing.T) {
	router, _, _ := testRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/s/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not found.")
}

func TestSignedInUserReachesHome(t *testing.T) {
	router, sessions, profiles := testRouter(t)
	p, err := profiles.CreateProfile(t.Context(), storage.Profile{Email: "a@b.c", PasswordHash: "x", Credits: 2})
	require.NoError(t, err)
	token, _, err := sessions.Issue(p.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Credits left: 2")
}

func TestGeneratePreflight(t *testing.T) {
	router, _, _ := testRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/generate", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	router, _, _ := testRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "genius_credit_denials_total")
}

func TestStaticAssets(t *testing.T) {
	router, _, _ := testRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/slider.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
