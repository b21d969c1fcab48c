package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"geniusdesign/internal/auth"
	"geniusdesign/internal/events"
	"geniusdesign/internal/generation"
	"geniusdesign/internal/logging"
	"geniusdesign/internal/metrics"
	"geniusdesign/internal/web"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Web        web.Handler
	Generation generation.Handler
	Auth       auth.Handler
	Session    auth.Middleware
	Events     events.Handler
	Metrics    *metrics.Metrics
	Static     http.Handler
	// Media serves locally archived variations; nil when S3 or nothing is used.
	Media http.Handler
}

// Router builds the chi router with middleware and routes.
func Router(h Handlers, logger *zap.Logger) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logging.Middleware(logger))
	router.Use(middleware.Recoverer)
	router.Use(h.Session.InjectUser)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if h.Metrics != nil {
		router.Handle("/metrics", h.Metrics.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		r.Options("/generate", h.Generation.Generate)
		r.Post("/generate", h.Generation.Generate)
		r.Get("/catalog", generation.Catalog)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Post("/logout", h.Auth.Logout)
			r.With(auth.RequireAuth).Get("/me", h.Auth.Me)
		})
	})
	router.Get("/events", h.Events.Stream)

	router.Get("/auth", h.Web.AuthPage)
	router.Post("/auth", h.Web.AuthSubmit)
	router.Post("/logout", h.Web.Logout)
	router.Get("/s/{id}", h.Web.Share)

	router.Group(func(r chi.Router) {
		r.Use(auth.RequirePage)
		r.Get("/", h.Web.Home)
		r.Get("/design", h.Web.DesignForm)
		r.Post("/design", h.Web.SubmitDesign)
		r.Get("/decor", h.Web.DecorForm)
		r.Post("/decor", h.Web.SubmitDecor)
		r.Route("/result/{id}", func(r chi.Router) {
			r.Get("/", h.Web.Result)
			r.Get("/images/{n}", h.Web.DownloadImage)
			r.Get("/suggestions.txt", h.Web.SuggestionsText)
		})
	})

	if h.Static != nil {
		router.Handle("/static/*", http.StripPrefix("/static", h.Static))
	}
	if h.Media != nil {
		router.Handle("/media/*", http.StripPrefix("/media", h.Media))
	}
	router.NotFound(h.Web.NotFound)

	return router
}

// New constructs the HTTP server with routes and middleware.
func New(port string, h Handlers, logger *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     Router(h, logger),
		ReadTimeout: 30 * time.Second,
		// Generation runs every variation inside one request.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	logger.Info("Server ready", zap.String("addr", srv.Addr))
	return srv
}
