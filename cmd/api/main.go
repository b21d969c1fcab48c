package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"geniusdesign/internal/auth"
	"geniusdesign/internal/config"
	"geniusdesign/internal/events"
	"geniusdesign/internal/generation"
	"geniusdesign/internal/llm"
	"geniusdesign/internal/logging"
	"geniusdesign/internal/media"
	"geniusdesign/internal/metrics"
	"geniusdesign/internal/prompts"
	"geniusdesign/internal/server"
	"geniusdesign/internal/storage"
	"geniusdesign/internal/submission"
	"geniusdesign/internal/vision"
	"geniusdesign/internal/web"
)

func main() {
	cfg, err := config.Load("config.json")
	if err != nil {
		// The logger is configured from cfg, so this one goes to stderr.
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	baseLogger, err := logging.New(cfg.Log)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to init logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := baseLogger.Named("api")
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	profiles, err := storage.NewProfileStore(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to init profile store", zap.Error(err))
	}
	defer profiles.Close()
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, accounts are kept in memory")
	}

	results, err := storage.NewResultStore(storage.ResultsConfig{
		Backend:  cfg.Results.Backend,
		Path:     cfg.Results.Path,
		RedisURL: cfg.Results.RedisURL,
	}, logger.Named("results"))
	if err != nil {
		logger.Fatal("Failed to init result store", zap.Error(err))
	}
	if cfg.Results.Backend == "sqlite" && cfg.Results.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Results.Path), 0o755); err != nil {
			logger.Warn("Failed to create results directory", zap.Error(err))
		}
	}
	if !storage.Available(ctx, results) {
		// Results are still shown, just not kept.
		logger.Warn("Result store unavailable, results will only be rendered in memory", zap.String("backend", cfg.Results.Backend))
	}
	defer results.Close()

	uploader, mediaHandler := mediaUploader(ctx, cfg, logger)
	generator := newGenerator(ctx, cfg, logger)

	m := metrics.New()
	broker := events.NewBroker()
	sessions := auth.SessionManager{
		Secret:       []byte(cfg.Auth.SessionSecret),
		Duration:     cfg.Auth.SessionTTL,
		SecureCookie: cfg.Auth.SecureCookie,
	}
	if cfg.Auth.SessionSecret == "" {
		sessions.Secret = []byte("dev-insecure-secret")
		logger.Warn("SESSION_SECRET not set, using an insecure development secret")
	}
	accounts := auth.Service{Profiles: profiles, FreeCredits: cfg.Auth.FreeCredits}

	endpoint := cfg.GenerationEndpoint
	if endpoint == "" {
		endpoint = "http://127.0.0.1:" + cfg.Port + "/api/generate"
	}

	sliderAssets := web.SliderAssets(cfg.StaticDir)
	if !sliderAssets {
		logger.Warn("Slider assets missing, result pages render a fixed comparison; run go generate ./internal/web")
	}

	handlers := server.Handlers{
		Web: web.Handler{
			Results: results,
			Submissions: &submission.Service{
				Endpoint: submission.NewClient(endpoint, nil),
				Results:  results,
				Metrics:  m,
				Logger:   logger.Named("submission"),
			},
			Accounts:     accounts,
			Sessions:     sessions,
			Catalog:      prompts.DefaultCatalog(),
			PricingURL:   cfg.PricingURL,
			SliderAssets: sliderAssets,
			Logger:       logger.Named("web"),
		},
		Generation: generation.Handler{
			Generator: generator,
			Profiles:  profiles,
			Sessions:  sessions,
			Media:     uploader,
			Events:    broker,
			Metrics:   m,
			Logger:    logger.Named("generation"),
		},
		Auth:    auth.Handler{Service: accounts, Sessions: sessions, Logger: logger.Named("auth")},
		Session: auth.Middleware{Profiles: profiles, Sessions: sessions, Logger: logger.Named("auth")},
		Events: events.Handler{
			Broker: broker,
			UserID: func(r *http.Request) string {
				if p, ok := auth.UserFromContext(r.Context()); ok {
					return p.ID
				}
				return ""
			},
			Heartbeat: 20 * time.Second,
		},
		Metrics: m,
		Static:  web.Static(cfg.StaticDir),
		Media:   mediaHandler,
	}

	srv := server.New(cfg.Port, handlers, logger)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdownChan
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", zap.Error(err))
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func mediaUploader(ctx context.Context, cfg *config.Config, logger *zap.Logger) (media.Uploader, http.Handler) {
	uploader, err := media.NewUploader(ctx, media.Config{
		Bucket:          cfg.Media.Bucket,
		Region:          cfg.Media.Region,
		Endpoint:        cfg.Media.Endpoint,
		PublicURL:       cfg.Media.PublicURL,
		KeyPrefix:       cfg.Media.KeyPrefix,
		ForcePathStyle:  cfg.Media.ForcePathStyle,
		AccessKeyID:     cfg.Media.AccessKeyID,
		SecretAccessKey: cfg.Media.SecretAccessKey,
		LocalDir:        cfg.Media.LocalDir,
		LocalURL:        media.DefaultLocalURL,
	})
	if err != nil {
		logger.Warn("Failed to init media uploader, archiving disabled", zap.Error(err))
		return media.Disabled(), nil
	}
	if local, ok := uploader.(*media.LocalUploader); ok {
		logger.Info("Media uploader: local directory", zap.String("dir", local.BaseDir))
		return uploader, http.FileServer(http.Dir(local.BaseDir))
	}
	if cfg.Media.Bucket != "" {
		logger.Info("Media uploader: S3", zap.String("bucket", cfg.Media.Bucket))
	}
	return uploader, nil
}

func newGenerator(ctx context.Context, cfg *config.Config, logger *zap.Logger) generation.Generator {
	if cfg.AI.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, generator ready: heuristic preview")
		return generation.NewHeuristic(cfg.AI.Variations)
	}

	suggester, err := llm.NewGeminiClient(ctx, cfg.AI.GeminiAPIKey, cfg.AI.TextModel, cfg.AI.Timeout)
	if err != nil {
		logger.Fatal("Failed to init Gemini text client", zap.Error(err))
	}

	var renderer vision.Renderer
	switch cfg.AI.ImageProvider {
	case "vertex":
		renderer = vision.NewVertexImagen(vision.VertexImagenConfig{
			ProjectID:          cfg.AI.Vertex.Project,
			Location:           cfg.AI.Vertex.Location,
			Model:              cfg.AI.Vertex.Model,
			AccessToken:        cfg.AI.Vertex.AccessToken,
			ServiceAccount:     cfg.AI.Vertex.CredentialsFile,
			ServiceAccountJSON: cfg.AI.Vertex.CredentialsJSON,
		})
		logger.Info("Image renderer: Vertex Imagen", zap.String("model", cfg.AI.Vertex.Model))
	default:
		renderer, err = vision.NewGeminiImageGenerator(ctx, cfg.AI.GeminiAPIKey, cfg.AI.ImageModel, cfg.AI.Timeout)
		if err != nil {
			logger.Fatal("Failed to init Gemini image client", zap.Error(err))
		}
		logger.Info("Image renderer: Gemini", zap.String("model", cfg.AI.ImageModel))
	}

	logger.Info("Generator ready", zap.String("text_model", cfg.AI.TextModel), zap.Int("variations", cfg.AI.Variations))
	return generation.New(suggester, renderer, cfg.AI.Variations)
}
