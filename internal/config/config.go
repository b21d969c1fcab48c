package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"geniusdesign/internal/logging"
)

// Config holds runtime configuration values.
type Config struct {
	Port        string `json:"port" env:"APP_PORT" env-default:"8080"`
	DatabaseURL string `json:"database_url" env:"DATABASE_URL"`
	Log         logging.Config `json:"log"`
	Results     ResultsConfig  `json:"results"`
	AI          AIConfig       `json:"ai"`
	Media       MediaConfig    `json:"media"`
	Auth        AuthConfig     `json:"auth"`

	// GenerationEndpoint is where the form submission posts. Empty means this server.
	GenerationEndpoint string `json:"generation_endpoint" env:"GENERATION_ENDPOINT"`
	PricingURL         string `json:"pricing_url" env:"PRICING_URL" env-default:"https://www.geniusdesigndecor.com/pricing"`
	StaticDir          string `json:"static_dir" env:"STATIC_DIR"`
}

// ResultsConfig selects where generation results are kept.
type ResultsConfig struct {
	Backend  string `json:"backend" env:"RESULTS_BACKEND" env-default:"sqlite"`
	Path     string `json:"path" env:"RESULTS_PATH" env-default:"data/genius_design.sqlite"`
	RedisURL string `json:"redis_url" env:"REDIS_URL"`
}

// AIConfig configures the model calls.
type AIConfig struct {
	GeminiAPIKey  string        `json:"gemini_api_key" env:"GEMINI_API_KEY"`
	TextModel     string        `json:"text_model" env:"GEMINI_TEXT_MODEL" env-default:"gemini-2.5-flash"`
	ImageModel    string        `json:"image_model" env:"GEMINI_IMAGE_MODEL" env-default:"gemini-2.5-flash-image"`
	Variations    int           `json:"variations" env:"GENERATION_VARIATIONS" env-default:"2"`
	Timeout       time.Duration `json:"timeout" env:"GENERATION_TIMEOUT" env-default:"150s"`
	ImageProvider string        `json:"image_provider" env:"IMAGE_PROVIDER" env-default:"gemini"`
	Vertex        VertexConfig  `json:"vertex"`
}

// VertexConfig configures the Imagen renderer.
type VertexConfig struct {
	Project         string `json:"project" env:"VERTEX_PROJECT"`
	Location        string `json:"location" env:"VERTEX_LOCATION" env-default:"us-central1"`
	Model           string `json:"model" env:"VERTEX_IMAGEN_MODEL" env-default:"imagen-3.0-capability-001"`
	CredentialsJSON string `json:"credentials_json" env:"VERTEX_CREDENTIALS_JSON"`
	CredentialsFile string `json:"credentials_file" env:"GOOGLE_APPLICATION_CREDENTIALS"`
	AccessToken     string `json:"access_token" env:"VERTEX_ACCESS_TOKEN"`
}

// MediaConfig describes S3/media related configuration.
type MediaConfig struct {
	Bucket          string `json:"bucket" env:"S3_BUCKET"`
	Region          string `json:"region" env:"S3_REGION"`
	Endpoint        string `json:"endpoint" env:"S3_ENDPOINT"`
	PublicURL       string `json:"public_url" env:"S3_PUBLIC_URL"`
	KeyPrefix       string `json:"key_prefix" env:"S3_KEY_PREFIX"`
	ForcePathStyle  bool   `json:"force_path_style" env:"S3_FORCE_PATH_STYLE" env-default:"false"`
	AccessKeyID     string `json:"access_key_id" env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `json:"secret_access_key" env:"S3_SECRET_ACCESS_KEY"`
	LocalDir        string `json:"local_dir" env:"MEDIA_LOCAL_DIR"`
}

// AuthConfig configures sessions and signup.
type AuthConfig struct {
	SessionSecret string        `json:"session_secret" env:"SESSION_SECRET"`
	SessionTTL    time.Duration `json:"session_ttl" env:"SESSION_TTL" env-default:"168h"`
	SecureCookie  bool          `json:"secure_cookie" env:"SESSION_SECURE_COOKIE" env-default:"false"`
	FreeCredits   int           `json:"free_credits" env:"FREE_CREDITS" env-default:"3"`
}

// Load reads a .env file if present, then the JSON file at path when it
// exists, and finally the environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			return finish(&cfg)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config %s: %w", path, err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return finish(&cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.Media.KeyPrefix = strings.Trim(cfg.Media.KeyPrefix, "/")
	cfg.Results.Backend = strings.ToLower(strings.TrimSpace(cfg.Results.Backend))
	cfg.AI.ImageProvider = strings.ToLower(strings.TrimSpace(cfg.AI.ImageProvider))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("APP_PORT cannot be empty")
	}
	switch c.Results.Backend {
	case "sqlite", "memory":
	case "redis":
		if c.Results.RedisURL == "" {
			return errors.New("REDIS_URL is required when RESULTS_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unknown RESULTS_BACKEND %q", c.Results.Backend)
	}
	if c.AI.Variations < 1 {
		return errors.New("GENERATION_VARIATIONS must be at least 1")
	}
	switch c.AI.ImageProvider {
	case "gemini":
	case "vertex":
		if c.AI.Vertex.Project == "" {
			return errors.New("VERTEX_PROJECT is required when IMAGE_PROVIDER=vertex")
		}
	default:
		return fmt.Errorf("unknown IMAGE_PROVIDER %q", c.AI.ImageProvider)
	}
	if c.Auth.FreeCredits < 0 {
		return errors.New("FREE_CREDITS cannot be negative")
	}
	return nil
}
