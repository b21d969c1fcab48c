package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "unset")
	require.NoError(t, os.Unsetenv("APP_PORT"))
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.Results.Backend)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.TextModel)
	assert.Equal(t, "gemini-2.5-flash-image", cfg.AI.ImageModel)
	assert.Equal(t, 2, cfg.AI.Variations)
	assert.Equal(t, 3, cfg.Auth.FreeCredits)
	assert.Equal(t, 168*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "https://www.geniusdesigndecor.com/pricing", cfg.PricingURL)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_PORT", "9090")
	t.Setenv("S3_KEY_PREFIX", "/results/")
	t.Setenv("RESULTS_BACKEND", "MEMORY")
	t.Setenv("GENERATION_VARIATIONS", "4")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "results", cfg.Media.KeyPrefix)
	assert.Equal(t, "memory", cfg.Results.Backend)
	assert.Equal(t, 4, cfg.AI.Variations)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"port":"7000","results":{"backend":"memory"},"ai":{"variations":1}}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "memory", cfg.Results.Backend)
	assert.Equal(t, 1, cfg.AI.Variations)
	assert.Equal(t, "gemini", cfg.AI.ImageProvider)
}

func TestLoad_MissingFileFallsBackToEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_PORT", "8181")

	cfg, err := Load("does-not-exist.json")
	require.NoError(t, err)
	assert.Equal(t, "8181", cfg.Port)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:    "8080",
			Results: ResultsConfig{Backend: "sqlite"},
			AI:      AIConfig{Variations: 2, ImageProvider: "gemini"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"redis without url", func(c *Config) { c.Results.Backend = "redis" }},
		{"unknown backend", func(c *Config) { c.Results.Backend = "etcd" }},
		{"zero variations", func(c *Config) { c.AI.Variations = 0 }},
		{"vertex without project", func(c *Config) { c.AI.ImageProvider = "vertex" }},
		{"unknown provider", func(c *Config) { c.AI.ImageProvider = "dalle" }},
		{"negative credits", func(c *Config) { c.Auth.FreeCredits = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
