package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ResultsConfig selects the result store backend.
type ResultsConfig struct {
	Backend  string
	Path     string
	RedisURL string
}

// NewResultStore builds the configured result store. Opening is deferred to Initialize.
func NewResultStore(cfg ResultsConfig, logger *zap.Logger) (ResultStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "sqlite":
		return NewSQLiteResultStore(cfg.Path, logger), nil
	case "redis":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("results backend redis requires a redis url")
		}
		return NewRedisResultStore(cfg.RedisURL, logger)
	case "memory":
		return NewInMemoryResultStore(), nil
	default:
		return nil, fmt.Errorf("unknown results backend %q", cfg.Backend)
	}
}

// NewProfileStore selects a backing store based on whether a database URL is provided.
func NewProfileStore(ctx context.Context, databaseURL string) (ProfileStore, error) {
	if databaseURL == "" {
		return NewInMemoryProfileStore(), nil
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := ensureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresProfileStore{pool: pool}, nil
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS profiles (
        id TEXT PRIMARY KEY,
        email TEXT NOT NULL UNIQUE,
        password_hash TEXT NOT NULL,
        credits INTEGER NOT NULL DEFAULT 0,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`)
	if err != nil {
		return fmt.Errorf("create profiles table: %w", err)
	}

	var schemaAlters = []string{
		`ALTER TABLE profiles ADD COLUMN IF NOT EXISTS credits INTEGER NOT NULL DEFAULT 0`,
		`ALTER TABLE profiles DROP CONSTRAINT IF EXISTS profiles_credits_non_negative`,
		`ALTER TABLE profiles ADD CONSTRAINT profiles_credits_non_negative CHECK (credits >= 0)`,
	}
	for _, stmt := range schemaAlters {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("alter profiles table: %w", err)
		}
	}

	return nil
}
