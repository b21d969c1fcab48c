package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisResultKeyPrefix = "genius:result:"

// RedisResultStore keeps results in Redis so every instance behind a load
// balancer can serve share links. Records never expire.
type RedisResultStore struct {
	client *redis.Client
	logger *zap.Logger

	once sync.Once
	err  error
}

// NewRedisResultStore parses a redis:// URL and prepares the client.
func NewRedisResultStore(redisURL string, logger *zap.Logger) (*RedisResultStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisResultStore{
		client: redis.NewClient(opts),
		logger: logger.Named("RedisResultStore"),
	}, nil
}

// Initialize pings the server once and memoizes the outcome.
func (s *RedisResultStore) Initialize(ctx context.Context) error {
	s.once.Do(func() {
		if err := s.client.Ping(ctx).Err(); err != nil {
			s.err = fmt.Errorf("ping redis: %w", err)
			s.logger.Error("Failed to reach redis", zap.Error(err))
		}
	})
	return s.err
}

// Put overwrites the key for the result ID.
func (s *RedisResultStore) Put(ctx context.Context, result Result) (string, error) {
	if strings.TrimSpace(result.ID) == "" {
		return "", errors.New("result id is required")
	}
	if err := s.Initialize(ctx); err != nil {
		return "", err
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}

	payload, err := EncodeResult(result)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, redisResultKeyPrefix+result.ID, payload, 0).Err(); err != nil {
		s.logger.Error("Failed to put result", zap.String("id", result.ID), zap.Error(err))
		return "", fmt.Errorf("put result: %w", err)
	}
	return result.ID, nil
}

// Get returns nil when the key does not exist.
func (s *RedisResultStore) Get(ctx context.Context, id string) (*Result, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	payload, err := s.client.Get(ctx, redisResultKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get result: %w", err)
	}
	return DecodeResult(payload)
}

// Close shuts down the client connection pool.
func (s *RedisResultStore) Close() error {
	return s.client.Close()
}
