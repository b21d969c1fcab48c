package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// InMemoryResultStore is a thread-safe result store used in tests and when
// no durable backend can be opened.
type InMemoryResultStore struct {
	mu      sync.RWMutex
	results map[string][]byte
}

// NewInMemoryResultStore constructs an empty in-memory result store.
func NewInMemoryResultStore() *InMemoryResultStore {
	return &InMemoryResultStore{results: make(map[string][]byte)}
}

// Initialize satisfies ResultStore; memory is always available.
func (s *InMemoryResultStore) Initialize(_ context.Context) error { return nil }

// Put stores an encoded copy so later mutations by the caller do not leak in.
func (s *InMemoryResultStore) Put(_ context.Context, result Result) (string, error) {
	if strings.TrimSpace(result.ID) == "" {
		return "", errors.New("result id is required")
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now().UTC()
	}
	payload, err := EncodeResult(result)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.results[result.ID] = payload
	s.mu.Unlock()
	return result.ID, nil
}

// Get returns a decoded copy of the stored result or nil.
func (s *InMemoryResultStore) Get(_ context.Context, id string) (*Result, error) {
	s.mu.RLock()
	payload, ok := s.results[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return DecodeResult(payload)
}

// Close satisfies the ResultStore interface.
func (s *InMemoryResultStore) Close() error { return nil }

// Len reports how many results are held.
func (s *InMemoryResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}
