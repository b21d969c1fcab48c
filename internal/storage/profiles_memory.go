package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryProfileStore is a thread-safe profile store used when a database is not configured.
type InMemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

// NewInMemoryProfileStore constructs an empty in-memory profile store.
func NewInMemoryProfileStore() *InMemoryProfileStore {
	return &InMemoryProfileStore{profiles: make(map[string]Profile)}
}

// CreateProfile adds a profile, rejecting duplicate emails.
func (s *InMemoryProfileStore) CreateProfile(_ context.Context, input Profile) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(input.Email))
	for _, p := range s.profiles {
		if p.Email == email {
			return Profile{}, ErrProfileExists
		}
	}

	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}
	if input.Credits < 0 {
		input.Credits = 0
	}
	input.Email = email
	s.profiles[input.ID] = input
	return input, nil
}

// GetProfile returns a profile by ID.
func (s *InMemoryProfileStore) GetProfile(_ context.Context, id string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

// GetProfileByEmail returns a profile by its normalized email.
func (s *InMemoryProfileStore) GetProfileByEmail(_ context.Context, email string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, p := range s.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return Profile{}, ErrNotFound
}

// ListProfiles returns a snapshot ordered by creation time, newest first.
func (s *InMemoryProfileStore) ListProfiles(_ context.Context) ([]Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		snapshot = append(snapshot, p)
	}
	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].CreatedAt.After(snapshot[j].CreatedAt)
	})
	return snapshot, nil
}

// ReserveCredit takes one credit under the write lock.
func (s *InMemoryProfileStore) ReserveCredit(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return 0, ErrNotFound
	}
	if p.Credits <= 0 {
		return 0, ErrInsufficientCredits
	}
	p.Credits--
	s.profiles[id] = p
	return p.Credits, nil
}

// RefundCredit returns one credit to the profile.
func (s *InMemoryProfileStore) RefundCredit(_ context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return 0, ErrNotFound
	}
	p.Credits++
	s.profiles[id] = p
	return p.Credits, nil
}

// SetCredits overwrites the balance.
func (s *InMemoryProfileStore) SetCredits(_ context.Context, id string, credits int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[id]
	if !ok {
		return ErrNotFound
	}
	if credits < 0 {
		credits = 0
	}
	p.Credits = credits
	s.profiles[id] = p
	return nil
}

// Close satisfies the ProfileStore interface.
func (s *InMemoryProfileStore) Close() {}
