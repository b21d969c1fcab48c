package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geniusdesign/internal/storage"
)

func seeded(t *testing.T) *storage.InMemoryProfileStore {
	t.Helper()
	store := storage.NewInMemoryProfileStore()
	_, err := store.CreateProfile(context.Background(), storage.Profile{Email: "ana@example.com", PasswordHash: "x", Credits: 1})
	require.NoError(t, err)
	return store
}

func credits(t *testing.T, store storage.ProfileStore) int {
	t.Helper()
	p, err := store.GetProfileByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	return p.Credits
}

func TestRunSetAndAdd(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)
	var out bytes.Buffer

	require.NoError(t, run(ctx, store, options{email: "ana@example.com", set: 10}, &out))
	assert.Equal(t, 10, credits(t, store))

	require.NoError(t, run(ctx, store, options{email: "ANA@example.com", set: -1, add: 5}, &out))
	assert.Equal(t, 15, credits(t, store))

	require.NoError(t, run(ctx, store, options{email: "ana@example.com", set: -1, add: -100}, &out))
	assert.Equal(t, 0, credits(t, store))
	assert.Contains(t, out.String(), "credits=0")
}

func TestRunList(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), seeded(t), options{list: true, set: -1}, &out))
	assert.Contains(t, out.String(), "ana@example.com")
	assert.Contains(t, out.String(), "CREDITS")
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()
	store := seeded(t)
	assert.Error(t, run(ctx, store, options{set: -1}, &bytes.Buffer{}))
	assert.Error(t, run(ctx, store, options{email: "ana@example.com", set: -1}, &bytes.Buffer{}))

	err := run(ctx, store, options{email: "ghost@example.com", set: 1}, &bytes.Buffer{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
