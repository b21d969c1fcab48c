package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProfileStore persists profiles and credit balances in PostgreSQL.
type PostgresProfileStore struct {
	pool *pgxpool.Pool
}

const profileColumns = `id, email, password_hash, credits, created_at`

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	if err := row.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.Credits, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, fmt.Errorf("scan profile: %w", err)
	}
	return p, nil
}

// CreateProfile stores the profile, mapping unique violations to ErrProfileExists.
func (s *PostgresProfileStore) CreateProfile(ctx context.Context, input Profile) (Profile, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.CreatedAt.IsZero() {
		input.CreatedAt = time.Now()
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	_, err := s.pool.Exec(ctx,
		`INSERT INTO profiles (id, email, password_hash, credits, created_at) VALUES ($1, $2, $3, $4, $5)`,
		input.ID, input.Email, input.PasswordHash, input.Credits, input.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Profile{}, ErrProfileExists
		}
		return Profile{}, fmt.Errorf("insert profile: %w", err)
	}
	return input, nil
}

// GetProfile returns a profile by ID.
func (s *PostgresProfileStore) GetProfile(ctx context.Context, id string) (Profile, error) {
	return scanProfile(s.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
}

// GetProfileByEmail returns a profile by email.
func (s *PostgresProfileStore) GetProfileByEmail(ctx context.Context, email string) (Profile, error) {
	return scanProfile(s.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = $1`, strings.ToLower(strings.TrimSpace(email))))
}

// ListProfiles returns the most recent profiles.
func (s *PostgresProfileStore) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at DESC LIMIT 500`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	profiles := []Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// ReserveCredit decrements only when a credit is left, so concurrent
// requests cannot drive the balance below zero.
func (s *PostgresProfileStore) ReserveCredit(ctx context.Context, id string) (int, error) {
	var remaining int
	err := s.pool.QueryRow(ctx,
		`UPDATE profiles SET credits = credits - 1 WHERE id = $1 AND credits > 0 RETURNING credits`, id).Scan(&remaining)
	if err == nil {
		return remaining, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("reserve credit: %w", err)
	}
	if _, err := s.GetProfile(ctx, id); err != nil {
		return 0, err
	}
	return 0, ErrInsufficientCredits
}

// RefundCredit gives a reserved credit back.
func (s *PostgresProfileStore) RefundCredit(ctx context.Context, id string) (int, error) {
	var remaining int
	err := s.pool.QueryRow(ctx, `UPDATE profiles SET credits = credits + 1 WHERE id = $1 RETURNING credits`, id).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("refund credit: %w", err)
	}
	return remaining, nil
}

// SetCredits overwrites the balance.
func (s *PostgresProfileStore) SetCredits(ctx context.Context, id string, credits int) error {
	if credits < 0 {
		credits = 0
	}
	tag, err := s.pool.Exec(ctx, `UPDATE profiles SET credits = $2 WHERE id = $1`, id, credits)
	if err != nil {
		return fmt.Errorf("set credits: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Close releases database resources.
func (s *PostgresProfileStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
