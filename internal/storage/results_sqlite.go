package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// DefaultResultsFile is the database file used when no path is configured.
const DefaultResultsFile = "genius_design.sqlite"

const getSchemaVersion = `PRAGMA user_version;`
const setSchemaVersion = `PRAGMA user_version = ?;`

const createResultsTable = `
CREATE TABLE IF NOT EXISTS results (
id TEXT NOT NULL PRIMARY KEY,
flow TEXT NOT NULL,
payload TEXT NOT NULL,
created_at DATETIME NOT NULL
);`

const addSchemaVersionColumn = `
ALTER TABLE results ADD COLUMN schema_version INTEGER NOT NULL DEFAULT 0;
`

const upsertResult = `
INSERT INTO results (id, flow, payload, created_at, schema_version) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET flow = excluded.flow, payload = excluded.payload, schema_version = excluded.schema_version;
`

const selectResult = `SELECT payload FROM results WHERE id = ?;`

type schemaStep struct {
	name  string
	query string
}

var schemaSteps = []schemaStep{
	{name: "create results table", query: createResultsTable},
	{name: "add schema version column", query: addSchemaVersionColumn},
}

// SQLiteResultStore keeps results in an embedded SQLite file.
type SQLiteResultStore struct {
	path   string
	logger *zap.Logger

	once sync.Once
	db   *sql.DB
	err  error
}

// NewSQLiteResultStore prepares a store at path; nothing is opened until first use.
func NewSQLiteResultStore(path string, logger *zap.Logger) *SQLiteResultStore {
	if strings.TrimSpace(path) == "" {
		path = DefaultResultsFile
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteResultStore{path: path, logger: logger.Named("SQLiteResultStore")}
}

// Initialize opens the database and applies pending schema steps exactly once.
func (s *SQLiteResultStore) Initialize(ctx context.Context) error {
	s.once.Do(func() {
		s.db, s.err = s.open(ctx)
		if s.err != nil {
			s.logger.Error("Failed to open result store", zap.String("path", s.path), zap.Error(s.err))
		}
	})
	return s.err
}

func (s *SQLiteResultStore) open(ctx context.Context) (*sql.DB, error) {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create result store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, fmt.Errorf("open result store: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under concurrent puts.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping result store: %w", err)
	}
	if err := s.migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (s *SQLiteResultStore) migrate(ctx context.Context, db *sql.DB) error {
	var current int
	if err := db.QueryRowContext(ctx, getSchemaVersion).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	required := len(schemaSteps)
	s.logger.Debug("Result store schema", zap.Int("current", current), zap.Int("required", required))

	for step := current + 1; step <= required; step++ {
		if err := s.execStep(ctx, db, step); err != nil {
			return fmt.Errorf("schema step %d %q: %w", step, schemaSteps[step-1].name, err)
		}
	}
	return nil
}

func (s *SQLiteResultStore) execStep(ctx context.Context, db *sql.DB, step int) error {
	s.logger.Info("Running result store schema step", zap.Int("step", step), zap.String("name", schemaSteps[step-1].name))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	//nolint
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaSteps[step-1].query); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, strings.Replace(setSchemaVersion, "?", strconv.Itoa(step), 1)); err != nil {
		return err
	}
	return tx.Commit()
}

// Put upserts the result by its ID.
func (s *SQLiteResultStore) Put(ctx context.Context, result Result) (string, error) {
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

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin put: %w", err)
	}
	//nolint
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, upsertResult, result.ID, string(result.Type), string(payload), result.CreatedAt, CurrentSchemaVersion); err != nil {
		s.logger.Error("Failed to put result", zap.String("id", result.ID), zap.Error(err))
		return "", fmt.Errorf("put result: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit put: %w", err)
	}
	return result.ID, nil
}

// Get loads a result by id. Unknown ids, and a store whose table has not been
// created, both yield nil without an error.
func (s *SQLiteResultStore) Get(ctx context.Context, id string) (*Result, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}

	var payload string
	err := s.db.QueryRowContext(ctx, selectResult, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || strings.Contains(err.Error(), "no such table") {
			return nil, nil
		}
		s.logger.Error("Failed to get result", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("get result: %w", err)
	}
	return DecodeResult([]byte(payload))
}

// Close releases the database handle if it was opened.
func (s *SQLiteResultStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
