// Package draft persists the single in-progress workout snapshot so a session
// survives process death. It is independent of the entity store.
package draft

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/liftlog/internal/models"
	_ "modernc.org/sqlite"
)

// Store holds at most one draft workout.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the draft database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating draft dir %s: %w", filepath.Dir(path), err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening draft db: %w", err)
	}
	db.SetMaxOpenConns(1)

	// slot is pinned to 1 so INSERT OR REPLACE always overwrites the same row.
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS draft (
		slot     INTEGER PRIMARY KEY CHECK (slot = 1),
		workout  TEXT NOT NULL,
		saved_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating draft table: %w", err)
	}

	return &Store{db: db}, nil
}

// SaveDraft overwrites the stored snapshot with w.
func (s *Store) SaveDraft(ctx context.Context, w *models.Workout) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO draft (slot, workout, saved_at) VALUES (1, ?, ?)`,
		string(data), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}
	return nil
}

// LoadDraft returns the stored snapshot, or nil when the slot is empty.
func (s *Store) LoadDraft(ctx context.Context) (*models.Workout, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT workout FROM draft WHERE slot = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading draft: %w", err)
	}
	var w models.Workout
	if err := json.Unmarshal([]byte(data), &w); err != nil {
		return nil, fmt.Errorf("decoding draft: %w", err)
	}
	return &w, nil
}

// ClearDraft empties the slot. Clearing an empty slot is not an error.
func (s *Store) ClearDraft(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM draft WHERE slot = 1`); err != nil {
		return fmt.Errorf("clearing draft: %w", err)
	}
	return nil
}

// Close closes the draft database.
func (s *Store) Close() error {
	return s.db.Close()
}
