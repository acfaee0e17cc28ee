package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// InsertExercise adds an exercise to the catalogue, assigning an id when missing.
func (db *DB) InsertExercise(ctx context.Context, e *models.Exercise) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := db.sql.ExecContext(ctx,
		`INSERT INTO exercises (id, name, muscle_group, equipment, created_at) VALUES (?,?,?,?,?)`,
		e.ID, e.Name, e.MuscleGroup, e.Equipment, toMillis(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting exercise: %w", err)
	}
	return nil
}

// GetExercise retrieves an exercise by id.
func (db *DB) GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error) {
	var (
		e       models.Exercise
		created int64
	)
	err := db.sql.QueryRowContext(ctx,
		`SELECT id, name, muscle_group, equipment, created_at FROM exercises WHERE id = ?`, id).
		Scan(&e.ID, &e.Name, &e.MuscleGroup, &e.Equipment, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("exercise %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	e.CreatedAt = fromMillis(created)
	return &e, nil
}

// ListExercises returns the catalogue ordered by name.
func (db *DB) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, name, muscle_group, equipment, created_at FROM exercises ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var (
			e       models.Exercise
			created int64
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.MuscleGroup, &e.Equipment, &created); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		e.CreatedAt = fromMillis(created)
		result = append(result, e)
	}
	return result, rows.Err()
}
