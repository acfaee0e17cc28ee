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

const mesocycleColumns = `id, name, start_date, end_date, current_week, split_type, deload, status, created_at, updated_at`

// InsertMesocycle stores a mesocycle with its split days. Missing ids are assigned
// in place. The single-active-mesocycle rule is left to the caller.
func (db *DB) InsertMesocycle(ctx context.Context, m *models.Mesocycle) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CurrentWeek < 1 {
		m.CurrentWeek = 1
	}
	if m.Status == "" {
		m.Status = models.MesocycleStatusPlanned
	}
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	return db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO mesocycles (`+mesocycleColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?)`,
			m.ID, m.Name, toMillis(m.StartDate), toMillis(m.EndDate), m.CurrentWeek,
			m.SplitType, m.Deload, string(m.Status), toMillis(m.CreatedAt), toMillis(m.UpdatedAt)); err != nil {
			return fmt.Errorf("inserting mesocycle: %w", err)
		}
		for pos := range m.SplitDays {
			d := &m.SplitDays[pos]
			if d.ID == uuid.Nil {
				d.ID = uuid.New()
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO split_days (id, mesocycle_id, position, name) VALUES (?,?,?,?)`,
				d.ID, m.ID, pos, d.Name); err != nil {
				return fmt.Errorf("inserting split day %q: %w", d.Name, err)
			}
			for i, pe := range d.Exercises {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO split_day_exercises (split_day_id, position, exercise_id, target_sets, target_reps, target_weight)
					 VALUES (?,?,?,?,?,?)`,
					d.ID, i, pe.ExerciseID, pe.TargetSets, pe.TargetReps, pe.TargetWeight); err != nil {
					return fmt.Errorf("inserting planned exercise: %w", err)
				}
			}
		}
		return nil
	})
}

// GetMesocycle retrieves a mesocycle by id with its split days in configured order.
func (db *DB) GetMesocycle(ctx context.Context, id uuid.UUID) (*models.Mesocycle, error) {
	m, err := scanMesocycle(db.sql.QueryRowContext(ctx,
		`SELECT `+mesocycleColumns+` FROM mesocycles WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("mesocycle %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := db.loadSplitDays(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// GetActiveMesocycle returns the most recently updated active mesocycle.
func (db *DB) GetActiveMesocycle(ctx context.Context) (*models.Mesocycle, error) {
	m, err := scanMesocycle(db.sql.QueryRowContext(ctx,
		`SELECT `+mesocycleColumns+` FROM mesocycles WHERE status = ? ORDER BY updated_at DESC LIMIT 1`,
		string(models.MesocycleStatusActive)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("active mesocycle: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := db.loadSplitDays(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// AdvanceMesocycleWeek increments the current week and returns the updated mesocycle.
func (db *DB) AdvanceMesocycleWeek(ctx context.Context, id uuid.UUID) (*models.Mesocycle, error) {
	res, err := db.sql.ExecContext(ctx,
		`UPDATE mesocycles SET current_week = current_week + 1, updated_at = ? WHERE id = ?`,
		toMillis(time.Now()), id)
	if err != nil {
		return nil, fmt.Errorf("advancing mesocycle week: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("mesocycle %s: %w", id, ErrNotFound)
	}
	return db.GetMesocycle(ctx, id)
}

func scanMesocycle(row *sql.Row) (*models.Mesocycle, error) {
	var (
		m                                models.Mesocycle
		status                           string
		start, end, createdAt, updatedAt int64
	)
	if err := row.Scan(&m.ID, &m.Name, &start, &end, &m.CurrentWeek, &m.SplitType,
		&m.Deload, &status, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning mesocycle: %w", err)
	}
	m.Status = models.MesocycleStatus(status)
	m.StartDate = fromMillis(start)
	m.EndDate = fromMillis(end)
	m.CreatedAt = fromMillis(createdAt)
	m.UpdatedAt = fromMillis(updatedAt)
	return &m, nil
}

func (db *DB) loadSplitDays(ctx context.Context, m *models.Mesocycle) error {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, name FROM split_days WHERE mesocycle_id = ? ORDER BY position ASC`, m.ID)
	if err != nil {
		return fmt.Errorf("querying split days: %w", err)
	}
	for rows.Next() {
		var d models.SplitDay
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			rows.Close()
			return fmt.Errorf("scanning split day: %w", err)
		}
		m.SplitDays = append(m.SplitDays, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range m.SplitDays {
		d := &m.SplitDays[i]
		peRows, err := db.sql.QueryContext(ctx,
			`SELECT exercise_id, target_sets, target_reps, target_weight
			 FROM split_day_exercises WHERE split_day_id = ? ORDER BY position ASC`, d.ID)
		if err != nil {
			return fmt.Errorf("querying planned exercises: %w", err)
		}
		for peRows.Next() {
			var pe models.PlannedExercise
			if err := peRows.Scan(&pe.ExerciseID, &pe.TargetSets, &pe.TargetReps, &pe.TargetWeight); err != nil {
				peRows.Close()
				return fmt.Errorf("scanning planned exercise: %w", err)
			}
			d.Exercises = append(d.Exercises, pe)
		}
		peRows.Close()
		if err := peRows.Err(); err != nil {
			return err
		}
	}
	return nil
}
