package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// WorkoutFilter narrows QueryCompletedWorkouts. Nil fields match everything.
type WorkoutFilter struct {
	MesocycleID *uuid.UUID
	Week        *int
}

const workoutColumns = `id, started_at, notes, completed, duration_minutes,
	mesocycle_id, split_day_id, mesocycle_week, feedback, created_at, updated_at`

// InsertWorkout stores a new workout with its exercises and sets and returns the assigned id.
func (db *DB) InsertWorkout(ctx context.Context, w *models.Workout) (uuid.UUID, error) {
	id := uuid.New()
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		args, err := workoutArgs(w)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO workouts (`+workoutColumns+`)
			 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			append([]any{id}, args...)...); err != nil {
			return fmt.Errorf("inserting workout: %w", err)
		}
		return insertWorkoutChildren(ctx, tx, id, w.Exercises)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// UpdateWorkout replaces a stored workout, including its exercises and sets.
func (db *DB) UpdateWorkout(ctx context.Context, id uuid.UUID, w *models.Workout) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		args, err := workoutArgs(w)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE workouts SET
			 started_at = ?, notes = ?, completed = ?, duration_minutes = ?,
			 mesocycle_id = ?, split_day_id = ?, mesocycle_week = ?, feedback = ?,
			 created_at = ?, updated_at = ?
			 WHERE id = ?`,
			append(args, id)...)
		if err != nil {
			return fmt.Errorf("updating workout %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("workout %s: %w", id, ErrNotFound)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM workout_sets WHERE workout_id = ?`, id); err != nil {
			return fmt.Errorf("clearing workout sets: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM workout_exercises WHERE workout_id = ?`, id); err != nil {
			return fmt.Errorf("clearing workout exercises: %w", err)
		}
		return insertWorkoutChildren(ctx, tx, id, w.Exercises)
	})
}

// GetWorkout retrieves a single workout by id with all exercises and sets.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID) (*models.Workout, error) {
	ws, err := db.queryWorkouts(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(ws) == 0 {
		return nil, fmt.Errorf("workout %s: %w", id, ErrNotFound)
	}
	return &ws[0], nil
}

// QueryWorkouts retrieves workouts started in [start, end), newest first.
func (db *DB) QueryWorkouts(ctx context.Context, start, end time.Time) ([]models.Workout, error) {
	return db.queryWorkouts(ctx,
		`SELECT `+workoutColumns+` FROM workouts
		 WHERE started_at >= ? AND started_at < ?
		 ORDER BY started_at DESC`,
		toMillis(start), toMillis(end))
}

// QueryCompletedWorkouts retrieves completed workouts matching filter, oldest first.
func (db *DB) QueryCompletedWorkouts(ctx context.Context, filter WorkoutFilter) ([]models.Workout, error) {
	where := []string{"completed = 1"}
	var args []any
	if filter.MesocycleID != nil {
		args = append(args, *filter.MesocycleID)
		where = append(where, "mesocycle_id = ?")
	}
	if filter.Week != nil {
		args = append(args, *filter.Week)
		where = append(where, "mesocycle_week = ?")
	}
	return db.queryWorkouts(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE `+strings.Join(where, " AND ")+` ORDER BY started_at ASC`,
		args...)
}

// GetPreviousPerformance returns the sets logged for an exercise in the most recent
// completed workout that contains it. It returns nil, nil when the exercise was never trained.
func (db *DB) GetPreviousPerformance(ctx context.Context, exerciseID uuid.UUID) (*models.PreviousPerformance, error) {
	var (
		workoutID uuid.UUID
		started   int64
	)
	err := db.sql.QueryRowContext(ctx,
		`SELECT w.id, w.started_at
		 FROM workouts w
		 JOIN workout_exercises we ON we.workout_id = w.id
		 WHERE w.completed = 1 AND we.exercise_id = ?
		 ORDER BY w.started_at DESC
		 LIMIT 1`,
		exerciseID).Scan(&workoutID, &started)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying previous performance: %w", err)
	}

	rows, err := db.sql.QueryContext(ctx,
		`SELECT `+setColumns+` FROM workout_sets
		 WHERE workout_id = ? AND exercise_id = ?
		 ORDER BY exercise_position ASC, set_number ASC`,
		workoutID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying previous sets: %w", err)
	}
	defer rows.Close()

	prev := &models.PreviousPerformance{WorkoutID: workoutID, Date: fromMillis(started)}
	for rows.Next() {
		s, _, err := scanSet(rows)
		if err != nil {
			return nil, err
		}
		prev.Sets = append(prev.Sets, s)
	}
	return prev, rows.Err()
}

func workoutArgs(w *models.Workout) ([]any, error) {
	var (
		mesoID, splitID uuid.NullUUID
		week            sql.NullInt64
		feedback        sql.NullString
	)
	if w.Split != nil {
		mesoID = uuid.NullUUID{UUID: w.Split.MesocycleID, Valid: true}
		splitID = uuid.NullUUID{UUID: w.Split.SplitDayID, Valid: true}
		week = sql.NullInt64{Int64: int64(w.Split.Week), Valid: true}
	}
	if w.Feedback != nil {
		data, err := json.Marshal(w.Feedback)
		if err != nil {
			return nil, fmt.Errorf("encoding feedback: %w", err)
		}
		feedback = sql.NullString{String: string(data), Valid: true}
	}
	return []any{
		toMillis(w.StartedAt), w.Notes, w.Completed, w.DurationMinutes,
		mesoID, splitID, week, feedback,
		toMillis(w.CreatedAt), toMillis(w.UpdatedAt),
	}, nil
}

func insertWorkoutChildren(ctx context.Context, tx *sql.Tx, workoutID uuid.UUID, exercises []models.WorkoutExercise) error {
	for pos, ex := range exercises {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO workout_exercises (workout_id, position, exercise_id, notes) VALUES (?,?,?,?)`,
			workoutID, pos, ex.ExerciseID, ex.Notes); err != nil {
			return fmt.Errorf("inserting workout exercise: %w", err)
		}
		for _, s := range ex.Sets {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO workout_sets (id, workout_id, exercise_position, exercise_id, set_number,
				 target_reps, actual_reps, weight, rir, completed)
				 VALUES (?,?,?,?,?,?,?,?,?,?)`,
				s.ID, workoutID, pos, ex.ExerciseID, s.SetNumber,
				s.TargetReps, s.ActualReps, s.Weight, s.RIR, s.Completed); err != nil {
				return fmt.Errorf("inserting workout set: %w", err)
			}
		}
	}
	return nil
}

func (db *DB) queryWorkouts(ctx context.Context, query string, args ...any) ([]models.Workout, error) {
	rows, err := db.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	var result []models.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		result = append(result, w)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// With a single connection the children can only be read once the parent rows are released.
	rows.Close()

	for i := range result {
		if err := loadWorkoutChildren(ctx, db.sql, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func scanWorkout(rows *sql.Rows) (models.Workout, error) {
	var (
		w                         models.Workout
		id                        uuid.UUID
		started, created, updated int64
		mesoID, splitID           uuid.NullUUID
		week                      sql.NullInt64
		feedback                  sql.NullString
	)
	if err := rows.Scan(&id, &started, &w.Notes, &w.Completed, &w.DurationMinutes,
		&mesoID, &splitID, &week, &feedback, &created, &updated); err != nil {
		return w, fmt.Errorf("scanning workout: %w", err)
	}
	w.Identity = models.PersistedIdentity(id)
	w.StartedAt = fromMillis(started)
	w.CreatedAt = fromMillis(created)
	w.UpdatedAt = fromMillis(updated)
	if mesoID.Valid && splitID.Valid {
		w.Split = &models.SplitRef{MesocycleID: mesoID.UUID, SplitDayID: splitID.UUID, Week: int(week.Int64)}
	}
	if feedback.Valid {
		var fb models.WorkoutFeedback
		if err := json.Unmarshal([]byte(feedback.String), &fb); err != nil {
			return w, fmt.Errorf("decoding feedback for workout %s: %w", id, err)
		}
		w.Feedback = &fb
	}
	return w, nil
}

const setColumns = `id, exercise_position, exercise_id, set_number, target_reps, actual_reps, weight, rir, completed`

func scanSet(rows *sql.Rows) (models.WorkoutSet, int, error) {
	var (
		s      models.WorkoutSet
		pos    int
		actual sql.NullInt64
		rir    sql.NullFloat64
	)
	if err := rows.Scan(&s.ID, &pos, &s.ExerciseID, &s.SetNumber, &s.TargetReps,
		&actual, &s.Weight, &rir, &s.Completed); err != nil {
		return s, 0, fmt.Errorf("scanning workout set: %w", err)
	}
	if actual.Valid {
		v := int(actual.Int64)
		s.ActualReps = &v
	}
	if rir.Valid {
		v := rir.Float64
		s.RIR = &v
	}
	return s, pos, nil
}

func loadWorkoutChildren(ctx context.Context, q queryer, w *models.Workout) error {
	id, _ := w.Identity.ID()

	exRows, err := q.QueryContext(ctx,
		`SELECT exercise_id, notes FROM workout_exercises WHERE workout_id = ? ORDER BY position ASC`, id)
	if err != nil {
		return fmt.Errorf("querying workout exercises: %w", err)
	}
	for exRows.Next() {
		var ex models.WorkoutExercise
		if err := exRows.Scan(&ex.ExerciseID, &ex.Notes); err != nil {
			exRows.Close()
			return fmt.Errorf("scanning workout exercise: %w", err)
		}
		w.Exercises = append(w.Exercises, ex)
	}
	exRows.Close()
	if err := exRows.Err(); err != nil {
		return err
	}

	setRows, err := q.QueryContext(ctx,
		`SELECT `+setColumns+` FROM workout_sets WHERE workout_id = ?
		 ORDER BY exercise_position ASC, set_number ASC`, id)
	if err != nil {
		return fmt.Errorf("querying workout sets: %w", err)
	}
	defer setRows.Close()
	for setRows.Next() {
		s, pos, err := scanSet(setRows)
		if err != nil {
			return err
		}
		if pos < 0 || pos >= len(w.Exercises) {
			return fmt.Errorf("workout %s: set %s at exercise position %d out of range", id, s.ID, pos)
		}
		w.Exercises[pos].Sets = append(w.Exercises[pos].Sets, s)
	}
	return setRows.Err()
}
