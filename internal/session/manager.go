// Package session owns the single in-progress workout: its lifecycle, the
// mutations applied to it, periodic snapshots to the draft store and recovery
// of an interrupted session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// State is the lifecycle state of the Manager.
type State int

const (
	Inactive State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "inactive"
}

// MarshalText renders the state as "active" or "inactive".
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses the form written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "active":
		*s = Active
	case "inactive":
		*s = Inactive
	default:
		return fmt.Errorf("unknown session state %q", text)
	}
	return nil
}

// EntityStore is the durable history the Manager reads from and commits to.
type EntityStore interface {
	InsertWorkout(ctx context.Context, w *models.Workout) (uuid.UUID, error)
	UpdateWorkout(ctx context.Context, id uuid.UUID, w *models.Workout) error
	GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error)
	GetMesocycle(ctx context.Context, id uuid.UUID) (*models.Mesocycle, error)
	GetPreviousPerformance(ctx context.Context, exerciseID uuid.UUID) (*models.PreviousPerformance, error)
}

// DraftStore is the single-slot snapshot cache.
type DraftStore interface {
	SaveDraft(ctx context.Context, w *models.Workout) error
	LoadDraft(ctx context.Context) (*models.Workout, error)
	ClearDraft(ctx context.Context) error
}

// Options configures a Manager. Zero values select the defaults.
type Options struct {
	AutosaveInterval time.Duration
	Scheduler        Scheduler
	Now              func() time.Time
	NewID            func() uuid.UUID
	Logger           *slog.Logger
}

// SetPatch holds the set fields to overwrite. Nil fields are left unchanged.
type SetPatch struct {
	TargetReps *int     `json:"target_reps,omitempty"`
	ActualReps *int     `json:"actual_reps,omitempty"`
	Weight     *float64 `json:"weight,omitempty"`
	RIR        *float64 `json:"rir,omitempty"`
	Completed  *bool    `json:"completed,omitempty"`
}

// Manager is the workout session state machine. All methods are safe for
// concurrent use; autosave ticks are serialized with every other operation.
type Manager struct {
	entities EntityStore
	drafts   DraftStore
	sched    Scheduler
	now      func() time.Time
	newID    func() uuid.UUID
	log      *slog.Logger

	mu     sync.Mutex
	state  State
	draft  *models.Workout
	cursor int
}

// NewManager creates a Manager and recovers an interrupted session from the
// draft store. A recovered snapshot puts the Manager directly into Active.
func NewManager(ctx context.Context, entities EntityStore, drafts DraftStore, opts Options) *Manager {
	if opts.AutosaveInterval <= 0 {
		opts.AutosaveInterval = DefaultAutosaveInterval
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewCronScheduler(opts.AutosaveInterval)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.New
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	m := &Manager{
		entities: entities,
		drafts:   drafts,
		sched:    opts.Scheduler,
		now:      opts.Now,
		newID:    opts.NewID,
		log:      opts.Logger,
	}
	m.recover(ctx)
	return m
}

func (m *Manager) recover(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, err := m.drafts.LoadDraft(ctx)
	if err != nil {
		m.log.Warn("loading draft snapshot failed, starting inactive", "error", err)
		return
	}
	if snap == nil {
		return
	}
	if snap.Completed {
		// Left behind when the slot could not be cleared after a successful commit.
		m.log.Info("discarding snapshot of committed workout", "workout", snap.Identity)
		if err := m.drafts.ClearDraft(ctx); err != nil {
			m.log.Warn("clearing stale snapshot failed", "error", err)
		}
		return
	}

	m.draft = snap
	m.state = Active
	m.cursor = 0
	m.sched.Start(m.autosave)
	m.log.Info("session recovered", "started_at", snap.StartedAt, "exercises", len(snap.Exercises))
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns a copy of the draft, or nil when no session is active.
func (m *Manager) Current() *models.Workout {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft.Clone()
}

// Cursor returns the index of the exercise the UI is focused on.
func (m *Manager) Cursor() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor
}

// SetCursor moves the exercise cursor.
func (m *Manager) SetCursor(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireState(Active, "set cursor"); err != nil {
		return err
	}
	if i < 0 || i >= len(m.draft.Exercises) {
		return fmt.Errorf("exercise #%d: %w", i, ErrNotFound)
	}
	m.cursor = i
	return nil
}

// Start begins an unscheduled session with no exercises.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireState(Inactive, "start"); err != nil {
		return err
	}
	now := m.now()
	m.activate(ctx, &models.Workout{
		Identity:  models.DraftIdentity(),
		StartedAt: now,
		Exercises: []models.WorkoutExercise{},
		CreatedAt: now,
		UpdatedAt: now,
	})
	m.log.Info("session started")
	return nil
}

// StartFromSplit begins a session pre-populated from a mesocycle split day.
// When the mesocycle or split day cannot be found the error wraps ErrNotFound,
// nothing changes and the caller can fall back to Start.
func (m *Manager) StartFromSplit(ctx context.Context, mesocycleID, splitDayID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireState(Inactive, "start from split"); err != nil {
		return err
	}

	meso, err := m.entities.GetMesocycle(ctx, mesocycleID)
	if err != nil {
		m.log.Warn("split lookup failed", "mesocycle", mesocycleID, "error", err)
		return fmt.Errorf("looking up mesocycle %s: %w", mesocycleID, err)
	}
	day, ok := meso.SplitDay(splitDayID)
	if !ok {
		m.log.Warn("split day not in mesocycle", "mesocycle", mesocycleID, "split_day", splitDayID)
		return fmt.Errorf("split day %s in mesocycle %s: %w", splitDayID, mesocycleID, ErrNotFound)
	}

	exercises := make([]models.WorkoutExercise, 0, len(day.Exercises))
	for _, pe := range day.Exercises {
		planned := setTarget{reps: pe.TargetReps, weight: pe.TargetWeight}
		exercises = append(exercises, m.seededExercise(ctx, pe.ExerciseID, planned))
	}

	now := m.now()
	m.activate(ctx, &models.Workout{
		Identity:  models.DraftIdentity(),
		StartedAt: now,
		Exercises: exercises,
		Split:     &models.SplitRef{MesocycleID: meso.ID, SplitDayID: day.ID, Week: meso.CurrentWeek},
		CreatedAt: now,
		UpdatedAt: now,
	})
	m.log.Info("session started from split", "mesocycle", meso.Name, "split_day", day.Name,
		"week", meso.CurrentWeek, "exercises", len(exercises))
	return nil
}

// AddExercise appends an exercise with one seeded set. Duplicates are not rejected.
func (m *Manager) AddExercise(ctx context.Context, exerciseID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireState(Active, "add exercise"); err != nil {
		return err
	}
	if _, err := m.entities.GetExercise(ctx, exerciseID); err != nil {
		m.log.Warn("exercise lookup failed", "exercise", exerciseID, "error", err)
		return fmt.Errorf("looking up exercise %s: %w", exerciseID, err)
	}
	m.draft.Exercises = append(m.draft.Exercises,
		m.seededExercise(ctx, exerciseID, setTarget{reps: DefaultTargetReps}))
	m.touch()
	return nil
}

// RemoveExercise drops the first entry for exerciseID. Absent ids are ignored.
func (m *Manager) RemoveExercise(exerciseID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireState(Active, "remove exercise"); err != nil {
		return err
	}
	i := m.exerciseIndex(exerciseID)
	if i < 0 {
		return nil
	}
	m.draft.Exercises = append(m.draft.Exercises[:i], m.draft.Exercises[i+1:]...)
	if m.cursor >= len(m.draft.Exercises) {
		m.cursor = max(len(m.draft.Exercises)-1, 0)
	}
	m.touch()
	return nil
}

// AddSet appends a set to an exercise, copying reps and weight forward from its last set.
func (m *Manager) AddSet(exerciseID uuid.UUID) (models.WorkoutSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ex, err := m.activeExercise("add set", exerciseID)
	if err != nil {
		return models.WorkoutSet{}, err
	}
	set := emptySet(m.newID(), exerciseID, len(ex.Sets)+1, targetFromLast(ex.Sets))
	ex.Sets = append(ex.Sets, set)
	m.touch()
	return set, nil
}

// RemoveSet deletes a set and renumbers the remaining ones. Unknown set ids are ignored.
func (m *Manager) RemoveSet(exerciseID, setID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ex, err := m.activeExercise("remove set", exerciseID)
	if err != nil {
		return err
	}
	for i := range ex.Sets {
		if ex.Sets[i].ID == setID {
			ex.Sets = append(ex.Sets[:i], ex.Sets[i+1:]...)
			renumber(ex.Sets)
			m.touch()
			return nil
		}
	}
	return nil
}

// UpdateSet merges patch into a set.
func (m *Manager) UpdateSet(exerciseID, setID uuid.UUID, patch SetPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ex, err := m.activeExercise("update set", exerciseID)
	if err != nil {
		return err
	}
	for i := range ex.Sets {
		s := &ex.Sets[i]
		if s.ID != setID {
			continue
		}
		if patch.TargetReps != nil {
			s.TargetReps = *patch.TargetReps
		}
		if patch.ActualReps != nil {
			v := *patch.ActualReps
			s.ActualReps = &v
		}
		if patch.Weight != nil {
			s.Weight = *patch.Weight
		}
		if patch.RIR != nil {
			v := *patch.RIR
			s.RIR = &v
		}
		if patch.Completed != nil {
			s.Completed = *patch.Completed
		}
		m.touch()
		return nil
	}
	return fmt.Errorf("set %s: %w", setID, ErrNotFound)
}

// UpdateExerciseNotes replaces the notes of an exercise.
func (m *Manager) UpdateExerciseNotes(exerciseID uuid.UUID, notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ex, err := m.activeExercise("update exercise notes", exerciseID)
	if err != nil {
		return err
	}
	ex.Notes = notes
	m.touch()
	return nil
}

// UpdateWorkoutNotes replaces the workout notes.
func (m *Manager) UpdateWorkoutNotes(notes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireState(Active, "update workout notes"); err != nil {
		return err
	}
	m.draft.Notes = notes
	m.touch()
	return nil
}

// Finish commits the draft to the entity store and ends the session. If the
// commit fails the error is returned and the draft, its snapshot and the
// Active state are kept so the caller can retry.
func (m *Manager) Finish(ctx context.Context, feedback *models.WorkoutFeedback) (*models.Workout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireState(Active, "finish"); err != nil {
		return nil, err
	}
	if err := validateFeedback(feedback); err != nil {
		return nil, err
	}

	done := m.draft.Clone()
	finishedAt := m.now()
	done.Completed = true
	done.DurationMinutes = durationMinutes(done.StartedAt, finishedAt)
	if feedback != nil {
		fb := *feedback
		fb.Muscles = append([]models.MuscleFeedback(nil), feedback.Muscles...)
		done.Feedback = &fb
	}
	if done.CreatedAt.IsZero() {
		done.CreatedAt = done.StartedAt
	}
	done.UpdatedAt = finishedAt

	if id, ok := done.Identity.ID(); ok {
		if err := m.entities.UpdateWorkout(ctx, id, done); err != nil {
			m.log.Error("committing workout failed", "workout", id, "error", err)
			return nil, fmt.Errorf("committing workout: %w", err)
		}
	} else {
		id, err := m.entities.InsertWorkout(ctx, done)
		if err != nil {
			m.log.Error("committing workout failed", "error", err)
			return nil, fmt.Errorf("committing workout: %w", err)
		}
		done.Identity = models.PersistedIdentity(id)
	}

	m.deactivate()
	if err := m.drafts.ClearDraft(ctx); err != nil {
		m.log.Warn("clearing draft after commit failed", "workout", done.Identity, "error", err)
		// A completed snapshot is discarded by recovery instead of being committed twice.
		if err := m.drafts.SaveDraft(ctx, done); err != nil {
			m.log.Warn("marking stale snapshot failed", "error", err)
		}
	}
	m.log.Info("workout finished", "workout", done.Identity,
		"duration_min", done.DurationMinutes, "exercises", len(done.Exercises))
	return done, nil
}

// Cancel discards the draft without writing to the entity store.
func (m *Manager) Cancel(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireState(Active, "cancel"); err != nil {
		return err
	}
	m.deactivate()
	if err := m.drafts.ClearDraft(ctx); err != nil {
		m.log.Warn("clearing draft after cancel failed", "error", err)
	}
	m.log.Info("session cancelled")
	return nil
}

// Close stops autosave. The snapshot is left in place so the session is recovered next time.
func (m *Manager) Close() {
	m.sched.Stop()
}

func (m *Manager) activate(ctx context.Context, w *models.Workout) {
	m.draft = w
	m.state = Active
	m.cursor = 0
	m.saveSnapshot(ctx)
	m.sched.Start(m.autosave)
}

func (m *Manager) deactivate() {
	m.sched.Stop()
	m.state = Inactive
	m.draft = nil
	m.cursor = 0
}

// autosave runs on the scheduler goroutine. Once the session has left Active
// it writes nothing, so the clear done by Finish or Cancel stays the last write.
func (m *Manager) autosave() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Active {
		return
	}
	m.saveSnapshot(context.Background())
}

func (m *Manager) saveSnapshot(ctx context.Context) {
	if err := m.drafts.SaveDraft(ctx, m.draft); err != nil {
		m.log.Warn("autosave failed", "error", err)
	}
}

func (m *Manager) requireState(want State, op string) error {
	if m.state == want {
		return nil
	}
	m.log.Warn("rejected session operation", "op", op, "state", m.state)
	return fmt.Errorf("%s while %s: %w", op, m.state, ErrInvalidState)
}

func (m *Manager) activeExercise(op string, exerciseID uuid.UUID) (*models.WorkoutExercise, error) {
	if err := m.requireState(Active, op); err != nil {
		return nil, err
	}
	i := m.exerciseIndex(exerciseID)
	if i < 0 {
		return nil, fmt.Errorf("%s: exercise %s: %w", op, exerciseID, ErrNotFound)
	}
	return &m.draft.Exercises[i], nil
}

func (m *Manager) exerciseIndex(exerciseID uuid.UUID) int {
	for i := range m.draft.Exercises {
		if m.draft.Exercises[i].ExerciseID == exerciseID {
			return i
		}
	}
	return -1
}

// seededExercise builds an exercise entry with one empty set seeded from the
// previous performance, falling back to fallback when there is none.
func (m *Manager) seededExercise(ctx context.Context, exerciseID uuid.UUID, fallback setTarget) models.WorkoutExercise {
	target := fallback
	prev, err := m.entities.GetPreviousPerformance(ctx, exerciseID)
	switch {
	case err != nil && !errors.Is(err, ErrNotFound):
		m.log.Warn("previous performance lookup failed", "exercise", exerciseID, "error", err)
	case err == nil:
		if t, ok := targetFromPrevious(prev); ok {
			target = t
		}
	}
	return models.WorkoutExercise{
		ExerciseID: exerciseID,
		Sets:       []models.WorkoutSet{emptySet(m.newID(), exerciseID, 1, target)},
	}
}

func (m *Manager) touch() {
	m.draft.UpdatedAt = m.now()
}
