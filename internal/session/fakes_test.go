package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
)

// fakeEntities is an in-memory EntityStore with failure injection.
type fakeEntities struct {
	mu         sync.Mutex
	workouts   map[uuid.UUID]*models.Workout
	exercises  map[uuid.UUID]*models.Exercise
	mesocycles map[uuid.UUID]*models.Mesocycle
	previous   map[uuid.UUID]*models.PreviousPerformance

	commitErr error
	inserts   int
	updates   int
}

func newFakeEntities() *fakeEntities {
	return &fakeEntities{
		workouts:   make(map[uuid.UUID]*models.Workout),
		exercises:  make(map[uuid.UUID]*models.Exercise),
		mesocycles: make(map[uuid.UUID]*models.Mesocycle),
		previous:   make(map[uuid.UUID]*models.PreviousPerformance),
	}
}

func (f *fakeEntities) addExercise(name string) uuid.UUID {
	id := uuid.New()
	f.exercises[id] = &models.Exercise{ID: id, Name: name}
	return id
}

func (f *fakeEntities) InsertWorkout(_ context.Context, w *models.Workout) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commitErr != nil {
		return uuid.Nil, f.commitErr
	}
	id := uuid.New()
	f.workouts[id] = w.Clone()
	f.inserts++
	return id, nil
}

func (f *fakeEntities) UpdateWorkout(_ context.Context, id uuid.UUID, w *models.Workout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.commitErr != nil {
		return f.commitErr
	}
	if _, ok := f.workouts[id]; !ok {
		return fmt.Errorf("workout %s: %w", id, storage.ErrNotFound)
	}
	f.workouts[id] = w.Clone()
	f.updates++
	return nil
}

func (f *fakeEntities) GetExercise(_ context.Context, id uuid.UUID) (*models.Exercise, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.exercises[id]
	if !ok {
		return nil, fmt.Errorf("exercise %s: %w", id, storage.ErrNotFound)
	}
	return e, nil
}

func (f *fakeEntities) GetMesocycle(_ context.Context, id uuid.UUID) (*models.Mesocycle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.mesocycles[id]
	if !ok {
		return nil, fmt.Errorf("mesocycle %s: %w", id, storage.ErrNotFound)
	}
	return m, nil
}

func (f *fakeEntities) GetPreviousPerformance(_ context.Context, exerciseID uuid.UUID) (*models.PreviousPerformance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.previous[exerciseID], nil
}

// fakeDrafts stores the snapshot as JSON so recovery sees the same decoding as the real store.
type fakeDrafts struct {
	mu   sync.Mutex
	data []byte

	saveErr  error
	loadErr  error
	clearErr error
	saves    int
}

func (f *fakeDrafts) SaveDraft(_ context.Context, w *models.Workout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}
	f.data = data
	f.saves++
	return nil
}

func (f *fakeDrafts) LoadDraft(_ context.Context) (*models.Workout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.data == nil {
		return nil, nil
	}
	var w models.Workout
	if err := json.Unmarshal(f.data, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (f *fakeDrafts) ClearDraft(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return f.clearErr
	}
	f.data = nil
	return nil
}

func (f *fakeDrafts) empty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data == nil
}

// manualScheduler fires only when the test calls tick.
type manualScheduler struct {
	fn      func()
	running bool
	starts  int
	stops   int
}

func (s *manualScheduler) Start(fn func()) {
	s.fn = fn
	s.running = true
	s.starts++
}

func (s *manualScheduler) Stop() {
	s.running = false
	s.stops++
}

func (s *manualScheduler) tick() {
	if s.running {
		s.fn()
	}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	entities *fakeEntities
	drafts   *fakeDrafts
	sched    *manualScheduler
	clock    *fakeClock
	mgr      *Manager
}

func newHarness() *harness {
	h := &harness{
		entities: newFakeEntities(),
		drafts:   &fakeDrafts{},
		clock:    &fakeClock{t: time.Date(2026, 5, 4, 17, 0, 0, 0, time.UTC)},
	}
	h.reload()
	return h
}

// reload builds a new Manager over the same stores, as after an application restart.
func (h *harness) reload() {
	h.sched = &manualScheduler{}
	h.mgr = NewManager(context.Background(), h.entities, h.drafts, Options{
		Scheduler: h.sched,
		Now:       h.clock.Now,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}
