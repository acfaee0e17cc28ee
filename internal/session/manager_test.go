package session

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
)

var workoutCmp = []cmp.Option{cmp.AllowUnexported(models.Identity{}), cmpopts.EquateEmpty()}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func checkDense(t *testing.T, sets []models.WorkoutSet) {
	t.Helper()
	for i, s := range sets {
		if s.SetNumber != i+1 {
			t.Fatalf("set %d has number %d, want %d (sets: %+v)", i, s.SetNumber, i+1, sets)
		}
	}
}

// TestSetNumbersStayDense applies random add/remove sequences and checks the
// numbering after every step.
func TestSetNumbersStayDense(t *testing.T) {
	ctx := context.Background()
	for seed := int64(1); seed <= 20; seed++ {
		h := newHarness()
		row := h.entities.addExercise("Barbell Row")
		if err := h.mgr.Start(ctx); err != nil {
			t.Fatal(err)
		}
		if err := h.mgr.AddExercise(ctx, row); err != nil {
			t.Fatal(err)
		}

		rng := rand.New(rand.NewSource(seed))
		for step := 0; step < 40; step++ {
			sets := h.mgr.Current().Exercises[0].Sets
			if len(sets) == 0 || rng.Intn(2) == 0 {
				if _, err := h.mgr.AddSet(row); err != nil {
					t.Fatalf("seed %d step %d AddSet: %v", seed, step, err)
				}
			} else {
				victim := sets[rng.Intn(len(sets))].ID
				if err := h.mgr.RemoveSet(row, victim); err != nil {
					t.Fatalf("seed %d step %d RemoveSet: %v", seed, step, err)
				}
			}
			checkDense(t, h.mgr.Current().Exercises[0].Sets)
		}
	}
}

// TestAddSetCopiesForward verifies a new set inherits reps and weight from the last one.
func TestAddSetCopiesForward(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	curl := h.entities.addExercise("Curl")
	h.mgr.Start(ctx)
	h.mgr.AddExercise(ctx, curl)

	first := h.mgr.Current().Exercises[0].Sets[0]
	reps := 12
	weight := 17.5
	if err := h.mgr.UpdateSet(curl, first.ID, SetPatch{TargetReps: &reps, Weight: &weight}); err != nil {
		t.Fatalf("UpdateSet: %v", err)
	}

	set, err := h.mgr.AddSet(curl)
	if err != nil {
		t.Fatalf("AddSet: %v", err)
	}
	if set.SetNumber != 2 || set.TargetReps != 12 || set.Weight != 17.5 {
		t.Errorf("new set = %+v, want #2 with 12 reps at 17.5", set)
	}
	if set.ActualReps != nil || set.Completed {
		t.Errorf("new set should be empty, got %+v", set)
	}
}

// TestStartCancelLeavesStoresEmpty verifies a cancelled session never reaches
// the entity store and leaves no snapshot behind.
func TestStartCancelLeavesStoresEmpty(t *testing.T) {
	ctx := context.Background()
	h := newHarness()

	if err := h.mgr.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h.drafts.empty() {
		t.Fatal("no snapshot written on start")
	}
	if err := h.mgr.Cancel(ctx); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	if !h.drafts.empty() {
		t.Error("draft slot not cleared")
	}
	if len(h.entities.workouts) != 0 {
		t.Errorf("entity store has %d workouts, want 0", len(h.entities.workouts))
	}
	if h.mgr.State() != Inactive || h.mgr.Current() != nil {
		t.Errorf("state = %s, current = %v; want inactive, nil", h.mgr.State(), h.mgr.Current())
	}
	if h.sched.running {
		t.Error("autosave still running")
	}
}

// TestReloadRecoversLastSnapshot simulates a restart: the recovered draft equals
// the draft at the last autosave tick, without changes made afterwards.
func TestReloadRecoversLastSnapshot(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	squat := h.entities.addExercise("Squat")

	h.mgr.Start(ctx)
	h.mgr.AddExercise(ctx, squat)
	set := h.mgr.Current().Exercises[0].Sets[0]
	h.mgr.UpdateSet(squat, set.ID, SetPatch{ActualReps: intPtr(5), Completed: boolPtr(true)})
	h.mgr.UpdateWorkoutNotes("heavy day")

	h.sched.tick()
	want := h.mgr.Current()

	// Lost: made after the last tick.
	h.mgr.AddSet(squat)
	h.mgr.UpdateWorkoutNotes("changed")

	h.reload()

	if h.mgr.State() != Active {
		t.Fatalf("state after reload = %s, want active", h.mgr.State())
	}
	if diff := cmp.Diff(want, h.mgr.Current(), workoutCmp...); diff != "" {
		t.Errorf("recovered draft mismatch (-want +got):\n%s", diff)
	}
	if !h.sched.running {
		t.Error("autosave not restarted after recovery")
	}
}

// TestReloadWithEmptySlot verifies the manager starts inactive without a snapshot.
func TestReloadWithEmptySlot(t *testing.T) {
	h := newHarness()
	if h.mgr.State() != Inactive {
		t.Errorf("state = %s, want inactive", h.mgr.State())
	}
	if h.sched.starts != 0 {
		t.Error("autosave started without a session")
	}
}

// TestFinishComputesDuration verifies completion fields, the insert path and cleanup.
func TestFinishComputesDuration(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	press := h.entities.addExercise("Overhead Press")

	h.mgr.Start(ctx)
	h.mgr.AddExercise(ctx, press)
	h.clock.advance(125 * time.Second)

	done, err := h.mgr.Finish(ctx, nil)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if !done.Completed || done.DurationMinutes != 2 {
		t.Errorf("completed = %v, duration = %d; want true, 2", done.Completed, done.DurationMinutes)
	}
	id, ok := done.Identity.ID()
	if !ok {
		t.Fatal("identity still draft after commit")
	}
	stored, ok := h.entities.workouts[id]
	if !ok || h.entities.inserts != 1 {
		t.Fatalf("workout not inserted (inserts = %d)", h.entities.inserts)
	}
	if !stored.Completed || stored.DurationMinutes != 2 {
		t.Errorf("stored = %+v", stored)
	}
	if !h.drafts.empty() || h.mgr.State() != Inactive || h.sched.running {
		t.Error("session not fully closed after finish")
	}
}

// TestDurationMinutes covers rounding and the non-negative clamp.
func TestDurationMinutes(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 0},
		{29 * time.Second, 0},
		{30 * time.Second, 1},
		{125 * time.Second, 2},
		{90 * time.Minute, 90},
		{-5 * time.Minute, 0},
	}
	for _, tt := range tests {
		if got := durationMinutes(start, start.Add(tt.elapsed)); got != tt.want {
			t.Errorf("durationMinutes(%s) = %d, want %d", tt.elapsed, got, tt.want)
		}
	}
}

// TestStartFromSplit is the Push day scenario: two planned exercises give two
// entries with one set each, seeded from history or the plan.
func TestStartFromSplit(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	bench := h.entities.addExercise("Bench Press")
	shoulder := h.entities.addExercise("Shoulder Press")

	push := models.SplitDay{ID: uuid.New(), Name: "Push", Exercises: []models.PlannedExercise{
		{ExerciseID: bench, TargetSets: 3, TargetReps: 8, TargetWeight: 70},
		{ExerciseID: shoulder, TargetSets: 3, TargetReps: 10, TargetWeight: 30},
	}}
	meso := &models.Mesocycle{ID: uuid.New(), Name: "Block 1", CurrentWeek: 2,
		SplitDays: []models.SplitDay{push, {ID: uuid.New(), Name: "Pull"}}}
	h.entities.mesocycles[meso.ID] = meso
	h.entities.previous[bench] = &models.PreviousPerformance{Sets: []models.WorkoutSet{
		{SetNumber: 1, TargetReps: 8, ActualReps: intPtr(9), Weight: 72.5},
		{SetNumber: 2, TargetReps: 8, Weight: 72.5},
	}}

	if err := h.mgr.StartFromSplit(ctx, meso.ID, push.ID); err != nil {
		t.Fatalf("StartFromSplit: %v", err)
	}
	w := h.mgr.Current()
	if len(w.Exercises) != 2 {
		t.Fatalf("exercises = %d, want 2", len(w.Exercises))
	}
	for _, ex := range w.Exercises {
		if len(ex.Sets) != 1 || ex.Sets[0].SetNumber != 1 {
			t.Errorf("exercise %s sets = %+v, want exactly set #1", ex.ExerciseID, ex.Sets)
		}
	}
	if s := w.Exercises[0].Sets[0]; s.TargetReps != 9 || s.Weight != 72.5 {
		t.Errorf("bench seeded %d x %.1f, want 9 x 72.5 from history", s.TargetReps, s.Weight)
	}
	if s := w.Exercises[1].Sets[0]; s.TargetReps != 10 || s.Weight != 30 {
		t.Errorf("shoulder seeded %d x %.1f, want planned 10 x 30", s.TargetReps, s.Weight)
	}
	wantRef := &models.SplitRef{MesocycleID: meso.ID, SplitDayID: push.ID, Week: 2}
	if diff := cmp.Diff(wantRef, w.Split); diff != "" {
		t.Errorf("split ref (-want +got):\n%s", diff)
	}
	if h.drafts.empty() {
		t.Error("no snapshot written on start from split")
	}
}

// TestStartFromSplitLookupFailure verifies unknown ids leave the manager inactive
// and untouched so the caller can fall back to Start.
func TestStartFromSplitLookupFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	meso := &models.Mesocycle{ID: uuid.New(), SplitDays: []models.SplitDay{{ID: uuid.New(), Name: "Full body"}}}
	h.entities.mesocycles[meso.ID] = meso

	tests := []struct {
		name        string
		meso, split uuid.UUID
	}{
		{"unknown mesocycle", uuid.New(), meso.SplitDays[0].ID},
		{"unknown split day", meso.ID, uuid.New()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.mgr.StartFromSplit(ctx, tt.meso, tt.split)
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("err = %v, want ErrNotFound", err)
			}
			if h.mgr.State() != Inactive || !h.drafts.empty() || h.sched.starts != 0 {
				t.Error("failed lookup changed session state")
			}
		})
	}

	if err := h.mgr.Start(ctx); err != nil {
		t.Errorf("fallback Start: %v", err)
	}
}

// TestAddExerciseUnknown verifies a lookup failure leaves the draft unchanged.
func TestAddExerciseUnknown(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.mgr.Start(ctx)
	before := h.mgr.Current()

	if err := h.mgr.AddExercise(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if diff := cmp.Diff(before, h.mgr.Current(), workoutCmp...); diff != "" {
		t.Errorf("draft changed (-before +after):\n%s", diff)
	}
}

// TestAddExerciseAllowsDuplicates verifies duplicates are appended and defaults apply without history.
func TestAddExerciseAllowsDuplicates(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	dip := h.entities.addExercise("Dip")
	h.mgr.Start(ctx)

	for i := 0; i < 2; i++ {
		if err := h.mgr.AddExercise(ctx, dip); err != nil {
			t.Fatalf("AddExercise #%d: %v", i+1, err)
		}
	}
	w := h.mgr.Current()
	if len(w.Exercises) != 2 {
		t.Fatalf("exercises = %d, want 2", len(w.Exercises))
	}
	if s := w.Exercises[0].Sets[0]; s.TargetReps != DefaultTargetReps || s.Weight != 0 {
		t.Errorf("seed = %+v, want default reps and no weight", s)
	}
}

// TestRemoveExercise verifies removal, idempotence and cursor clamping.
func TestRemoveExercise(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	a := h.entities.addExercise("A")
	b := h.entities.addExercise("B")
	h.mgr.Start(ctx)
	h.mgr.AddExercise(ctx, a)
	h.mgr.AddExercise(ctx, b)
	if err := h.mgr.SetCursor(1); err != nil {
		t.Fatalf("SetCursor: %v", err)
	}

	if err := h.mgr.RemoveExercise(b); err != nil {
		t.Fatalf("RemoveExercise: %v", err)
	}
	if err := h.mgr.RemoveExercise(b); err != nil {
		t.Fatalf("second RemoveExercise: %v", err)
	}
	w := h.mgr.Current()
	if len(w.Exercises) != 1 || w.Exercises[0].ExerciseID != a {
		t.Errorf("exercises = %+v, want only A", w.Exercises)
	}
	if c := h.mgr.Cursor(); c != 0 {
		t.Errorf("cursor = %d, want 0", c)
	}
	if err := h.mgr.SetCursor(3); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetCursor out of range = %v, want ErrNotFound", err)
	}
}

// TestSetOperationsRequireExercise verifies set operations on a missing exercise fail
// while an unknown set id is a no-op for removal.
func TestSetOperationsRequireExercise(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	lunge := h.entities.addExercise("Lunge")
	h.mgr.Start(ctx)
	h.mgr.AddExercise(ctx, lunge)

	if _, err := h.mgr.AddSet(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddSet unknown exercise = %v, want ErrNotFound", err)
	}
	if err := h.mgr.RemoveSet(uuid.New(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveSet unknown exercise = %v, want ErrNotFound", err)
	}
	if err := h.mgr.RemoveSet(lunge, uuid.New()); err != nil {
		t.Errorf("RemoveSet unknown set = %v, want nil", err)
	}
	if err := h.mgr.UpdateSet(lunge, uuid.New(), SetPatch{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateSet unknown set = %v, want ErrNotFound", err)
	}
}

// TestNotes verifies the shallow notes updates.
func TestNotes(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	pull := h.entities.addExercise("Pull-up")
	h.mgr.Start(ctx)
	h.mgr.AddExercise(ctx, pull)

	if err := h.mgr.UpdateExerciseNotes(pull, "wide grip"); err != nil {
		t.Fatalf("UpdateExerciseNotes: %v", err)
	}
	if err := h.mgr.UpdateWorkoutNotes("gym was busy"); err != nil {
		t.Fatalf("UpdateWorkoutNotes: %v", err)
	}
	w := h.mgr.Current()
	if w.Exercises[0].Notes != "wide grip" || w.Notes != "gym was busy" {
		t.Errorf("notes = %q / %q", w.Exercises[0].Notes, w.Notes)
	}
}

// TestFinishCommitFailureKeepsDraft verifies a failed commit keeps the session
// and its snapshot so finishing can be retried.
func TestFinishCommitFailureKeepsDraft(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	deadlift := h.entities.addExercise("Deadlift")
	h.mgr.Start(ctx)
	h.mgr.AddExercise(ctx, deadlift)
	h.sched.tick()
	before := h.mgr.Current()

	h.entities.commitErr = errors.New("disk full")
	if _, err := h.mgr.Finish(ctx, nil); err == nil {
		t.Fatal("Finish succeeded, want commit error")
	}
	if h.mgr.State() != Active || !h.sched.running {
		t.Fatal("session left active state after failed commit")
	}
	if diff := cmp.Diff(before, h.mgr.Current(), workoutCmp...); diff != "" {
		t.Errorf("draft changed by failed commit (-before +after):\n%s", diff)
	}
	snap, _ := h.drafts.LoadDraft(ctx)
	if snap == nil || snap.Completed {
		t.Errorf("snapshot = %+v, want the uncompleted draft", snap)
	}

	h.entities.commitErr = nil
	if _, err := h.mgr.Finish(ctx, nil); err != nil {
		t.Fatalf("retry Finish: %v", err)
	}
	if h.entities.inserts != 1 {
		t.Errorf("inserts = %d, want 1", h.entities.inserts)
	}
}

// TestAutosaveFailureSwallowed verifies failing snapshot writes never interrupt the session.
func TestAutosaveFailureSwallowed(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.drafts.saveErr = errors.New("quota exceeded")
	hinge := h.entities.addExercise("Hip Hinge")

	if err := h.mgr.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	h.sched.tick()
	h.sched.tick()
	if err := h.mgr.AddExercise(ctx, hinge); err != nil {
		t.Fatalf("AddExercise: %v", err)
	}

	h.drafts.saveErr = nil
	h.sched.tick()
	if h.drafts.saves != 1 {
		t.Errorf("saves = %d, want the next tick to retry", h.drafts.saves)
	}
	if _, err := h.mgr.Finish(ctx, nil); err != nil {
		t.Errorf("Finish: %v", err)
	}
}

// TestTickAfterFinishWritesNothing verifies a late autosave cannot resurrect the snapshot.
func TestTickAfterFinishWritesNothing(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.mgr.Start(ctx)
	late := h.sched.fn

	if err := h.mgr.Cancel(ctx); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	late()
	if !h.drafts.empty() {
		t.Error("late autosave wrote a snapshot after cancel")
	}
}

// TestRecoveryDiscardsCompletedSnapshot verifies a stale post-commit snapshot is not adopted.
func TestRecoveryDiscardsCompletedSnapshot(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.drafts.SaveDraft(ctx, &models.Workout{
		Identity:  models.PersistedIdentity(uuid.New()),
		StartedAt: h.clock.Now(),
		Completed: true,
	})

	h.reload()
	if h.mgr.State() != Inactive {
		t.Errorf("state = %s, want inactive", h.mgr.State())
	}
	if !h.drafts.empty() {
		t.Error("stale snapshot not cleared")
	}
}

// TestClearFailureAfterCommit verifies the commit still succeeds and the leftover
// snapshot is recognized as committed on the next start.
func TestClearFailureAfterCommit(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.mgr.Start(ctx)
	h.drafts.clearErr = errors.New("locked")

	if _, err := h.mgr.Finish(ctx, nil); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if h.mgr.State() != Inactive {
		t.Fatalf("state = %s, want inactive", h.mgr.State())
	}

	h.drafts.clearErr = nil
	h.reload()
	if h.mgr.State() != Inactive {
		t.Errorf("committed workout recovered as active session")
	}
	if h.entities.inserts != 1 {
		t.Errorf("inserts = %d, want 1", h.entities.inserts)
	}
}

// TestRecoveryLoadFailure verifies an unreadable slot starts the manager inactive.
func TestRecoveryLoadFailure(t *testing.T) {
	h := newHarness()
	h.drafts.loadErr = errors.New("corrupt")
	h.reload()
	if h.mgr.State() != Inactive {
		t.Errorf("state = %s, want inactive", h.mgr.State())
	}
	if err := h.mgr.Start(context.Background()); err != nil {
		t.Errorf("Start after failed recovery: %v", err)
	}
}

// TestFinishUpdatesPersistedDraft verifies a draft that already has a stored id is updated.
func TestFinishUpdatesPersistedDraft(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	id := uuid.New()
	h.entities.workouts[id] = &models.Workout{}
	h.drafts.SaveDraft(ctx, &models.Workout{
		Identity:  models.PersistedIdentity(id),
		StartedAt: h.clock.Now(),
	})
	h.reload()

	done, err := h.mgr.Finish(ctx, nil)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if h.entities.updates != 1 || h.entities.inserts != 0 {
		t.Errorf("updates = %d, inserts = %d; want 1, 0", h.entities.updates, h.entities.inserts)
	}
	if got, _ := done.Identity.ID(); got != id {
		t.Errorf("identity = %s, want %s", got, id)
	}
}

// TestFinishFeedback verifies feedback is attached and invalid ratings are rejected before commit.
func TestFinishFeedback(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		fb      *models.WorkoutFeedback
		wantErr bool
	}{
		{"none", nil, false},
		{"full", &models.WorkoutFeedback{Recovery: models.RecoveryGreat,
			Muscles: []models.MuscleFeedback{{MuscleGroup: "chest", Pump: 5, Soreness: 1}}}, false},
		{"unknown recovery", &models.WorkoutFeedback{Recovery: "meh"}, true},
		{"pump too high", &models.WorkoutFeedback{Muscles: []models.MuscleFeedback{{MuscleGroup: "back", Pump: 6, Soreness: 3}}}, true},
		{"soreness zero", &models.WorkoutFeedback{Muscles: []models.MuscleFeedback{{MuscleGroup: "back", Pump: 3, Soreness: 0}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.mgr.Start(ctx)
			done, err := h.mgr.Finish(ctx, tt.fb)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFeedback) {
					t.Fatalf("err = %v, want ErrInvalidFeedback", err)
				}
				if h.mgr.State() != Active || h.entities.inserts != 0 {
					t.Error("rejected feedback still committed")
				}
				return
			}
			if err != nil {
				t.Fatalf("Finish: %v", err)
			}
			if diff := cmp.Diff(tt.fb, done.Feedback); diff != "" {
				t.Errorf("feedback (-want +got):\n%s", diff)
			}
		})
	}
}

// TestInvalidStateOperations verifies every operation is rejected from the wrong state.
func TestInvalidStateOperations(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	id := uuid.New()

	inactive := map[string]func() error{
		"add exercise":    func() error { return h.mgr.AddExercise(ctx, id) },
		"remove exercise": func() error { return h.mgr.RemoveExercise(id) },
		"add set":         func() error { _, err := h.mgr.AddSet(id); return err },
		"remove set":      func() error { return h.mgr.RemoveSet(id, id) },
		"update set":      func() error { return h.mgr.UpdateSet(id, id, SetPatch{}) },
		"exercise notes":  func() error { return h.mgr.UpdateExerciseNotes(id, "x") },
		"workout notes":   func() error { return h.mgr.UpdateWorkoutNotes("x") },
		"finish":          func() error { _, err := h.mgr.Finish(ctx, nil); return err },
		"cancel":          func() error { return h.mgr.Cancel(ctx) },
		"set cursor":      func() error { return h.mgr.SetCursor(0) },
	}
	for name, op := range inactive {
		if err := op(); !errors.Is(err, ErrInvalidState) {
			t.Errorf("%s while inactive = %v, want ErrInvalidState", name, err)
		}
	}
	if !h.drafts.empty() || len(h.entities.workouts) != 0 {
		t.Error("rejected operations wrote to a store")
	}

	h.mgr.Start(ctx)
	before := h.mgr.Current()
	if err := h.mgr.Start(ctx); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Start while active = %v, want ErrInvalidState", err)
	}
	if err := h.mgr.StartFromSplit(ctx, id, id); !errors.Is(err, ErrInvalidState) {
		t.Errorf("StartFromSplit while active = %v, want ErrInvalidState", err)
	}
	if diff := cmp.Diff(before, h.mgr.Current(), workoutCmp...); diff != "" {
		t.Errorf("draft changed by rejected start (-before +after):\n%s", diff)
	}
}

// TestCloseKeepsSnapshot verifies shutdown stops autosave but leaves the session recoverable.
func TestCloseKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	h := newHarness()
	h.mgr.Start(ctx)
	h.mgr.Close()

	if h.sched.running {
		t.Error("autosave still running after Close")
	}
	h.reload()
	if h.mgr.State() != Active {
		t.Errorf("state after reload = %s, want active", h.mgr.State())
	}
}
