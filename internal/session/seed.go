package session

import (
	"fmt"
	"math"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// DefaultTargetReps seeds sets of exercises without history or a planned target.
const DefaultTargetReps = 10

// setTarget is what a new empty set is seeded with.
type setTarget struct {
	reps   int
	weight float64
}

// targetFromPrevious takes reps and weight from the first set of the previous
// performance, preferring what was actually done over what was planned.
func targetFromPrevious(prev *models.PreviousPerformance) (setTarget, bool) {
	if prev == nil || len(prev.Sets) == 0 {
		return setTarget{}, false
	}
	first := prev.Sets[0]
	t := setTarget{reps: first.TargetReps, weight: first.Weight}
	if first.ActualReps != nil {
		t.reps = *first.ActualReps
	}
	return t, true
}

// targetFromLast copies reps and weight forward from the last set of an exercise.
func targetFromLast(sets []models.WorkoutSet) setTarget {
	if len(sets) == 0 {
		return setTarget{reps: DefaultTargetReps}
	}
	last := sets[len(sets)-1]
	return setTarget{reps: last.TargetReps, weight: last.Weight}
}

func emptySet(id, exerciseID uuid.UUID, number int, t setTarget) models.WorkoutSet {
	return models.WorkoutSet{
		ID:         id,
		ExerciseID: exerciseID,
		SetNumber:  number,
		TargetReps: t.reps,
		Weight:     t.weight,
	}
}

// renumber restores the dense 1..n set numbering.
func renumber(sets []models.WorkoutSet) {
	for i := range sets {
		sets[i].SetNumber = i + 1
	}
}

// durationMinutes is the elapsed time rounded to whole minutes, never negative.
func durationMinutes(start, end time.Time) int {
	elapsed := end.Sub(start)
	if elapsed < 0 {
		return 0
	}
	return int(math.Round(elapsed.Minutes()))
}

func validateFeedback(fb *models.WorkoutFeedback) error {
	if fb == nil {
		return nil
	}
	if fb.Recovery != "" && !fb.Recovery.Valid() {
		return fmt.Errorf("unknown recovery %q: %w", fb.Recovery, ErrInvalidFeedback)
	}
	for _, mf := range fb.Muscles {
		if mf.MuscleGroup == "" {
			return fmt.Errorf("muscle group is required: %w", ErrInvalidFeedback)
		}
		if mf.Pump < 1 || mf.Pump > 5 {
			return fmt.Errorf("%s pump %d not in 1-5: %w", mf.MuscleGroup, mf.Pump, ErrInvalidFeedback)
		}
		if mf.Soreness < 1 || mf.Soreness > 5 {
			return fmt.Errorf("%s soreness %d not in 1-5: %w", mf.MuscleGroup, mf.Soreness, ErrInvalidFeedback)
		}
	}
	return nil
}
