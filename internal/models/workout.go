package models

import (
	"time"

	"github.com/google/uuid"
)

// Workout is a training session, either the in-progress draft or committed history.
type Workout struct {
	Identity        Identity          `json:"identity"`
	StartedAt       time.Time         `json:"started_at"`
	Exercises       []WorkoutExercise `json:"exercises"`
	Notes           string            `json:"notes"`
	Completed       bool              `json:"completed"`
	DurationMinutes int               `json:"duration_minutes"`
	Split           *SplitRef         `json:"split,omitempty"`
	Feedback        *WorkoutFeedback  `json:"feedback,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// SplitRef records the mesocycle week and split day a workout was started from.
type SplitRef struct {
	MesocycleID uuid.UUID `json:"mesocycle_id"`
	SplitDayID  uuid.UUID `json:"split_day_id"`
	Week        int       `json:"week"`
}

// WorkoutExercise is one exercise slot in a workout. Slice order is the exercise number.
type WorkoutExercise struct {
	ExerciseID uuid.UUID    `json:"exercise_id"`
	Sets       []WorkoutSet `json:"sets"`
	Notes      string       `json:"notes,omitempty"`
}

// WorkoutSet is a single logged set. SetNumber is 1-based and dense within its exercise.
type WorkoutSet struct {
	ID         uuid.UUID `json:"id"`
	ExerciseID uuid.UUID `json:"exercise_id"`
	SetNumber  int       `json:"set_number"`
	TargetReps int       `json:"target_reps"`
	ActualReps *int      `json:"actual_reps,omitempty"`
	Weight     float64   `json:"weight"`
	RIR        *float64  `json:"rir,omitempty"`
	Completed  bool      `json:"completed"`
}

// Recovery is the overall recovery rating a user gives after a workout.
type Recovery string

const (
	RecoveryPoor  Recovery = "poor"
	RecoveryFair  Recovery = "fair"
	RecoveryGood  Recovery = "good"
	RecoveryGreat Recovery = "great"
)

// Valid reports whether r is one of the known categories.
func (r Recovery) Valid() bool {
	switch r {
	case RecoveryPoor, RecoveryFair, RecoveryGood, RecoveryGreat:
		return true
	}
	return false
}

// WorkoutFeedback is attached to a workout when it is finished.
type WorkoutFeedback struct {
	Recovery Recovery         `json:"recovery,omitempty"`
	Muscles  []MuscleFeedback `json:"muscles,omitempty"`
	Notes    string           `json:"notes,omitempty"`
}

// MuscleFeedback rates pump and soreness for one muscle group on a 1-5 scale.
type MuscleFeedback struct {
	MuscleGroup string `json:"muscle_group"`
	Pump        int    `json:"pump"`
	Soreness    int    `json:"soreness"`
}

// PreviousPerformance is what the user did on an exercise the last time it was trained.
type PreviousPerformance struct {
	WorkoutID uuid.UUID    `json:"workout_id"`
	Date      time.Time    `json:"date"`
	Sets      []WorkoutSet `json:"sets"`
}

// Clone returns a deep copy of w.
func (w *Workout) Clone() *Workout {
	if w == nil {
		return nil
	}
	c := *w
	if w.Exercises != nil {
		c.Exercises = make([]WorkoutExercise, len(w.Exercises))
		for i, ex := range w.Exercises {
			c.Exercises[i] = ex.clone()
		}
	}
	if w.Split != nil {
		s := *w.Split
		c.Split = &s
	}
	if w.Feedback != nil {
		f := *w.Feedback
		f.Muscles = append([]MuscleFeedback(nil), w.Feedback.Muscles...)
		c.Feedback = &f
	}
	return &c
}

func (e WorkoutExercise) clone() WorkoutExercise {
	c := e
	if e.Sets != nil {
		c.Sets = make([]WorkoutSet, len(e.Sets))
		for i, s := range e.Sets {
			c.Sets[i] = s.Clone()
		}
	}
	return c
}

// Clone returns a copy of s that shares no pointers with it.
func (s WorkoutSet) Clone() WorkoutSet {
	c := s
	if s.ActualReps != nil {
		v := *s.ActualReps
		c.ActualReps = &v
	}
	if s.RIR != nil {
		v := *s.RIR
		c.RIR = &v
	}
	return c
}
