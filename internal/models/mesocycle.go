package models

import (
	"time"

	"github.com/google/uuid"
)

// MesocycleStatus is the lifecycle state of a training block.
type MesocycleStatus string

const (
	MesocycleStatusPlanned   MesocycleStatus = "planned"
	MesocycleStatusActive    MesocycleStatus = "active"
	MesocycleStatusCompleted MesocycleStatus = "completed"
)

// Mesocycle is a multi-week training block rotating through its split days.
type Mesocycle struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	CurrentWeek int             `json:"current_week"`
	SplitType   string          `json:"split_type"`
	SplitDays   []SplitDay      `json:"split_days"`
	Deload      bool            `json:"deload"`
	Status      MesocycleStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// SplitDay is a named training-day template, e.g. "Push".
type SplitDay struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Exercises []PlannedExercise `json:"exercises"`
}

// PlannedExercise is an exercise a split day prescribes.
type PlannedExercise struct {
	ExerciseID   uuid.UUID `json:"exercise_id"`
	TargetSets   int       `json:"target_sets"`
	TargetReps   int       `json:"target_reps"`
	TargetWeight float64   `json:"target_weight"`
}

// SplitDay returns the split day with the given id.
func (m *Mesocycle) SplitDay(id uuid.UUID) (*SplitDay, bool) {
	for i := range m.SplitDays {
		if m.SplitDays[i].ID == id {
			return &m.SplitDays[i], true
		}
	}
	return nil, false
}

// Exercise is a movement in the user's catalogue.
type Exercise struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	MuscleGroup string    `json:"muscle_group"`
	Equipment   string    `json:"equipment"`
	CreatedAt   time.Time `json:"created_at"`
}
