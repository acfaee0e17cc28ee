package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
)

// Store is the part of the entity store the planner reads and writes.
type Store interface {
	GetMesocycle(ctx context.Context, id uuid.UUID) (*models.Mesocycle, error)
	GetActiveMesocycle(ctx context.Context) (*models.Mesocycle, error)
	QueryCompletedWorkouts(ctx context.Context, filter storage.WorkoutFilter) ([]models.Workout, error)
	AdvanceMesocycleWeek(ctx context.Context, id uuid.UUID) (*models.Mesocycle, error)
}

// Planner runs RecommendNextSplit against stored data.
type Planner struct {
	store Store
	log   *slog.Logger
}

// NewPlanner creates a Planner backed by store.
func NewPlanner(store Store, log *slog.Logger) *Planner {
	return &Planner{store: store, log: log}
}

// NextSplit recommends the next split day of the given mesocycle.
// A nil split day with a nil error means the mesocycle has no split days.
func (p *Planner) NextSplit(ctx context.Context, mesocycleID uuid.UUID) (*models.Mesocycle, *models.SplitDay, error) {
	meso, completed, err := p.load(ctx, mesocycleID)
	if err != nil {
		return nil, nil, err
	}
	return meso, RecommendNextSplit(meso, completed), nil
}

// NextSplitForActive recommends the next split day of the active mesocycle.
// It returns all nils when no mesocycle is active.
func (p *Planner) NextSplitForActive(ctx context.Context) (*models.Mesocycle, *models.SplitDay, error) {
	meso, err := p.store.GetActiveMesocycle(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading active mesocycle: %w", err)
	}
	return p.NextSplit(ctx, meso.ID)
}

// Progress reports how many split days of the current week were trained.
func (p *Planner) Progress(ctx context.Context, mesocycleID uuid.UUID) (Progress, error) {
	meso, completed, err := p.load(ctx, mesocycleID)
	if err != nil {
		return Progress{}, err
	}
	return WeekProgress(meso, completed), nil
}

// AdvanceWeek moves the mesocycle to its next week.
func (p *Planner) AdvanceWeek(ctx context.Context, mesocycleID uuid.UUID) (*models.Mesocycle, error) {
	meso, err := p.store.AdvanceMesocycleWeek(ctx, mesocycleID)
	if err != nil {
		return nil, fmt.Errorf("advancing mesocycle %s: %w", mesocycleID, err)
	}
	p.log.Info("mesocycle advanced", "mesocycle", meso.ID, "week", meso.CurrentWeek)
	return meso, nil
}

func (p *Planner) load(ctx context.Context, mesocycleID uuid.UUID) (*models.Mesocycle, []models.Workout, error) {
	meso, err := p.store.GetMesocycle(ctx, mesocycleID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading mesocycle %s: %w", mesocycleID, err)
	}
	week := meso.CurrentWeek
	completed, err := p.store.QueryCompletedWorkouts(ctx, storage.WorkoutFilter{
		MesocycleID: &meso.ID,
		Week:        &week,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("querying completed workouts: %w", err)
	}
	return meso, completed, nil
}
