package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/schedule"
	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/storage"
	"github.com/google/uuid"
)

// NextSplit is a split recommendation. Both fields are nil when there is nothing to recommend.
type NextSplit struct {
	Mesocycle *models.Mesocycle `json:"mesocycle"`
	SplitDay  *models.SplitDay  `json:"split_day"`
}

// SessionSnapshot is a read-only view of the session state.
type SessionSnapshot struct {
	State   session.State   `json:"state"`
	Cursor  int             `json:"cursor"`
	Workout *models.Workout `json:"workout"`
}

// DataSource abstracts the data layer for MCP tools. Local (in-process) and
// HTTPClient (the loopback REST API of a running server) satisfy this interface.
type DataSource interface {
	// NextSplit recommends for the given mesocycle, or the active one when id is uuid.Nil.
	NextSplit(ctx context.Context, mesocycleID uuid.UUID) (*NextSplit, error)
	WeekProgress(ctx context.Context, mesocycleID uuid.UUID) (*schedule.Progress, error)
	CurrentSession(ctx context.Context) (*SessionSnapshot, error)
	PreviousPerformance(ctx context.Context, exerciseID uuid.UUID) (*models.PreviousPerformance, error)
	QueryWorkouts(ctx context.Context, start, end time.Time) ([]models.Workout, error)
}

// Local serves MCP tools from the stores and session manager of this process.
type Local struct {
	db       *storage.DB
	planner  *schedule.Planner
	sessions *session.Manager
}

// Compile-time check: *Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

// NewLocal creates a DataSource backed by in-process components.
func NewLocal(db *storage.DB, planner *schedule.Planner, sessions *session.Manager) *Local {
	return &Local{db: db, planner: planner, sessions: sessions}
}

func (l *Local) NextSplit(ctx context.Context, mesocycleID uuid.UUID) (*NextSplit, error) {
	var (
		meso *models.Mesocycle
		day  *models.SplitDay
		err  error
	)
	if mesocycleID == uuid.Nil {
		meso, day, err = l.planner.NextSplitForActive(ctx)
	} else {
		meso, day, err = l.planner.NextSplit(ctx, mesocycleID)
	}
	if err != nil {
		return nil, err
	}
	return &NextSplit{Mesocycle: meso, SplitDay: day}, nil
}

func (l *Local) WeekProgress(ctx context.Context, mesocycleID uuid.UUID) (*schedule.Progress, error) {
	p, err := l.planner.Progress(ctx, mesocycleID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (l *Local) CurrentSession(_ context.Context) (*SessionSnapshot, error) {
	return &SessionSnapshot{
		State:   l.sessions.State(),
		Cursor:  l.sessions.Cursor(),
		Workout: l.sessions.Current(),
	}, nil
}

func (l *Local) PreviousPerformance(ctx context.Context, exerciseID uuid.UUID) (*models.PreviousPerformance, error) {
	return l.db.GetPreviousPerformance(ctx, exerciseID)
}

func (l *Local) QueryWorkouts(ctx context.Context, start, end time.Time) ([]models.Workout, error) {
	return l.db.QueryWorkouts(ctx, start, end)
}

// isNotFound reports lookups that should read as "nothing there" rather than a failure.
func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
