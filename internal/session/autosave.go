package session

import (
	"sync"
	"time"

	"github.com/robfig/cron"
)

// DefaultAutosaveInterval is how often the draft is snapshotted while a session is active.
const DefaultAutosaveInterval = 30 * time.Second

// Scheduler runs a function periodically between Start and Stop.
// The Manager starts it when a session becomes active and stops it when the session ends.
type Scheduler interface {
	Start(fn func())
	Stop()
}

// CronScheduler is a Scheduler backed by a cron runner with a constant-delay schedule.
// Intervals are rounded down to whole seconds with a minimum of one second.
type CronScheduler struct {
	interval time.Duration

	mu sync.Mutex
	c  *cron.Cron
}

// NewCronScheduler returns a scheduler firing every interval.
func NewCronScheduler(interval time.Duration) *CronScheduler {
	return &CronScheduler{interval: interval}
}

// Start begins calling fn every interval, replacing any previous schedule.
func (s *CronScheduler) Start(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.c != nil {
		s.c.Stop()
	}
	c := cron.New()
	c.Schedule(cron.Every(s.interval), cron.FuncJob(fn))
	c.Start()
	s.c = c
}

// Stop halts the schedule. A run already in progress is not interrupted.
func (s *CronScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.c != nil {
		s.c.Stop()
		s.c = nil
	}
}
