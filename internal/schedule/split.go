// Package schedule recommends which split day of a mesocycle to train next.
package schedule

import (
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// RecommendNextSplit returns the next split day to train in the mesocycle's
// current week. The rotation resumes after the furthest split day (in configured
// order) trained this week and returns the first untrained day from there,
// wrapping around. With nothing trained that is the first split day; once every
// split day was trained it cycles back to the first one. It returns nil only when
// the mesocycle has no split days.
func RecommendNextSplit(meso *models.Mesocycle, completed []models.Workout) *models.SplitDay {
	if meso == nil || len(meso.SplitDays) == 0 {
		return nil
	}

	trained := trainedThisWeek(meso, completed)
	n := len(meso.SplitDays)
	last := -1
	for i := range meso.SplitDays {
		if trained[meso.SplitDays[i].ID] {
			last = i
		}
	}
	for k := 1; k <= n; k++ {
		i := (last + k) % n
		if !trained[meso.SplitDays[i].ID] {
			return &meso.SplitDays[i]
		}
	}
	return &meso.SplitDays[0]
}

// Progress summarizes how much of the current week has been trained.
type Progress struct {
	Week         int  `json:"week"`
	Completed    int  `json:"completed"`
	Total        int  `json:"total"`
	WeekComplete bool `json:"week_complete"`
}

// WeekProgress counts the distinct split days trained in the current week.
// Callers use WeekComplete to prompt for advancing the week instead of relying
// on RecommendNextSplit cycling back to the first day.
func WeekProgress(meso *models.Mesocycle, completed []models.Workout) Progress {
	if meso == nil {
		return Progress{}
	}
	trained := trainedThisWeek(meso, completed)
	n := 0
	for _, d := range meso.SplitDays {
		if trained[d.ID] {
			n++
		}
	}
	total := len(meso.SplitDays)
	return Progress{
		Week:         meso.CurrentWeek,
		Completed:    n,
		Total:        total,
		WeekComplete: total > 0 && n == total,
	}
}

func trainedThisWeek(meso *models.Mesocycle, completed []models.Workout) map[uuid.UUID]bool {
	trained := make(map[uuid.UUID]bool)
	for _, w := range completed {
		if !w.Completed || w.Split == nil {
			continue
		}
		if w.Split.MesocycleID != meso.ID || w.Split.Week != meso.CurrentWeek {
			continue
		}
		trained[w.Split.SplitDayID] = true
	}
	return trained
}
