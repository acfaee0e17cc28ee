package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type nextSplitResponse struct {
	Mesocycle *models.Mesocycle `json:"mesocycle"`
	SplitDay  *models.SplitDay  `json:"split_day"`
}

func (s *Server) handleActiveNextSplit(w http.ResponseWriter, r *http.Request) {
	meso, day, err := s.planner.NextSplitForActive(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nextSplitResponse{Mesocycle: meso, SplitDay: day})
}

func (s *Server) handleNextSplit(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	meso, day, err := s.planner.NextSplit(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nextSplitResponse{Mesocycle: meso, SplitDay: day})
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	progress, err := s.planner.Progress(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleAdvanceWeek(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	meso, err := s.planner.AdvanceWeek(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meso)
}

func (s *Server) handleGetMesocycle(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	meso, err := s.db.GetMesocycle(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meso)
}

func (s *Server) handleCreateMesocycle(w http.ResponseWriter, r *http.Request) {
	var meso models.Mesocycle
	if err := json.NewDecoder(r.Body).Decode(&meso); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := validateMesocycle(&meso); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.db.InsertMesocycle(r.Context(), &meso); err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("mesocycle created", "mesocycle", meso.ID, "name", meso.Name, "split_days", len(meso.SplitDays))
	writeJSON(w, http.StatusCreated, meso)
}

func validateMesocycle(m *models.Mesocycle) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	switch m.Status {
	case "", models.MesocycleStatusPlanned, models.MesocycleStatusActive, models.MesocycleStatusCompleted:
	default:
		return fmt.Errorf("unknown status %q", m.Status)
	}
	if !m.EndDate.IsZero() && m.EndDate.Before(m.StartDate) {
		return fmt.Errorf("end_date is before start_date")
	}
	for i, d := range m.SplitDays {
		if d.Name == "" {
			return fmt.Errorf("split_days[%d]: name is required", i)
		}
		for j, pe := range d.Exercises {
			if pe.ExerciseID == uuid.Nil {
				return fmt.Errorf("split_days[%d].exercises[%d]: exercise_id is required", i, j)
			}
		}
	}
	return nil
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.db.ListExercises(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if exercises == nil {
		exercises = []models.Exercise{}
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	var ex models.Exercise
	if err := json.NewDecoder(r.Body).Decode(&ex); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if ex.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if err := s.db.InsertExercise(r.Context(), &ex); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ex)
}

func (s *Server) handlePreviousPerformance(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	prev, err := s.db.GetPreviousPerformance(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prev)
}

func (s *Server) handleQueryWorkouts(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	workouts, err := s.db.QueryWorkouts(r.Context(), start, end)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if workouts == nil {
		workouts = []models.Workout{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}
	workout, err := s.db.GetWorkout(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to status codes. Anything unrecognized is a 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrInvalidFeedback):
		status = http.StatusBadRequest
	default:
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func urlUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// decodeOptional decodes a JSON body into v, treating an empty body as "no input".
func decodeOptional(r *http.Request, v any) (bool, error) {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 30 days
		end = time.Now()
		start = end.AddDate(0, 0, -30)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end is before start")
	}
	return start, end, nil
}
