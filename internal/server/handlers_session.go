package server

import (
	"net/http"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/google/uuid"
)

type sessionView struct {
	State   session.State   `json:"state"`
	Cursor  int             `json:"cursor"`
	Workout *models.Workout `json:"workout"`
}

func (s *Server) view() sessionView {
	return sessionView{
		State:   s.sessions.State(),
		Cursor:  s.sessions.Cursor(),
		Workout: s.sessions.Current(),
	}
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.view())
}

type startRequest struct {
	MesocycleID uuid.UUID `json:"mesocycle_id"`
	SplitDayID  uuid.UUID `json:"split_day_id"`
}

// handleStartSession starts from a split day when both ids are given, otherwise unscheduled.
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if _, err := decodeOptional(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	var err error
	if req.MesocycleID != uuid.Nil && req.SplitDayID != uuid.Nil {
		err = s.sessions.StartFromSplit(r.Context(), req.MesocycleID, req.SplitDayID)
	} else {
		err = s.sessions.Start(r.Context())
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.view())
}

type patchSessionRequest struct {
	Notes  *string `json:"notes"`
	Cursor *int    `json:"cursor"`
}

func (s *Server) handlePatchSession(w http.ResponseWriter, r *http.Request) {
	var req patchSessionRequest
	if _, err := decodeOptional(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Notes != nil {
		if err := s.sessions.UpdateWorkoutNotes(*req.Notes); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if req.Cursor != nil {
		if err := s.sessions.SetCursor(*req.Cursor); err != nil {
			s.writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	var feedback models.WorkoutFeedback
	hasFeedback, err := decodeOptional(r, &feedback)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if cur := s.sessions.Current(); cur != nil && len(cur.Exercises) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cannot finish a workout without exercises"})
		return
	}

	var fb *models.WorkoutFeedback
	if hasFeedback {
		fb = &feedback
	}
	done, err := s.sessions.Finish(r.Context(), fb)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, done)
}

func (s *Server) handleCancelSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Cancel(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view())
}

type addExerciseRequest struct {
	ExerciseID uuid.UUID `json:"exercise_id"`
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var req addExerciseRequest
	ok, err := decodeOptional(r, &req)
	if err != nil || !ok || req.ExerciseID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise_id is required"})
		return
	}
	if err := s.sessions.AddExercise(r.Context(), req.ExerciseID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.view())
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	exerciseID, ok := urlUUID(w, r, "exerciseID")
	if !ok {
		return
	}
	if err := s.sessions.RemoveExercise(exerciseID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view())
}

type exerciseNotesRequest struct {
	Notes string `json:"notes"`
}

func (s *Server) handleUpdateExerciseNotes(w http.ResponseWriter, r *http.Request) {
	exerciseID, ok := urlUUID(w, r, "exerciseID")
	if !ok {
		return
	}
	var req exerciseNotesRequest
	if _, err := decodeOptional(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.sessions.UpdateExerciseNotes(exerciseID, req.Notes); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	exerciseID, ok := urlUUID(w, r, "exerciseID")
	if !ok {
		return
	}
	set, err := s.sessions.AddSet(exerciseID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	exerciseID, ok := urlUUID(w, r, "exerciseID")
	if !ok {
		return
	}
	setID, ok := urlUUID(w, r, "setID")
	if !ok {
		return
	}
	var patch session.SetPatch
	if _, err := decodeOptional(r, &patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.sessions.UpdateSet(exerciseID, setID, patch); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view())
}

func (s *Server) handleRemoveSet(w http.ResponseWriter, r *http.Request) {
	exerciseID, ok := urlUUID(w, r, "exerciseID")
	if !ok {
		return
	}
	setID, ok := urlUUID(w, r, "setID")
	if !ok {
		return
	}
	if err := s.sessions.RemoveSet(exerciseID, setID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view())
}
