package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/schedule"
	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/storage"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	sessions *session.Manager
	planner  *schedule.Planner
	log      *slog.Logger
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, sessions *session.Manager, planner *schedule.Planner, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		sessions: sessions,
		planner:  planner,
		log:      log,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Mount attaches an additional handler, e.g. the MCP endpoint, under pattern.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.Mount(pattern, h)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1/session", func(r chi.Router) {
		r.Get("/", s.handleGetSession)
		r.Patch("/", s.handlePatchSession)
		r.Post("/start", s.handleStartSession)
		r.Post("/finish", s.handleFinishSession)
		r.Post("/cancel", s.handleCancelSession)
		r.Post("/exercises", s.handleAddExercise)
		r.Patch("/exercises/{exerciseID}", s.handleUpdateExerciseNotes)
		r.Delete("/exercises/{exerciseID}", s.handleRemoveExercise)
		r.Post("/exercises/{exerciseID}/sets", s.handleAddSet)
		r.Patch("/exercises/{exerciseID}/sets/{setID}", s.handleUpdateSet)
		r.Delete("/exercises/{exerciseID}/sets/{setID}", s.handleRemoveSet)
	})

	s.router.Get("/api/v1/mesocycles/active/next-split", s.handleActiveNextSplit)
	s.router.Post("/api/v1/mesocycles", s.handleCreateMesocycle)
	s.router.Get("/api/v1/mesocycles/{id}", s.handleGetMesocycle)
	s.router.Get("/api/v1/mesocycles/{id}/next-split", s.handleNextSplit)
	s.router.Get("/api/v1/mesocycles/{id}/progress", s.handleProgress)
	s.router.Post("/api/v1/mesocycles/{id}/advance", s.handleAdvanceWeek)

	s.router.Get("/api/v1/exercises", s.handleListExercises)
	s.router.Post("/api/v1/exercises", s.handleCreateExercise)
	s.router.Get("/api/v1/exercises/{id}/previous", s.handlePreviousPerformance)

	s.router.Get("/api/v1/workouts", s.handleQueryWorkouts)
	s.router.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
}
