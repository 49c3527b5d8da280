// Package api exposes the service over HTTP. Handlers stay thin: decode,
// delegate to the repositories or the engine, map errors to status codes.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jacentio/roster/engine"
	"github.com/jacentio/roster/repository"
	"github.com/jacentio/roster/store"
)

// Server wires the HTTP routes to the engine and the repositories.
type Server struct {
	users         *repository.Users
	events        *repository.Events
	registrations *repository.Registrations
	engine        *engine.Engine
	logger        *slog.Logger
}

// NewServer builds a server over s. A nil logger defaults to slog.Default.
func NewServer(s store.Store, eng *engine.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		users:         repository.NewUsers(s, nil),
		events:        repository.NewEvents(s, nil),
		registrations: repository.NewRegistrations(s),
		engine:        eng,
		logger:        logger,
	}
}

// Router returns the route tree. The request timeout bounds the engine's
// retry loop; an expired deadline surfaces as 504.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", s.handleCreateUser)
		r.Get("/{userID}", s.handleGetUser)
		r.Get("/{userID}/registrations", s.handleListUserRegistrations)
	})

	r.Route("/events", func(r chi.Router) {
		r.Post("/", s.handleCreateEvent)
		r.Get("/", s.handleListEvents)
		r.Route("/{eventID}", func(r chi.Router) {
			r.Get("/", s.handleGetEvent)
			r.Put("/", s.handleUpdateEvent)
			r.Delete("/", s.handleDeleteEvent)
			r.Post("/registrations", s.handleRegister)
			r.Get("/registrations", s.handleListEventRegistrations)
			r.Delete("/registrations/{userID}", s.handleUnregister)
			r.Get("/waitlist", s.handleListWaitlist)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
