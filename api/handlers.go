package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jacentio/roster/entity"
	"github.com/jacentio/roster/repository"
)

// --- users ---

type createUserRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "name is required"})
		return
	}
	user, err := s.users.Create(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleListUserRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := s.registrations.ListForUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"registrations": regs})
}

// --- events ---

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var draft entity.Event
	if err := decodeJSON(r, &draft); err != nil {
		badRequest(w, err)
		return
	}
	event, err := s.events.Create(r.Context(), draft)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.events.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := s.events.Get(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var upd repository.EventUpdate
	if err := decodeJSON(r, &upd); err != nil {
		badRequest(w, err)
		return
	}
	event, err := s.events.Update(r.Context(), chi.URLParam(r, "eventID"), upd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.events.Delete(r.Context(), chi.URLParam(r, "eventID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- registrations ---

type registerRequest struct {
	UserID string `json:"userId"`
}

type registerResponse struct {
	Status        string                `json:"status"`
	Registration  *entity.Registration  `json:"registration,omitempty"`
	WaitlistEntry *entity.WaitlistEntry `json:"waitlistEntry,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "userId is required"})
		return
	}

	out, err := s.engine.Register(r.Context(), req.UserID, chi.URLParam(r, "eventID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := registerResponse{
		Registration:  out.Registration,
		WaitlistEntry: out.WaitlistEntry,
	}
	if out.WaitlistEntry != nil {
		resp.Status = "waitlisted"
	} else {
		resp.Status = "registered"
	}
	writeJSON(w, http.StatusCreated, resp)
}

type unregisterResponse struct {
	Status         string `json:"status"`
	PromotedUserID string `json:"promotedUserId,omitempty"`
}

func (s *Server) handleUnregister(w http.ResponseWriter, r *http.Request) {
	out, err := s.engine.Unregister(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "eventID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, unregisterResponse{
		Status:         "unregistered",
		PromotedUserID: out.PromotedUserID,
	})
}

func (s *Server) handleListEventRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := s.registrations.ListForEvent(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"registrations": regs})
}

func (s *Server) handleListWaitlist(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	if _, err := s.events.Get(r.Context(), eventID); err != nil {
		s.writeError(w, r, err)
		return
	}
	entries, err := s.engine.Waitlist().List(r.Context(), eventID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"waitlist": entries})
}
