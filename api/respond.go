package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jacentio/roster/engine"
	"github.com/jacentio/roster/repository"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps domain errors onto HTTP statuses. Capacity refusal is a
// semantic 422, not a conflict: the request was understood and the answer
// is no. Retry exhaustion and deadline expiry map to 503/504 so clients
// can tell "try again" from "gave up waiting".
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrUserNotFound),
		errors.Is(err, engine.ErrEventNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrAlreadyRegistered),
		errors.Is(err, engine.ErrAlreadyWaiting),
		errors.Is(err, engine.ErrNotRegistered),
		errors.Is(err, repository.ErrUserExists),
		errors.Is(err, repository.ErrEventExists):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrCapacityExceeded),
		errors.Is(err, repository.ErrInvalidEvent):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrConcurrencyConflict):
		status = http.StatusServiceUnavailable
	case errors.Is(err, engine.ErrTimeout):
		status = http.StatusGatewayTimeout
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, status, errorBody{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func badRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
}
