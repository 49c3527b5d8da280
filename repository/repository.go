// Package repository provides plain CRUD over users and events plus the
// read paths for registrations and waitlists. Seat mutations live in the
// engine package; nothing here ever changes an event's counter.
package repository

import (
	"errors"
	"time"
)

var (
	// ErrUserExists is returned when creating a user whose ID is taken.
	ErrUserExists = errors.New("roster: user already exists")

	// ErrEventExists is returned when creating an event whose ID is taken.
	ErrEventExists = errors.New("roster: event already exists")

	// ErrInvalidEvent is returned when an event fails validation. Wrapped
	// with the field that failed.
	ErrInvalidEvent = errors.New("roster: invalid event")
)

var validStatuses = map[string]bool{
	"active":    true,
	"inactive":  true,
	"cancelled": true,
	"completed": true,
}

// clock is the time source shared by the repositories, overridable in tests.
type clock func() time.Time
