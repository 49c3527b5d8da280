package engine

import "errors"

var (
	// ErrUserNotFound is returned when the user does not exist.
	ErrUserNotFound = errors.New("roster: user not found")

	// ErrEventNotFound is returned when the event does not exist.
	ErrEventNotFound = errors.New("roster: event not found")

	// ErrAlreadyRegistered is returned when the user already holds a
	// confirmed seat for the event.
	ErrAlreadyRegistered = errors.New("roster: user already registered for event")

	// ErrAlreadyWaiting is returned when the user is already on the
	// event's waitlist.
	ErrAlreadyWaiting = errors.New("roster: user already on waitlist for event")

	// ErrNotRegistered is returned when unregistering a user who holds no
	// seat for the event.
	ErrNotRegistered = errors.New("roster: user not registered for event")

	// ErrEventFull is returned by the capacity guard when no seats remain.
	// Callers decide the waitlist fallback.
	ErrEventFull = errors.New("roster: event is at capacity")

	// ErrCapacityExceeded is returned when the event is full and its
	// waitlist is disabled. A legitimate outcome, never retried.
	ErrCapacityExceeded = errors.New("roster: event is at capacity and waitlist is disabled")

	// ErrConcurrencyConflict is returned when an operation kept losing
	// optimistic-lock races until the retry budget ran out.
	ErrConcurrencyConflict = errors.New("roster: too many concurrent modifications, retries exhausted")

	// ErrTimeout is returned when the caller's deadline expired before the
	// operation committed. Storage holds whatever last committed; no
	// partial write is ever visible.
	ErrTimeout = errors.New("roster: operation deadline exceeded")
)

// errStaleSnapshot signals that a transaction lost an optimistic-lock race
// and the attempt should be recomputed from a fresh read. Internal to the
// retry loop; never surfaced to callers.
var errStaleSnapshot = errors.New("roster: event version changed since snapshot")
