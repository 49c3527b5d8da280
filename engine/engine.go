// Package engine implements the registration and waitlist capacity engine.
//
// The engine is the sole mutator of registration state. Every mutation is a
// single atomic transaction guarded by the event's optimistic-lock version,
// so the capacity counter and the confirmed-registration set always change
// together: under arbitrary concurrency, confirmed registrations never
// exceed capacity and a (user, event) pair is never simultaneously
// registered and waitlisted.
//
// There are no in-process locks around event state. All serialization of
// conflicting operations is pushed to the store's conditional-write and
// transaction mechanism, so the guarantees hold across process instances.
// Writers that lose a version race recompute from a fresh read under the
// bounded backoff of [RetryScheduler].
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jacentio/roster/entity"
	"github.com/jacentio/roster/store"
)

// Engine orchestrates the capacity guard and the waitlist queue into
// atomic, retryable register/unregister operations.
type Engine struct {
	store    store.Store
	waitlist *WaitlistQueue
	retry    RetryScheduler
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithClock sets the engine's time source. Used by tests to force
// deterministic waitlist ordering.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRetry overrides the default retry schedule.
func WithRetry(r RetryScheduler) Option {
	return func(e *Engine) { e.retry = r }
}

// New creates an Engine over the given store.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store: s,
		retry: DefaultRetry(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.waitlist = NewWaitlistQueue(s, e.now)
	return e
}

// Waitlist returns the engine's waitlist queue for read paths.
func (e *Engine) Waitlist() *WaitlistQueue {
	return e.waitlist
}

// RegisterOutcome reports how a register call concluded: exactly one of
// Registration and WaitlistEntry is set.
type RegisterOutcome struct {
	Registration  *entity.Registration  `json:"registration,omitempty"`
	WaitlistEntry *entity.WaitlistEntry `json:"waitlistEntry,omitempty"`
}

// UnregisterOutcome reports whether vacating the seat promoted a waiting
// user. PromotedUserID is empty when the waitlist was empty.
type UnregisterOutcome struct {
	PromotedUserID string               `json:"promotedUserId,omitempty"`
	Promoted       *entity.Registration `json:"promoted,omitempty"`
}

// Register registers the user for the event, or enqueues them on the
// waitlist when the event is full and waitlisting is enabled.
func (e *Engine) Register(ctx context.Context, userID, eventID string) (*RegisterOutcome, error) {
	var outcome *RegisterOutcome
	err := e.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		outcome, err = e.registerOnce(ctx, userID, eventID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// registerOnce runs one attempt against a fresh snapshot.
func (e *Engine) registerOnce(ctx context.Context, userID, eventID string) (*RegisterOutcome, error) {
	if err := e.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	ev, err := e.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	// Mutual exclusion: the pair may hold at most one of a registration
	// and a waitlist entry, checked before any mutation.
	regKey := entity.Registration{UserID: userID, EventID: eventID}.Key()
	if _, err := e.store.Get(ctx, regKey); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check registration: %w", err)
	}
	if waiting, err := e.waitlist.Entry(ctx, eventID, userID); err != nil {
		return nil, err
	} else if waiting != nil {
		return nil, ErrAlreadyWaiting
	}

	res, err := TryReserve(ev)
	if errors.Is(err, ErrEventFull) {
		if !ev.WaitlistEnabled {
			return nil, ErrCapacityExceeded
		}
		entry, err := e.waitlist.Enqueue(ctx, eventID, userID)
		if err != nil {
			return nil, err
		}
		e.logger.Info("user waitlisted",
			"userID", userID,
			"eventID", eventID,
			"addedAt", entry.AddedAt,
		)
		return &RegisterOutcome{WaitlistEntry: &entry}, nil
	}
	if err != nil {
		return nil, err
	}

	reg := entity.Registration{
		RegistrationID: uuid.New().String(),
		UserID:         userID,
		EventID:        eventID,
		RegisteredAt:   e.now().UTC().Format(entity.TimeLayout),
		Status:         entity.StatusConfirmed,
	}
	regItem, err := reg.Item()
	if err != nil {
		return nil, err
	}

	// One transaction: consume the seat and create the registration, both
	// guarded by the event version read above.
	err = e.store.TransactWrite(ctx, []store.Write{
		res.Write,
		store.PutWrite(regItem, store.IfNotExists()),
	})
	if err != nil {
		var txErr *store.TransactionCanceledError
		if errors.As(err, &txErr) {
			if txErr.ConditionFailedAt(1) {
				return nil, ErrAlreadyRegistered
			}
			if txErr.ConditionFailedAt(0) {
				return nil, errStaleSnapshot
			}
		}
		return nil, fmt.Errorf("commit registration: %w", err)
	}

	e.logger.Info("user registered",
		"userID", userID,
		"eventID", eventID,
		"currentRegistrations", res.Event.CurrentRegistrations,
		"capacity", res.Event.Capacity,
	)
	return &RegisterOutcome{Registration: &reg}, nil
}

// Unregister vacates the user's seat. If the event has a waitlist head, the
// seat is atomically reassigned to that user instead of being freed.
func (e *Engine) Unregister(ctx context.Context, userID, eventID string) (*UnregisterOutcome, error) {
	var outcome *UnregisterOutcome
	err := e.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		outcome, err = e.unregisterOnce(ctx, userID, eventID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// unregisterOnce runs one attempt against a fresh snapshot. The seat count,
// the old registration, the waitlist head, and the promoted registration
// all move in one transaction; any concurrent interference cancels the
// whole transaction and the attempt recomputes.
func (e *Engine) unregisterOnce(ctx context.Context, userID, eventID string) (*UnregisterOutcome, error) {
	reg := entity.Registration{UserID: userID, EventID: eventID}
	if _, err := e.store.Get(ctx, reg.Key()); errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotRegistered
	} else if err != nil {
		return nil, fmt.Errorf("check registration: %w", err)
	}

	ev, err := e.getEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	head, err := e.waitlist.PeekFirst(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if head == nil {
		res, err := Release(ev)
		if err != nil {
			return nil, err
		}
		err = e.store.TransactWrite(ctx, []store.Write{
			res.Write,
			store.DeleteWrite(reg.Key(), store.IfExists()),
		})
		if err != nil {
			return nil, mapUnregisterError(err)
		}
		e.logger.Info("user unregistered",
			"userID", userID,
			"eventID", eventID,
			"currentRegistrations", res.Event.CurrentRegistrations,
		)
		return &UnregisterOutcome{}, nil
	}

	// Promotion: the seat is reassigned, so the count stays put while the
	// version still advances as a freshness token.
	res, err := Retain(ev)
	if err != nil {
		return nil, err
	}
	promoted := entity.Registration{
		RegistrationID: uuid.New().String(),
		UserID:         head.UserID,
		EventID:        eventID,
		RegisteredAt:   e.now().UTC().Format(entity.TimeLayout),
		Status:         entity.StatusConfirmed,
	}
	promotedItem, err := promoted.Item()
	if err != nil {
		return nil, err
	}

	err = e.store.TransactWrite(ctx, []store.Write{
		res.Write,
		store.DeleteWrite(reg.Key(), store.IfExists()),
		store.DeleteWrite(head.Key(), store.IfExists()),
		store.PutWrite(promotedItem, store.IfNotExists()),
	})
	if err != nil {
		return nil, mapUnregisterError(err)
	}

	e.logger.Info("user unregistered, waitlist head promoted",
		"userID", userID,
		"eventID", eventID,
		"promotedUserID", head.UserID,
	)
	return &UnregisterOutcome{PromotedUserID: head.UserID, Promoted: &promoted}, nil
}

// mapUnregisterError classifies a failed unregister transaction. Any
// condition failure means part of the snapshot (seat count, registration,
// or waitlist head) went stale, and the next attempt's fresh read converts
// whatever remains into the right business error.
func mapUnregisterError(err error) error {
	var txErr *store.TransactionCanceledError
	if errors.As(err, &txErr) && txErr.FailedIndex() >= 0 {
		return errStaleSnapshot
	}
	return fmt.Errorf("commit unregistration: %w", err)
}

// requireUser fails with ErrUserNotFound when the user is absent.
func (e *Engine) requireUser(ctx context.Context, userID string) error {
	u := entity.User{UserID: userID}
	if _, err := e.store.Get(ctx, u.Key()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("check user: %w", err)
	}
	return nil
}

// getEvent loads a fresh event snapshot.
func (e *Engine) getEvent(ctx context.Context, eventID string) (entity.Event, error) {
	ev := entity.Event{EventID: eventID}
	item, err := e.store.Get(ctx, ev.Key())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return entity.Event{}, ErrEventNotFound
		}
		return entity.Event{}, fmt.Errorf("get event: %w", err)
	}
	return entity.EventFromItem(item)
}
