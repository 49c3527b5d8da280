package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jacentio/roster/engine"
	"github.com/jacentio/roster/entity"
	"github.com/jacentio/roster/internal/keys"
	"github.com/jacentio/roster/store"
)

// Registrations provides the read paths over registration items. Writes go
// through the engine only.
type Registrations struct {
	store store.Store
}

// NewRegistrations returns a registration reader backed by s.
func NewRegistrations(s store.Store) *Registrations {
	return &Registrations{store: s}
}

// UserRegistration pairs a registration with the event it is for.
type UserRegistration struct {
	Registration entity.Registration `json:"registration"`
	Event        entity.Event        `json:"event"`
}

// ListForUser returns the user's registrations with their events, in
// event-ID order. A registration whose event is mid-cascade-delete is
// skipped rather than failing the whole listing.
func (r *Registrations) ListForUser(ctx context.Context, userID string) ([]UserRegistration, error) {
	if err := r.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	items, err := r.store.QueryPrefix(ctx, keys.UserPK(userID), keys.RegPrefix, 0)
	if err != nil {
		return nil, fmt.Errorf("list user registrations: %w", err)
	}
	regs, err := decodeRegistrations(items)
	if err != nil {
		return nil, err
	}

	out := make([]UserRegistration, 0, len(regs))
	for _, reg := range regs {
		evItem, err := r.store.Get(ctx, entity.Event{EventID: reg.EventID}.Key())
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("list user registrations: %w", err)
		}
		ev, err := entity.EventFromItem(evItem)
		if err != nil {
			return nil, err
		}
		out = append(out, UserRegistration{Registration: reg, Event: ev})
	}
	return out, nil
}

// ListForEvent returns the event's registrations in user-ID order via the
// index mirror.
func (r *Registrations) ListForEvent(ctx context.Context, eventID string) ([]entity.Registration, error) {
	if err := r.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	items, err := r.store.QueryIndex(ctx, keys.EventPK(eventID), keys.RegPrefix)
	if err != nil {
		return nil, fmt.Errorf("list event registrations: %w", err)
	}
	return decodeRegistrations(items)
}

func (r *Registrations) requireUser(ctx context.Context, userID string) error {
	_, err := r.store.Get(ctx, entity.User{UserID: userID}.Key())
	if errors.Is(err, store.ErrNotFound) {
		return engine.ErrUserNotFound
	}
	return err
}

func (r *Registrations) requireEvent(ctx context.Context, eventID string) error {
	_, err := r.store.Get(ctx, entity.Event{EventID: eventID}.Key())
	if errors.Is(err, store.ErrNotFound) {
		return engine.ErrEventNotFound
	}
	return err
}

func decodeRegistrations(items []store.Item) ([]entity.Registration, error) {
	regs := make([]entity.Registration, 0, len(items))
	for _, item := range items {
		reg, err := entity.RegistrationFromItem(item)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, nil
}
