package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jacentio/roster/engine"
	"github.com/jacentio/roster/entity"
	"github.com/jacentio/roster/internal/keys"
	"github.com/jacentio/roster/store"
)

// Events manages event metadata items. Capacity is fixed at creation;
// CurrentRegistrations and Version are owned by the engine and this
// repository only ever bumps Version when applying field updates.
type Events struct {
	store store.Store
	now   clock
}

// NewEvents returns an event repository backed by s. A nil now defaults to
// time.Now.
func NewEvents(s store.Store, now clock) *Events {
	if now == nil {
		now = time.Now
	}
	return &Events{store: s, now: now}
}

// EventUpdate carries the mutable event fields. Nil fields are left as-is.
// Capacity is absent on purpose: resizing a live event would invalidate
// every in-flight capacity decision.
type EventUpdate struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Date            *string `json:"date"`
	Location        *string `json:"location"`
	Organizer       *string `json:"organizer"`
	Status          *string `json:"status"`
	WaitlistEnabled *bool   `json:"waitlistEnabled"`
}

// Create validates and stores a new event. EventID, Version and the
// registration counter are assigned here regardless of input.
func (r *Events) Create(ctx context.Context, ev entity.Event) (entity.Event, error) {
	if ev.Status == "" {
		ev.Status = entity.EventActive
	}
	if err := validateEvent(ev); err != nil {
		return entity.Event{}, err
	}
	ev.EventID = uuid.NewString()
	ev.CurrentRegistrations = 0
	ev.Version = 1

	item, err := ev.Item()
	if err != nil {
		return entity.Event{}, err
	}
	if err := r.store.Put(ctx, item, store.IfNotExists()); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return entity.Event{}, ErrEventExists
		}
		return entity.Event{}, fmt.Errorf("create event: %w", err)
	}
	return ev, nil
}

// Get fetches an event by ID.
func (r *Events) Get(ctx context.Context, eventID string) (entity.Event, error) {
	item, err := r.store.Get(ctx, entity.Event{EventID: eventID}.Key())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return entity.Event{}, engine.ErrEventNotFound
		}
		return entity.Event{}, fmt.Errorf("get event: %w", err)
	}
	return entity.EventFromItem(item)
}

// List returns all events, optionally filtered by status. Empty status
// means no filter.
func (r *Events) List(ctx context.Context, status string) ([]entity.Event, error) {
	items, err := r.store.ScanPrefix(ctx, keys.EventPrefix)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	events := make([]entity.Event, 0, len(items))
	for _, item := range items {
		// The event partition also holds its waitlist entries.
		if item.Key().SK != keys.Metadata {
			continue
		}
		ev, err := entity.EventFromItem(item)
		if err != nil {
			return nil, err
		}
		if status != "" && ev.Status != status {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// Update applies the non-nil fields of upd under the event's version guard.
// A concurrent modification between read and write surfaces as
// engine.ErrConcurrencyConflict; callers retry at their discretion.
func (r *Events) Update(ctx context.Context, eventID string, upd EventUpdate) (entity.Event, error) {
	ev, err := r.Get(ctx, eventID)
	if err != nil {
		return entity.Event{}, err
	}

	if upd.Title != nil {
		ev.Title = *upd.Title
	}
	if upd.Description != nil {
		ev.Description = *upd.Description
	}
	if upd.Date != nil {
		ev.Date = *upd.Date
	}
	if upd.Location != nil {
		ev.Location = *upd.Location
	}
	if upd.Organizer != nil {
		ev.Organizer = *upd.Organizer
	}
	if upd.Status != nil {
		ev.Status = *upd.Status
	}
	if upd.WaitlistEnabled != nil {
		ev.WaitlistEnabled = *upd.WaitlistEnabled
	}
	if err := validateEvent(ev); err != nil {
		return entity.Event{}, err
	}

	guard := ev.Version
	ev.Version++
	item, err := ev.Item()
	if err != nil {
		return entity.Event{}, err
	}
	if err := r.store.Put(ctx, item, store.IfVersion(guard)); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return entity.Event{}, engine.ErrConcurrencyConflict
		}
		return entity.Event{}, fmt.Errorf("update event: %w", err)
	}
	return ev, nil
}

// Delete removes the event's metadata item. Registrations and waitlist
// entries are cleaned up out of band by the stream cascade.
func (r *Events) Delete(ctx context.Context, eventID string) error {
	err := r.store.Delete(ctx, entity.Event{EventID: eventID}.Key(), store.IfExists())
	if errors.Is(err, store.ErrConditionFailed) {
		return engine.ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func validateEvent(ev entity.Event) error {
	if ev.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	if ev.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", ErrInvalidEvent)
	}
	if !validStatuses[ev.Status] {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidEvent, ev.Status)
	}
	if ev.Date != "" {
		if _, err := time.Parse(entity.TimeLayout, ev.Date); err != nil {
			return fmt.Errorf("%w: date must be RFC 3339", ErrInvalidEvent)
		}
	}
	return nil
}
