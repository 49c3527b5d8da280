package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jacentio/roster/entity"
	"github.com/jacentio/roster/internal/keys"
	"github.com/jacentio/roster/store"
)

// WaitlistQueue maintains the strict temporal ordering of pending entries
// per event. Order is defined entirely by the stored (addedAt, userID) sort
// keys; numeric positions are computed at read time, never stored.
type WaitlistQueue struct {
	store store.Store
	now   func() time.Time
}

// NewWaitlistQueue creates a queue over the given store. A nil now defaults
// to time.Now.
func NewWaitlistQueue(s store.Store, now func() time.Time) *WaitlistQueue {
	if now == nil {
		now = time.Now
	}
	return &WaitlistQueue{store: s, now: now}
}

// Enqueue appends the user to the event's waitlist. Returns
// ErrAlreadyWaiting if an entry for the pair already exists.
func (q *WaitlistQueue) Enqueue(ctx context.Context, eventID, userID string) (entity.WaitlistEntry, error) {
	existing, err := q.Entry(ctx, eventID, userID)
	if err != nil {
		return entity.WaitlistEntry{}, err
	}
	if existing != nil {
		return entity.WaitlistEntry{}, ErrAlreadyWaiting
	}

	entry := entity.WaitlistEntry{
		WaitlistID: uuid.New().String(),
		UserID:     userID,
		EventID:    eventID,
		AddedAt:    q.now().UTC().Format(keys.WaitTimeLayout),
	}
	item, err := entry.Item()
	if err != nil {
		return entity.WaitlistEntry{}, err
	}
	if err := q.store.Put(ctx, item, store.IfNotExists()); err != nil {
		return entity.WaitlistEntry{}, fmt.Errorf("enqueue waitlist entry: %w", err)
	}
	return entry, nil
}

// Entry returns the user's waitlist entry for the event, or nil if absent.
// Resolved through the index, so no scan of the event's waitlist is needed.
func (q *WaitlistQueue) Entry(ctx context.Context, eventID, userID string) (*entity.WaitlistEntry, error) {
	items, err := q.store.QueryIndex(ctx, keys.UserPK(userID), keys.WaitlistGSISK(eventID))
	if err != nil {
		return nil, fmt.Errorf("query waitlist entry: %w", err)
	}
	for _, item := range items {
		entry, err := entity.WaitlistEntryFromItem(item)
		if err != nil {
			return nil, err
		}
		// The index key is a prefix match; one event ID could prefix
		// another, so compare exactly.
		if entry.EventID == eventID {
			return &entry, nil
		}
	}
	return nil, nil
}

// PeekFirst returns the earliest not-yet-removed entry for the event, or
// nil when the waitlist is empty.
func (q *WaitlistQueue) PeekFirst(ctx context.Context, eventID string) (*entity.WaitlistEntry, error) {
	items, err := q.store.QueryPrefix(ctx, keys.EventPK(eventID), keys.WaitPrefix, 1)
	if err != nil {
		return nil, fmt.Errorf("peek waitlist head: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	entry, err := entity.WaitlistEntryFromItem(items[0])
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Remove deletes the user's waitlist entry for the event. Removing an
// absent entry is a no-op, not an error.
func (q *WaitlistQueue) Remove(ctx context.Context, eventID, userID string) error {
	entry, err := q.Entry(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if entry == nil {
		return nil
	}
	err = q.store.Delete(ctx, entry.Key(), store.Condition{})
	if err != nil && !errors.Is(err, store.ErrConditionFailed) {
		return fmt.Errorf("remove waitlist entry: %w", err)
	}
	return nil
}

// List returns the event's waitlist in order, with positions derived from
// the rank in this read.
func (q *WaitlistQueue) List(ctx context.Context, eventID string) ([]entity.WaitlistEntry, error) {
	items, err := q.store.QueryPrefix(ctx, keys.EventPK(eventID), keys.WaitPrefix, 0)
	if err != nil {
		return nil, fmt.Errorf("list waitlist: %w", err)
	}

	entries := make([]entity.WaitlistEntry, 0, len(items))
	for i, item := range items {
		entry, err := entity.WaitlistEntryFromItem(item)
		if err != nil {
			return nil, err
		}
		entry.Position = i + 1
		entries = append(entries, entry)
	}
	return entries, nil
}
