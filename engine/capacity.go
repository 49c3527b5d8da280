package engine

import (
	"fmt"

	"github.com/jacentio/roster/entity"
	"github.com/jacentio/roster/store"
)

// The capacity guard evaluates capacity-affecting transitions over a
// point-in-time event snapshot. Each function returns a proposed
// version-guarded write for the caller to include in a transaction; nothing
// here touches storage, and no retry logic lives here.

// Reservation is a proposed event transition: the post-transition snapshot
// and the conditional write that applies it.
type Reservation struct {
	Event entity.Event
	Write store.Write
}

// TryReserve proposes consuming one seat. Returns ErrEventFull without a
// proposal when no seats remain.
func TryReserve(ev entity.Event) (*Reservation, error) {
	if ev.IsFull() {
		return nil, ErrEventFull
	}
	next := ev
	next.CurrentRegistrations++
	return propose(ev, next)
}

// Release proposes freeing one seat.
func Release(ev entity.Event) (*Reservation, error) {
	if ev.CurrentRegistrations <= 0 {
		return nil, fmt.Errorf("engine: release on event %s with no registrations", ev.EventID)
	}
	next := ev
	next.CurrentRegistrations--
	return propose(ev, next)
}

// Retain proposes keeping the seat count unchanged while still bumping the
// version. Promotion uses this: the seat is reassigned, not freed then
// retaken, and the version increment keeps concurrent writers honest.
func Retain(ev entity.Event) (*Reservation, error) {
	return propose(ev, ev)
}

// propose builds the version-guarded write taking ev to next.
func propose(ev, next entity.Event) (*Reservation, error) {
	next.Version = ev.Version + 1
	item, err := next.Item()
	if err != nil {
		return nil, err
	}
	return &Reservation{
		Event: next,
		Write: store.PutWrite(item, store.IfVersion(ev.Version)),
	}, nil
}
