package engine_test

import (
	"errors"
	"testing"

	"github.com/jacentio/roster/engine"
	"github.com/jacentio/roster/entity"
	"github.com/jacentio/roster/store"
)

func snapshot(capacity, current int, version int64) entity.Event {
	return entity.Event{
		EventID:              "e1",
		Title:                "Event",
		Status:               entity.EventActive,
		Capacity:             capacity,
		CurrentRegistrations: current,
		Version:              version,
	}
}

func TestTryReserve_SeatAvailable(t *testing.T) {
	res, err := engine.TryReserve(snapshot(10, 9, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Event.CurrentRegistrations != 10 {
		t.Errorf("expected 10 registrations, got %d", res.Event.CurrentRegistrations)
	}
	if res.Event.Version != 4 {
		t.Errorf("expected version 4, got %d", res.Event.Version)
	}
	if res.Write.Kind != store.WritePut {
		t.Errorf("expected a put write, got kind %v", res.Write.Kind)
	}
	if res.Write.Cond != store.IfVersion(3) {
		t.Errorf("expected version guard on 3, got %+v", res.Write.Cond)
	}
}

func TestTryReserve_Full(t *testing.T) {
	res, err := engine.TryReserve(snapshot(10, 10, 3))
	if !errors.Is(err, engine.ErrEventFull) {
		t.Errorf("expected ErrEventFull, got %v", err)
	}
	if res != nil {
		t.Errorf("expected no proposal for a full event, got %+v", res)
	}
}

func TestTryReserve_LastSeat(t *testing.T) {
	res, err := engine.TryReserve(snapshot(1, 0, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Event.IsFull() {
		t.Error("expected the proposal to fill the event")
	}
}

func TestRelease(t *testing.T) {
	res, err := engine.Release(snapshot(10, 10, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Event.CurrentRegistrations != 9 {
		t.Errorf("expected 9 registrations, got %d", res.Event.CurrentRegistrations)
	}
	if res.Event.Version != 6 {
		t.Errorf("expected version 6, got %d", res.Event.Version)
	}
	if res.Write.Cond != store.IfVersion(5) {
		t.Errorf("expected version guard on 5, got %+v", res.Write.Cond)
	}
}

func TestRelease_Underflow(t *testing.T) {
	if _, err := engine.Release(snapshot(10, 0, 5)); err == nil {
		t.Error("expected an error releasing with no registrations")
	}
}

func TestRetain(t *testing.T) {
	res, err := engine.Retain(snapshot(10, 10, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Event.CurrentRegistrations != 10 {
		t.Errorf("expected count unchanged at 10, got %d", res.Event.CurrentRegistrations)
	}
	if res.Event.Version != 6 {
		t.Errorf("expected version 6, got %d", res.Event.Version)
	}
	if res.Write.Cond != store.IfVersion(5) {
		t.Errorf("expected version guard on 5, got %+v", res.Write.Cond)
	}
}
