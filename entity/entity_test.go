package entity_test

import (
	"testing"
	"time"

	"github.com/jacentio/roster/entity"
	"github.com/jacentio/roster/internal/keys"
	"github.com/jacentio/roster/store"
)

func TestUser_RoundTrip(t *testing.T) {
	u := entity.User{
		UserID:    "alice",
		Name:      "Alice",
		CreatedAt: "2024-03-01T10:00:00Z",
	}

	if u.Key() != (store.Key{PK: "USER#alice", SK: "METADATA"}) {
		t.Errorf("unexpected key %v", u.Key())
	}

	item, err := u.Item()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Key() != u.Key() {
		t.Errorf("item key %v does not match entity key %v", item.Key(), u.Key())
	}

	got, err := entity.UserFromItem(item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != u {
		t.Errorf("expected %+v, got %+v", u, got)
	}
}

func TestEvent_RoundTrip(t *testing.T) {
	e := entity.Event{
		EventID:              "gophercon",
		Title:                "GopherCon",
		Description:          "The Go conference",
		Date:                 "2024-06-01",
		Location:             "Denver",
		Organizer:            "gophers",
		Status:               entity.EventActive,
		Capacity:             100,
		WaitlistEnabled:      true,
		CurrentRegistrations: 42,
		Version:              7,
	}

	item, err := e.Item()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Key() != (store.Key{PK: "EVENT#gophercon", SK: "METADATA"}) {
		t.Errorf("unexpected key %v", item.Key())
	}

	// The store-level version accessor must see the same number the
	// optimistic-lock guard compares against.
	if item.Version() != 7 {
		t.Errorf("expected item version 7, got %d", item.Version())
	}

	got, err := entity.EventFromItem(item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != e {
		t.Errorf("expected %+v, got %+v", e, got)
	}
}

func TestEvent_Capacity(t *testing.T) {
	e := entity.Event{Capacity: 2, CurrentRegistrations: 1}
	if e.IsFull() {
		t.Error("expected not full at 1/2")
	}
	if e.Remaining() != 1 {
		t.Errorf("expected 1 remaining, got %d", e.Remaining())
	}

	e.CurrentRegistrations = 2
	if !e.IsFull() {
		t.Error("expected full at 2/2")
	}
}

func TestRegistration_Keys(t *testing.T) {
	r := entity.Registration{
		RegistrationID: "r1",
		UserID:         "alice",
		EventID:        "gophercon",
		RegisteredAt:   "2024-03-01T10:00:00Z",
		Status:         entity.StatusConfirmed,
	}

	item, err := r.Item()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Key() != (store.Key{PK: "USER#alice", SK: "REG#gophercon"}) {
		t.Errorf("unexpected key %v", item.Key())
	}
	if item.String("GSI1PK") != "EVENT#gophercon" || item.String("GSI1SK") != "REG#alice" {
		t.Errorf("unexpected GSI keys %q/%q", item.String("GSI1PK"), item.String("GSI1SK"))
	}

	got, err := entity.RegistrationFromItem(item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != r {
		t.Errorf("expected %+v, got %+v", r, got)
	}
}

func TestWaitlistEntry_Keys(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	w := entity.WaitlistEntry{
		WaitlistID: "w1",
		UserID:     "bob",
		EventID:    "gophercon",
		AddedAt:    at.Format(keys.WaitTimeLayout),
	}

	item, err := w.Item()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSK := keys.WaitlistSK(at, "bob")
	if item.Key() != (store.Key{PK: "EVENT#gophercon", SK: wantSK}) {
		t.Errorf("expected SK %q, got %v", wantSK, item.Key())
	}
	if item.String("GSI1PK") != "USER#bob" || item.String("GSI1SK") != "WAIT#gophercon" {
		t.Errorf("unexpected GSI keys %q/%q", item.String("GSI1PK"), item.String("GSI1SK"))
	}

	got, err := entity.WaitlistEntryFromItem(item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Position is derived at read time and never round-trips.
	if got.Position != 0 {
		t.Errorf("expected zero position, got %d", got.Position)
	}
	got.Position = w.Position
	if got != w {
		t.Errorf("expected %+v, got %+v", w, got)
	}
}
