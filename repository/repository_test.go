package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jacentio/roster/engine"
	"github.com/jacentio/roster/entity"
	"github.com/jacentio/roster/repository"
	"github.com/jacentio/roster/store"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
}

func draftEvent() entity.Event {
	return entity.Event{
		Title:           "GopherCon",
		Description:     "annual gathering",
		Date:            "2024-06-01T09:00:00Z",
		Location:        "Denver",
		Organizer:       "gophers",
		Capacity:        100,
		WaitlistEnabled: true,
	}
}

func TestUsers_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	users := repository.NewUsers(m, fixedClock)

	created, err := users.Create(ctx, "Ada")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.UserID == "" {
		t.Fatal("expected a generated user ID")
	}
	if created.CreatedAt != "2024-03-01T09:00:00Z" {
		t.Errorf("unexpected createdAt %q", created.CreatedAt)
	}

	got, err := users.Get(ctx, created.UserID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != created {
		t.Errorf("round trip mismatch: %+v != %+v", got, created)
	}

	ok, err := users.Exists(ctx, created.UserID)
	if err != nil || !ok {
		t.Errorf("expected user to exist, got %v %v", ok, err)
	}
	ok, err = users.Exists(ctx, "nobody")
	if err != nil || ok {
		t.Errorf("expected user to be absent, got %v %v", ok, err)
	}
}

func TestUsers_GetMissing(t *testing.T) {
	users := repository.NewUsers(store.NewMemory(), nil)
	_, err := users.Get(context.Background(), "nobody")
	if !errors.Is(err, engine.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestEvents_CreateDefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	events := repository.NewEvents(store.NewMemory(), fixedClock)

	created, err := events.Create(ctx, draftEvent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.EventID == "" {
		t.Fatal("expected a generated event ID")
	}
	if created.Status != entity.EventActive {
		t.Errorf("expected default status active, got %q", created.Status)
	}
	if created.Version != 1 || created.CurrentRegistrations != 0 {
		t.Errorf("expected fresh counters, got version %d count %d", created.Version, created.CurrentRegistrations)
	}

	for name, mutate := range map[string]func(*entity.Event){
		"empty title":   func(e *entity.Event) { e.Title = "" },
		"zero capacity": func(e *entity.Event) { e.Capacity = 0 },
		"bad status":    func(e *entity.Event) { e.Status = "pending" },
		"bad date":      func(e *entity.Event) { e.Date = "june 1st" },
	} {
		draft := draftEvent()
		mutate(&draft)
		if _, err := events.Create(ctx, draft); !errors.Is(err, repository.ErrInvalidEvent) {
			t.Errorf("%s: expected ErrInvalidEvent, got %v", name, err)
		}
	}
}

func TestEvents_List(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	events := repository.NewEvents(m, fixedClock)

	active, err := events.Create(ctx, draftEvent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cancelledDraft := draftEvent()
	cancelledDraft.Status = entity.EventCancelled
	if _, err := events.Create(ctx, cancelledDraft); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Waitlist entries share the event partition and must not leak into
	// listings.
	entry := entity.WaitlistEntry{
		WaitlistID: "w1",
		UserID:     "u1",
		EventID:    active.EventID,
		AddedAt:    "2024-03-01T09:00:00.000000000Z",
	}
	item, err := entry.Item()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Put(ctx, item, store.IfNotExists()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	all, err := events.List(ctx, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 events, got %d", len(all))
	}

	onlyActive, err := events.List(ctx, entity.EventActive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(onlyActive) != 1 || onlyActive[0].EventID != active.EventID {
		t.Errorf("expected only the active event, got %+v", onlyActive)
	}
}

func TestEvents_Update(t *testing.T) {
	ctx := context.Background()
	events := repository.NewEvents(store.NewMemory(), fixedClock)

	created, err := events.Create(ctx, draftEvent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	title := "GopherCon EU"
	status := entity.EventCancelled
	updated, err := events.Update(ctx, created.EventID, repository.EventUpdate{
		Title:  &title,
		Status: &status,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Title != title || updated.Status != status {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.Location != created.Location {
		t.Errorf("nil field clobbered: %q", updated.Location)
	}
	if updated.Version != created.Version+1 {
		t.Errorf("expected version bump to %d, got %d", created.Version+1, updated.Version)
	}
	if updated.Capacity != created.Capacity {
		t.Errorf("capacity changed: %d", updated.Capacity)
	}

	bad := "pending"
	if _, err := events.Update(ctx, created.EventID, repository.EventUpdate{Status: &bad}); !errors.Is(err, repository.ErrInvalidEvent) {
		t.Errorf("expected ErrInvalidEvent, got %v", err)
	}
	if _, err := events.Update(ctx, "ghost", repository.EventUpdate{Title: &title}); !errors.Is(err, engine.ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
}

func TestEvents_Delete(t *testing.T) {
	ctx := context.Background()
	events := repository.NewEvents(store.NewMemory(), fixedClock)

	created, err := events.Create(ctx, draftEvent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := events.Delete(ctx, created.EventID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := events.Get(ctx, created.EventID); !errors.Is(err, engine.ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound after delete, got %v", err)
	}
	if err := events.Delete(ctx, created.EventID); !errors.Is(err, engine.ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound on double delete, got %v", err)
	}
}

func TestRegistrations_ListPaths(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	regs := repository.NewRegistrations(m)

	seed := func(v interface{ Item() (store.Item, error) }) {
		t.Helper()
		item, err := v.Item()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if err := m.Put(ctx, item, store.IfNotExists()); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	seed(entity.User{UserID: "alice", Name: "Alice", CreatedAt: "2024-03-01T09:00:00Z"})
	seed(entity.Event{EventID: "e1", Title: "one", Status: entity.EventActive, Capacity: 5, Version: 1})
	seed(entity.Event{EventID: "e2", Title: "two", Status: entity.EventActive, Capacity: 5, Version: 1})
	for _, reg := range []entity.Registration{
		{RegistrationID: "r1", UserID: "alice", EventID: "e1", RegisteredAt: "2024-03-01T10:00:00Z", Status: entity.StatusConfirmed},
		{RegistrationID: "r2", UserID: "alice", EventID: "e2", RegisteredAt: "2024-03-01T11:00:00Z", Status: entity.StatusConfirmed},
		{RegistrationID: "r3", UserID: "bob", EventID: "e1", RegisteredAt: "2024-03-01T12:00:00Z", Status: entity.StatusConfirmed},
	} {
		seed(reg)
	}

	mine, err := regs.ListForUser(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 2 || mine[0].Event.EventID != "e1" || mine[1].Event.EventID != "e2" {
		t.Errorf("unexpected user listing: %+v", mine)
	}
	if mine[0].Event.Title != "one" || mine[0].Registration.RegistrationID != "r1" {
		t.Errorf("unexpected pairing: %+v", mine[0])
	}

	// A registration whose event vanished mid-cascade is skipped.
	if err := m.Delete(ctx, entity.Event{EventID: "e2"}.Key(), store.Condition{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mine, err = regs.ListForUser(ctx, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 1 || mine[0].Event.EventID != "e1" {
		t.Errorf("expected only e1 after delete, got %+v", mine)
	}

	attendees, err := regs.ListForEvent(ctx, "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(attendees) != 2 || attendees[0].UserID != "alice" || attendees[1].UserID != "bob" {
		t.Errorf("unexpected event listing: %+v", attendees)
	}

	if _, err := regs.ListForUser(ctx, "ghost"); !errors.Is(err, engine.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := regs.ListForEvent(ctx, "ghost"); !errors.Is(err, engine.ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
}
