package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jacentio/roster/engine"
	"github.com/jacentio/roster/entity"
	"github.com/jacentio/roster/store"
)

// Users manages user metadata items.
type Users struct {
	store store.Store
	now   clock
}

// NewUsers returns a user repository backed by s. A nil now defaults to
// time.Now.
func NewUsers(s store.Store, now clock) *Users {
	if now == nil {
		now = time.Now
	}
	return &Users{store: s, now: now}
}

// Create stores a new user with a generated ID.
func (r *Users) Create(ctx context.Context, name string) (entity.User, error) {
	u := entity.User{
		UserID:    uuid.NewString(),
		Name:      name,
		CreatedAt: r.now().UTC().Format(entity.TimeLayout),
	}
	item, err := u.Item()
	if err != nil {
		return entity.User{}, err
	}
	if err := r.store.Put(ctx, item, store.IfNotExists()); err != nil {
		if errors.Is(err, store.ErrConditionFailed) {
			return entity.User{}, ErrUserExists
		}
		return entity.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Get fetches a user by ID.
func (r *Users) Get(ctx context.Context, userID string) (entity.User, error) {
	item, err := r.store.Get(ctx, entity.User{UserID: userID}.Key())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return entity.User{}, engine.ErrUserNotFound
		}
		return entity.User{}, fmt.Errorf("get user: %w", err)
	}
	return entity.UserFromItem(item)
}

// Exists reports whether the user's metadata item is present.
func (r *Users) Exists(ctx context.Context, userID string) (bool, error) {
	_, err := r.store.Get(ctx, entity.User{UserID: userID}.Key())
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return true, nil
}
