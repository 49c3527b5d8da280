// Package entity defines the domain types and their single-table item form.
package entity

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/roster/internal/keys"
	"github.com/jacentio/roster/store"
)

// TimeLayout is the wire format of entity timestamps.
const TimeLayout = time.RFC3339

// StatusConfirmed is the only registration status; a registration item
// exists iff the user holds a confirmed seat.
const StatusConfirmed = "confirmed"

// Event statuses.
const (
	EventActive    = "active"
	EventInactive  = "inactive"
	EventCancelled = "cancelled"
	EventCompleted = "completed"
)

// User is immutable once created.
type User struct {
	UserID    string `dynamodbav:"userId" json:"userId"`
	Name      string `dynamodbav:"name" json:"name"`
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

// Key returns the user's metadata item key.
func (u User) Key() store.Key {
	return store.Key{PK: keys.UserPK(u.UserID), SK: keys.Metadata}
}

// Item marshals the user into stored form.
func (u User) Item() (store.Item, error) {
	return marshal(u, u.Key(), "", "")
}

// UserFromItem decodes a stored user item.
func UserFromItem(item store.Item) (User, error) {
	var u User
	if err := attributevalue.UnmarshalMap(item, &u); err != nil {
		return User{}, fmt.Errorf("entity: unmarshal user: %w", err)
	}
	return u, nil
}

// Event carries the capacity counter and the optimistic-lock version.
// Capacity is immutable after creation; CurrentRegistrations never exceeds it.
type Event struct {
	EventID              string `dynamodbav:"eventId" json:"eventId"`
	Title                string `dynamodbav:"title" json:"title"`
	Description          string `dynamodbav:"description" json:"description"`
	Date                 string `dynamodbav:"date" json:"date"`
	Location             string `dynamodbav:"location" json:"location"`
	Organizer            string `dynamodbav:"organizer" json:"organizer"`
	Status               string `dynamodbav:"status" json:"status"`
	Capacity             int    `dynamodbav:"capacity" json:"capacity"`
	WaitlistEnabled      bool   `dynamodbav:"waitlistEnabled" json:"waitlistEnabled"`
	CurrentRegistrations int    `dynamodbav:"currentRegistrations" json:"currentRegistrations"`
	Version              int64  `dynamodbav:"version" json:"-"`
}

// Key returns the event's metadata item key.
func (e Event) Key() store.Key {
	return store.Key{PK: keys.EventPK(e.EventID), SK: keys.Metadata}
}

// Item marshals the event into stored form.
func (e Event) Item() (store.Item, error) {
	return marshal(e, e.Key(), "", "")
}

// Remaining returns the number of available seats.
func (e Event) Remaining() int {
	return e.Capacity - e.CurrentRegistrations
}

// IsFull reports whether no seats remain.
func (e Event) IsFull() bool {
	return e.CurrentRegistrations >= e.Capacity
}

// EventFromItem decodes a stored event item.
func EventFromItem(item store.Item) (Event, error) {
	var e Event
	if err := attributevalue.UnmarshalMap(item, &e); err != nil {
		return Event{}, fmt.Errorf("entity: unmarshal event: %w", err)
	}
	return e, nil
}

// Registration is a confirmed seat for a (user, event) pair. Stored under
// the user partition; the GSI mirrors it under the event partition.
type Registration struct {
	RegistrationID string `dynamodbav:"registrationId" json:"registrationId"`
	UserID         string `dynamodbav:"userId" json:"userId"`
	EventID        string `dynamodbav:"eventId" json:"eventId"`
	RegisteredAt   string `dynamodbav:"registeredAt" json:"registeredAt"`
	Status         string `dynamodbav:"status" json:"status"`
}

// Key returns the registration's item key.
func (r Registration) Key() store.Key {
	return store.Key{PK: keys.UserPK(r.UserID), SK: keys.RegistrationSK(r.EventID)}
}

// Item marshals the registration with its GSI mirror keys.
func (r Registration) Item() (store.Item, error) {
	return marshal(r, r.Key(), keys.EventPK(r.EventID), keys.RegistrationGSISK(r.UserID))
}

// RegistrationFromItem decodes a stored registration item.
func RegistrationFromItem(item store.Item) (Registration, error) {
	var r Registration
	if err := attributevalue.UnmarshalMap(item, &r); err != nil {
		return Registration{}, fmt.Errorf("entity: unmarshal registration: %w", err)
	}
	return r, nil
}

// WaitlistEntry is a pending seat request. Stored under the event partition
// with the (addedAt, userID) sort key that defines waitlist order; the GSI
// mirrors it under the user partition for direct lookup.
//
// AddedAt uses the fixed-width layout of the sort key, not TimeLayout, so
// the attribute and the key always agree.
type WaitlistEntry struct {
	WaitlistID string `dynamodbav:"waitlistId" json:"waitlistId"`
	UserID     string `dynamodbav:"userId" json:"userId"`
	EventID    string `dynamodbav:"eventId" json:"eventId"`
	AddedAt    string `dynamodbav:"addedAt" json:"addedAt"`

	// Position is a derived, read-time rank. It is never stored: keeping a
	// numeric position synchronized under concurrent inserts and removals
	// would race, while the sort key cannot.
	Position int `dynamodbav:"-" json:"position,omitempty"`
}

// Key returns the entry's item key.
func (w WaitlistEntry) Key() store.Key {
	return store.Key{
		PK: keys.EventPK(w.EventID),
		SK: keys.WaitPrefix + w.AddedAt + "#" + w.UserID,
	}
}

// Item marshals the entry with its GSI mirror keys.
func (w WaitlistEntry) Item() (store.Item, error) {
	return marshal(w, w.Key(), keys.UserPK(w.UserID), keys.WaitlistGSISK(w.EventID))
}

// WaitlistEntryFromItem decodes a stored waitlist item.
func WaitlistEntryFromItem(item store.Item) (WaitlistEntry, error) {
	var w WaitlistEntry
	if err := attributevalue.UnmarshalMap(item, &w); err != nil {
		return WaitlistEntry{}, fmt.Errorf("entity: unmarshal waitlist entry: %w", err)
	}
	return w, nil
}

// marshal converts v to attribute form and attaches the table and index keys.
func marshal(v any, key store.Key, gsiPK, gsiSK string) (store.Item, error) {
	attrs, err := attributevalue.MarshalMap(v)
	if err != nil {
		return nil, fmt.Errorf("entity: marshal: %w", err)
	}
	item := store.Item(attrs)
	item["PK"] = &types.AttributeValueMemberS{Value: key.PK}
	item["SK"] = &types.AttributeValueMemberS{Value: key.SK}
	if gsiPK != "" {
		item["GSI1PK"] = &types.AttributeValueMemberS{Value: gsiPK}
		item["GSI1SK"] = &types.AttributeValueMemberS{Value: gsiSK}
	}
	return item, nil
}
