// Package keys builds and parses the composite keys of the single-table layout.
package keys

import (
	"fmt"
	"strings"
	"time"
)

// Key prefixes and sentinel sort keys for the single-table layout.
const (
	UserPrefix  = "USER#"
	EventPrefix = "EVENT#"
	RegPrefix   = "REG#"
	WaitPrefix  = "WAIT#"

	// Metadata is the sort key for user and event metadata items.
	Metadata = "METADATA"
)

// WaitTimeLayout is the fixed-width UTC timestamp layout used inside waitlist
// sort keys. Every digit position is always present, so lexicographic order
// of the encoded string equals chronological order of the timestamp.
const WaitTimeLayout = "2006-01-02T15:04:05.000000000Z"

// UserPK returns the partition key for a user's items.
func UserPK(userID string) string {
	return UserPrefix + userID
}

// EventPK returns the partition key for an event's items.
func EventPK(eventID string) string {
	return EventPrefix + eventID
}

// RegistrationSK returns the sort key of a registration under the user partition.
func RegistrationSK(eventID string) string {
	return RegPrefix + eventID
}

// RegistrationGSISK returns the GSI1 sort key of a registration under the
// event partition.
func RegistrationGSISK(userID string) string {
	return RegPrefix + userID
}

// WaitlistSK returns the sort key of a waitlist entry under the event
// partition. The key orders entries by (addedAt, userID): the timestamp is
// fixed-width, and the trailing userID breaks timestamp collisions
// deterministically.
func WaitlistSK(addedAt time.Time, userID string) string {
	return WaitPrefix + addedAt.UTC().Format(WaitTimeLayout) + "#" + userID
}

// WaitlistGSISK returns the GSI1 sort key of a waitlist entry under the user
// partition, keyed by event so a user's entry for an event can be found
// without scanning the event's whole waitlist.
func WaitlistGSISK(eventID string) string {
	return WaitPrefix + eventID
}

// ParseWaitlistSK splits a waitlist sort key into its timestamp and user ID.
func ParseWaitlistSK(sk string) (addedAt time.Time, userID string, err error) {
	rest, ok := strings.CutPrefix(sk, WaitPrefix)
	if !ok {
		return time.Time{}, "", fmt.Errorf("keys: %q is not a waitlist sort key", sk)
	}
	ts, userID, ok := strings.Cut(rest, "#")
	if !ok {
		return time.Time{}, "", fmt.Errorf("keys: waitlist sort key %q has no user segment", sk)
	}
	addedAt, err = time.Parse(WaitTimeLayout, ts)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("keys: parse waitlist timestamp: %w", err)
	}
	return addedAt, userID, nil
}

// UserID extracts the identifier from a user partition key.
func UserID(pk string) string {
	return strings.TrimPrefix(pk, UserPrefix)
}

// EventID extracts the identifier from an event partition key.
func EventID(pk string) string {
	return strings.TrimPrefix(pk, EventPrefix)
}
