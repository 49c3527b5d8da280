package store

import (
	"context"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Key is the composite primary key of an item.
type Key struct {
	PK string
	SK string
}

// Item is a stored item in DynamoDB attribute form.
type Item map[string]types.AttributeValue

// Key returns the item's composite primary key.
func (i Item) Key() Key {
	return Key{PK: i.String("PK"), SK: i.String("SK")}
}

// String returns the named string attribute, or "" if absent.
func (i Item) String(name string) string {
	if v, ok := i[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

// Version returns the item's optimistic-lock version, or 0 if absent.
func (i Item) Version() int64 {
	if v, ok := i["version"].(*types.AttributeValueMemberN); ok {
		n, _ := strconv.ParseInt(v.Value, 10, 64)
		return n
	}
	return 0
}

// ConditionKind discriminates the supported write conditions.
type ConditionKind int

const (
	// CondNone applies the write unconditionally.
	CondNone ConditionKind = iota

	// CondNotExists requires that no item exists at the key.
	CondNotExists

	// CondExists requires that an item exists at the key.
	CondExists

	// CondVersion requires that the stored item's version equals Version.
	CondVersion
)

// Condition guards a write. The zero value is unconditional.
type Condition struct {
	Kind    ConditionKind
	Version int64
}

// IfNotExists guards a write on the key being vacant.
func IfNotExists() Condition {
	return Condition{Kind: CondNotExists}
}

// IfExists guards a write on the key being occupied.
func IfExists() Condition {
	return Condition{Kind: CondExists}
}

// IfVersion guards a write on the stored item's optimistic-lock version.
func IfVersion(version int64) Condition {
	return Condition{Kind: CondVersion, Version: version}
}

// WriteKind discriminates the operations allowed inside a transaction.
type WriteKind int

const (
	// WritePut creates or replaces an item.
	WritePut WriteKind = iota

	// WriteDelete removes an item.
	WriteDelete

	// WriteCheck asserts a condition without writing.
	WriteCheck
)

// Write is one operation of a transaction.
type Write struct {
	Kind WriteKind
	Item Item // put only
	Key  Key  // delete and check; derived from Item for puts
	Cond Condition
}

// PutWrite builds a conditional put operation.
func PutWrite(item Item, cond Condition) Write {
	return Write{Kind: WritePut, Item: item, Key: item.Key(), Cond: cond}
}

// DeleteWrite builds a conditional delete operation.
func DeleteWrite(key Key, cond Condition) Write {
	return Write{Kind: WriteDelete, Key: key, Cond: cond}
}

// CheckWrite builds a condition assertion that writes nothing.
func CheckWrite(key Key, cond Condition) Write {
	return Write{Kind: WriteCheck, Key: key, Cond: cond}
}

// Store is the transactional key-value contract.
//
// TransactWrite commits all writes or none: if any condition fails the whole
// transaction is cancelled with no partial effect, and the returned
// [*TransactionCanceledError] reports which writes failed their condition.
// Single-item conditional writes fail with [ErrConditionFailed].
type Store interface {
	// Get returns the item at key, or ErrNotFound.
	Get(ctx context.Context, key Key) (Item, error)

	// Put writes item subject to cond.
	Put(ctx context.Context, item Item, cond Condition) error

	// Delete removes the item at key subject to cond. Deleting an absent
	// item with no condition is a no-op.
	Delete(ctx context.Context, key Key, cond Condition) error

	// TransactWrite atomically applies all writes.
	TransactWrite(ctx context.Context, writes []Write) error

	// QueryPrefix returns the items in the pk partition whose sort key
	// starts with skPrefix, in ascending sort-key order. A positive limit
	// caps the result.
	QueryPrefix(ctx context.Context, pk, skPrefix string, limit int32) ([]Item, error)

	// QueryIndex is QueryPrefix against the GSI1 index keys.
	QueryIndex(ctx context.Context, pk, skPrefix string) ([]Item, error)

	// ScanPrefix returns all items whose partition key starts with pkPrefix.
	// Full-table scan; used only by low-volume listing paths.
	ScanPrefix(ctx context.Context, pkPrefix string) ([]Item, error)
}
