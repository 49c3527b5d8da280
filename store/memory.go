package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory implements Store in process. All operations, including multi-item
// transactions, execute under a single mutex, which gives the same
// linearizable compare-and-swap semantics the engine relies on from DynamoDB.
type Memory struct {
	mu    sync.Mutex
	items map[Key]Item
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[Key]Item)}
}

// holds reports whether the condition is satisfied by the current state of key.
// Caller must hold m.mu.
func (m *Memory) holds(key Key, cond Condition) bool {
	existing, ok := m.items[key]
	switch cond.Kind {
	case CondNotExists:
		return !ok
	case CondExists:
		return ok
	case CondVersion:
		return ok && existing.Version() == cond.Version
	default:
		return true
	}
}

// Get returns a copy of the item at key, or ErrNotFound.
func (m *Memory) Get(ctx context.Context, key Key) (Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	return copyItem(item), nil
}

// Put writes item subject to cond.
func (m *Memory) Put(ctx context.Context, item Item, cond Condition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := item.Key()
	if !m.holds(key, cond) {
		return ErrConditionFailed
	}
	m.items[key] = copyItem(item)
	return nil
}

// Delete removes the item at key subject to cond.
func (m *Memory) Delete(ctx context.Context, key Key, cond Condition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.holds(key, cond) {
		return ErrConditionFailed
	}
	delete(m.items, key)
	return nil
}

// TransactWrite checks every condition against the current state, then
// applies all writes, or none if any condition fails.
func (m *Memory) TransactWrite(ctx context.Context, writes []Write) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	reasons := make([]CancellationReason, len(writes))
	cancelled := false
	for i, w := range writes {
		if !m.holds(w.Key, w.Cond) {
			reasons[i].ConditionFailed = true
			cancelled = true
		}
	}
	if cancelled {
		return &TransactionCanceledError{Reasons: reasons}
	}

	for _, w := range writes {
		switch w.Kind {
		case WritePut:
			m.items[w.Key] = copyItem(w.Item)
		case WriteDelete:
			delete(m.items, w.Key)
		case WriteCheck:
			// condition already verified, nothing to write
		}
	}
	return nil
}

// QueryPrefix returns the items in the pk partition whose sort key starts
// with skPrefix, in ascending sort-key order.
func (m *Memory) QueryPrefix(ctx context.Context, pk, skPrefix string, limit int32) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var items []Item
	for key, item := range m.items {
		if key.PK == pk && strings.HasPrefix(key.SK, skPrefix) {
			items = append(items, copyItem(item))
		}
	}
	sort.Slice(items, func(a, b int) bool {
		return items[a].Key().SK < items[b].Key().SK
	})
	if limit > 0 && int(limit) < len(items) {
		items = items[:limit]
	}
	return items, nil
}

// QueryIndex returns items by their GSI1 keys, in ascending GSI1SK order.
func (m *Memory) QueryIndex(ctx context.Context, pk, skPrefix string) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var items []Item
	for _, item := range m.items {
		if item.String("GSI1PK") == pk && strings.HasPrefix(item.String("GSI1SK"), skPrefix) {
			items = append(items, copyItem(item))
		}
	}
	sort.Slice(items, func(a, b int) bool {
		return items[a].String("GSI1SK") < items[b].String("GSI1SK")
	})
	return items, nil
}

// ScanPrefix returns all items whose partition key starts with pkPrefix.
func (m *Memory) ScanPrefix(ctx context.Context, pkPrefix string) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var items []Item
	for key, item := range m.items {
		if strings.HasPrefix(key.PK, pkPrefix) {
			items = append(items, copyItem(item))
		}
	}
	sort.Slice(items, func(a, b int) bool {
		ka, kb := items[a].Key(), items[b].Key()
		if ka.PK != kb.PK {
			return ka.PK < kb.PK
		}
		return ka.SK < kb.SK
	})
	return items, nil
}

// Len returns the number of stored items. Test helper.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// copyItem protects stored state from caller mutation of the item map.
// Attribute values themselves are never mutated in place.
func copyItem(item Item) Item {
	dup := make(Item, len(item))
	for k, v := range item {
		dup[k] = v
	}
	return dup
}
