package stream

import "github.com/jacentio/roster/internal/keys"

// Relationship declares how to find a parent's child items when the parent
// metadata item is removed.
type Relationship struct {
	// ParentPrefix is the PK prefix of the parent (e.g. "EVENT#").
	ParentPrefix string

	// ChildPrefix is the sort-key prefix of the child items (e.g. "REG#").
	ChildPrefix string

	// ViaIndex selects the query path: child items that live in another
	// partition are mirrored under the parent on GSI1 and must be resolved
	// through it.
	ViaIndex bool
}

// Registry holds the parent-child relationships the cascade walks.
type Registry struct {
	byParent map[string][]Relationship
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byParent: make(map[string][]Relationship)}
}

// Register adds a relationship.
func (r *Registry) Register(rel Relationship) {
	r.byParent[rel.ParentPrefix] = append(r.byParent[rel.ParentPrefix], rel)
}

// ChildrenOf returns the relationships for a parent prefix.
func (r *Registry) ChildrenOf(parentPrefix string) []Relationship {
	return r.byParent[parentPrefix]
}

// HasChildren reports whether the parent prefix has registered children.
func (r *Registry) HasChildren(parentPrefix string) bool {
	return len(r.byParent[parentPrefix]) > 0
}

// DefaultRegistry returns the relationships of the single-table layout:
// deleting an event orphans its registrations (mirrored on the index) and
// its waitlist entries (stored in the event partition).
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Relationship{
		ParentPrefix: keys.EventPrefix,
		ChildPrefix:  keys.RegPrefix,
		ViaIndex:     true,
	})
	r.Register(Relationship{
		ParentPrefix: keys.EventPrefix,
		ChildPrefix:  keys.WaitPrefix,
	})
	return r
}
