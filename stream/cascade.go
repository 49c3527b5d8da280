// Package stream provides the DynamoDB Streams handler that cleans up an
// event's registrations and waitlist entries after the event is deleted.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/roster/internal/keys"
	"github.com/jacentio/roster/store"
)

// Handler processes stream records for cascade deletes.
type Handler struct {
	store    store.Store
	registry *Registry
	logger   *slog.Logger
}

// NewHandler creates a stream handler. A nil registry defaults to
// DefaultRegistry, a nil logger to slog.Default.
func NewHandler(s store.Store, registry *Registry, logger *slog.Logger) *Handler {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:    s,
		registry: registry,
		logger:   logger,
	}
}

// HandleCascadeDelete is the Lambda entrypoint. A failed record fails the
// batch so the stream redelivers it; every step is idempotent, so
// redelivery is safe.
func (h *Handler) HandleCascadeDelete(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err
		}
	}
	return nil
}

// processRecord handles one stream record. Only REMOVE of a parent
// metadata item triggers a cascade; everything else is ignored.
func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	if record.EventName != "REMOVE" {
		return nil
	}

	key := recordKey(record.Change.Keys)
	if key.SK != keys.Metadata {
		return nil
	}
	parentPrefix := pkPrefix(key.PK)
	if !h.registry.HasChildren(parentPrefix) {
		return nil
	}

	h.logger.Info("processing cascade delete", "parent", key.PK)

	deleted := 0
	for _, rel := range h.registry.ChildrenOf(parentPrefix) {
		n, err := h.deleteChildren(ctx, key.PK, rel)
		if err != nil {
			return fmt.Errorf("cascade %s%s: %w", key.PK, rel.ChildPrefix, err)
		}
		deleted += n
	}

	h.logger.Info("cascade delete completed",
		"parent", key.PK,
		"childrenDeleted", deleted,
	)
	return nil
}

// deleteChildren removes every child of the parent reachable through rel.
// Deletes are unconditional: a child already gone is a success.
func (h *Handler) deleteChildren(ctx context.Context, parentPK string, rel Relationship) (int, error) {
	var (
		items []store.Item
		err   error
	)
	if rel.ViaIndex {
		items, err = h.store.QueryIndex(ctx, parentPK, rel.ChildPrefix)
	} else {
		items, err = h.store.QueryPrefix(ctx, parentPK, rel.ChildPrefix, 0)
	}
	if err != nil {
		return 0, fmt.Errorf("query children: %w", err)
	}

	for _, item := range items {
		if err := h.store.Delete(ctx, item.Key(), store.Condition{}); err != nil {
			return 0, fmt.Errorf("delete child %s/%s: %w", item.Key().PK, item.Key().SK, err)
		}
	}
	return len(items), nil
}

// recordKey extracts the table key from a stream record's key image.
func recordKey(image map[string]events.DynamoDBAttributeValue) store.Key {
	return store.Key{
		PK: stringAttr(image, "PK"),
		SK: stringAttr(image, "SK"),
	}
}

// pkPrefix returns the kind prefix of a partition key, hash included.
func pkPrefix(pk string) string {
	i := strings.Index(pk, "#")
	if i < 0 {
		return pk
	}
	return pk[:i+1]
}

func stringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}
