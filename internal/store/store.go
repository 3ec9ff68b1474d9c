package store

import (
	"context"
)

// Document is a single record in a logical table. Fields hold the JSON-shaped
// payload; ID is stable and unique within the table.
type Document struct {
	ID     string
	Fields map[string]any
}

// StringField returns a field coerced to string, or "" when absent.
func (d *Document) StringField(name string) string {
	v, ok := d.Fields[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// Filter is an equality match on a single field with bounded paging.
// AfterID, when set, restricts results to documents with IDs strictly greater,
// giving callers a stable cursor over an unchanging match set.
type Filter struct {
	Field   string
	Value   any
	AfterID string
	Limit   int
}

// DocumentStore is the storage contract the deletion engine runs against.
// Implementations must support equality filtering on a single field and
// bounded result pages; nothing more is assumed of the backing store.
type DocumentStore interface {
	Get(ctx context.Context, table, id string) (*Document, error)
	Query(ctx context.Context, table string, f Filter) ([]Document, error)
	Patch(ctx context.Context, table, id string, fields map[string]any) error
	Delete(ctx context.Context, table, id string) error
	Insert(ctx context.Context, table string, fields map[string]any) (string, error)
}
