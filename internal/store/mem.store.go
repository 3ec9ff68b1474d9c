package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"user-deletion-service/pkg/xerrors"
)

// MemStore is a thread-safe in-memory DocumentStore used by tests and local
// development. Structure: [table][id]fields.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]map[string]map[string]any
}

func NewMemStore() *MemStore {
	return &MemStore{
		data: make(map[string]map[string]map[string]any),
	}
}

func (m *MemStore) Get(ctx context.Context, table, id string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs, ok := m.data[table]
	if !ok {
		return nil, xerrors.ErrDocNotFound
	}
	fields, ok := docs[id]
	if !ok {
		return nil, xerrors.ErrDocNotFound
	}
	return &Document{ID: id, Fields: copyFields(fields)}, nil
}

func (m *MemStore) Query(ctx context.Context, table string, f Filter) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs, ok := m.data[table]
	if !ok {
		return nil, nil
	}

	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []Document
	for _, id := range ids {
		if f.AfterID != "" && id <= f.AfterID {
			continue
		}
		if f.Field != "" && !valuesEqual(docs[id][f.Field], f.Value) {
			continue
		}
		out = append(out, Document{ID: id, Fields: copyFields(docs[id])})
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

func (m *MemStore) Patch(ctx context.Context, table, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs, ok := m.data[table]
	if !ok {
		return xerrors.ErrDocNotFound
	}
	doc, ok := docs[id]
	if !ok {
		return xerrors.ErrDocNotFound
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (m *MemStore) Delete(ctx context.Context, table, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	docs, ok := m.data[table]
	if !ok {
		return xerrors.ErrDocNotFound
	}
	if _, ok := docs[id]; !ok {
		return xerrors.ErrDocNotFound
	}
	delete(docs, id)
	return nil
}

func (m *MemStore) Insert(ctx context.Context, table string, fields map[string]any) (string, error) {
	if table == "" {
		return "", xerrors.ErrTableRequired
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	if v, ok := fields["id"].(string); ok && v != "" {
		id = v
	}
	if m.data[table] == nil {
		m.data[table] = make(map[string]map[string]any)
	}
	m.data[table][id] = copyFields(fields)
	delete(m.data[table][id], "id")
	return id, nil
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// valuesEqual compares via text rendering, matching the Postgres
// implementation's data->>field text comparison.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
