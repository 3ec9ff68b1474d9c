package identity

import (
	"context"
	"sync"
)

// MemRegistry is an in-memory Registry for tests.
type MemRegistry struct {
	mu       sync.Mutex
	mappings map[string]string
	severed  map[string]bool
}

func NewMemRegistry() *MemRegistry {
	return &MemRegistry{
		mappings: make(map[string]string),
		severed:  make(map[string]bool),
	}
}

func (r *MemRegistry) SetMapping(userID, externalID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mappings[userID] = externalID
}

func (r *MemRegistry) Severed(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.severed[userID]
}

func (r *MemRegistry) ResolveExternalID(ctx context.Context, userID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mappings[userID], nil
}

func (r *MemRegistry) SeverMapping(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.mappings, userID)
	r.severed[userID] = true
	return nil
}
