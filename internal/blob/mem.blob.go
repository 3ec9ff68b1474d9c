package blob

import (
	"context"
	"sync"

	"user-deletion-service/pkg/xerrors"
)

// MemStore is an in-memory blob store for tests.
type MemStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{blobs: make(map[string][]byte)}
}

func (s *MemStore) Put(blobID string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[blobID] = data
}

func (s *MemStore) Has(blobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[blobID]
	return ok
}

func (s *MemStore) Delete(ctx context.Context, blobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[blobID]; !ok {
		return xerrors.ErrBlobNotFound
	}
	delete(s.blobs, blobID)
	return nil
}
