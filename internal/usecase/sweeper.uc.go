package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"user-deletion-service/internal/blob"
	"user-deletion-service/internal/domain"
	"user-deletion-service/internal/manifest"
	"user-deletion-service/internal/store"
	"user-deletion-service/pkg/xerrors"
)

// StorageSweeper enumerates every managed blob the user could own, directly
// on the profile or through blob-bearing fields on cascaded documents, and
// removes them from the binary store. It runs before the table cascade so the
// referencing documents still exist to be walked.
type StorageSweeper struct {
	store    store.DocumentStore
	blobs    blob.Store
	manifest *manifest.Manifest
	log      *zap.Logger
}

func NewStorageSweeper(s store.DocumentStore, blobs blob.Store, m *manifest.Manifest, log *zap.Logger) *StorageSweeper {
	return &StorageSweeper{store: s, blobs: blobs, manifest: m, log: log}
}

// Sweep deletes the user's blobs and returns the ids actually removed.
// Per-blob failures are logged and skipped; a missing blob is not an error.
func (s *StorageSweeper) Sweep(ctx context.Context, user *domain.User) []string {
	refs := s.collectRefs(ctx, user)

	var deleted []string
	for _, ref := range refs {
		if err := s.blobs.Delete(ctx, ref); err != nil {
			if errors.Is(err, xerrors.ErrBlobNotFound) {
				continue
			}
			s.log.Warn("failed to delete blob",
				zap.String("user_id", user.ID),
				zap.String("blob_id", ref),
				zap.Error(err))
			continue
		}
		deleted = append(deleted, ref)
	}
	return deleted
}

func (s *StorageSweeper) collectRefs(ctx context.Context, user *domain.User) []string {
	seen := make(map[string]bool)
	var refs []string
	add := func(ref string) {
		if blob.IsManagedRef(ref) && !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}

	add(user.ProfileImageID)

	for _, table := range s.manifest.CascadeTables() {
		entry, ok := s.manifest.Entry(table)
		if !ok || len(entry.BlobFields) == 0 {
			continue
		}
		batch := s.manifest.BatchSizeFor(table)

		for _, rule := range entry.Fields {
			afterID := ""
			for {
				docs, err := s.store.Query(ctx, table, store.Filter{
					Field:   rule.Name,
					Value:   user.ID,
					AfterID: afterID,
					Limit:   batch,
				})
				if err != nil {
					s.log.Warn("blob sweep query failed",
						zap.String("table", table),
						zap.String("field", rule.Name),
						zap.Error(err))
					break
				}
				if len(docs) == 0 {
					break
				}
				for _, doc := range docs {
					for _, bf := range entry.BlobFields {
						add(doc.StringField(bf))
					}
				}
				afterID = docs[len(docs)-1].ID
			}
		}
	}
	return refs
}
