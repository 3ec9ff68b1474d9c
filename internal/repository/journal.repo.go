package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"user-deletion-service/internal/domain"
	"user-deletion-service/internal/store"
	"user-deletion-service/pkg/xerrors"
)

// JournalTable holds one entry per cascade attempt. Entries are created
// in_progress and patched, never replaced.
const JournalTable = "deletion_audit_log"

type JournalRepository struct {
	store store.DocumentStore
}

func NewJournalRepository(s store.DocumentStore) *JournalRepository {
	return &JournalRepository{store: s}
}

// Create opens the audit entry before any destructive work begins. The id is
// a ULID, so store ordering by id is chronological.
func (r *JournalRepository) Create(ctx context.Context, entry *domain.DeletionAuditEntry) error {
	if entry.ID == "" {
		entry.ID = ulid.Make().String()
	}
	if entry.Status == "" {
		entry.Status = domain.JournalInProgress
	}

	fields, err := entryToFields(entry)
	if err != nil {
		return err
	}
	fields["id"] = entry.ID

	if _, err := r.store.Insert(ctx, JournalTable, fields); err != nil {
		return fmt.Errorf("failed to create deletion audit entry: %w", err)
	}
	return nil
}

// MarkCompleted patches the entry with final scope, counts and status.
func (r *JournalRepository) MarkCompleted(ctx context.Context, entry *domain.DeletionAuditEntry) error {
	now := time.Now().UTC()
	entry.Status = domain.JournalCompleted
	entry.CompletedAt = &now

	err := r.store.Patch(ctx, JournalTable, entry.ID, map[string]any{
		"status":             domain.JournalCompleted,
		"scope":              scopeToMap(entry.Scope),
		"chunks_cascaded":    entry.ChunksCascaded,
		"records_deleted":    entry.RecordsDeleted,
		"records_anonymized": entry.RecordsAnonymized,
		"records_preserved":  entry.RecordsPreserved,
		"completed_at":       now.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to finalize deletion audit entry %s: %w", entry.ID, err)
	}
	return nil
}

// MarkFailed patches the entry to failed with the error message and whatever
// progress counts were accumulated.
func (r *JournalRepository) MarkFailed(ctx context.Context, entry *domain.DeletionAuditEntry, errMsg string) error {
	now := time.Now().UTC()
	err := r.store.Patch(ctx, JournalTable, entry.ID, map[string]any{
		"status":             domain.JournalFailed,
		"error_message":      errMsg,
		"chunks_cascaded":    entry.ChunksCascaded,
		"records_deleted":    entry.RecordsDeleted,
		"records_anonymized": entry.RecordsAnonymized,
		"records_preserved":  entry.RecordsPreserved,
		"completed_at":       now.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to mark deletion audit entry %s failed: %w", entry.ID, err)
	}
	return nil
}

// LatestInProgress finds the most recent open entry for a subject. Used by
// failure handling when no entry handle survived the crash.
func (r *JournalRepository) LatestInProgress(ctx context.Context, userID string) (*domain.DeletionAuditEntry, error) {
	docs, err := r.store.Query(ctx, JournalTable, store.Filter{Field: "user_id", Value: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to query deletion audit entries for user %s: %w", userID, err)
	}

	var latest *domain.DeletionAuditEntry
	for i := range docs {
		entry, err := entryFromDoc(&docs[i])
		if err != nil {
			continue
		}
		if entry.Status != domain.JournalInProgress {
			continue
		}
		if latest == nil || entry.ID > latest.ID {
			latest = entry
		}
	}
	if latest == nil {
		return nil, xerrors.ErrJournalEntryNotFound
	}
	return latest, nil
}

// ListForUser returns every cascade attempt recorded for a subject, oldest first.
func (r *JournalRepository) ListForUser(ctx context.Context, userID string) ([]domain.DeletionAuditEntry, error) {
	docs, err := r.store.Query(ctx, JournalTable, store.Filter{Field: "user_id", Value: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to query deletion audit entries for user %s: %w", userID, err)
	}

	out := make([]domain.DeletionAuditEntry, 0, len(docs))
	for i := range docs {
		entry, err := entryFromDoc(&docs[i])
		if err != nil {
			continue
		}
		out = append(out, *entry)
	}
	return out, nil
}

func entryToFields(entry *domain.DeletionAuditEntry) (map[string]any, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to encode deletion audit entry: %w", err)
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode deletion audit entry: %w", err)
	}
	return fields, nil
}

func entryFromDoc(doc *store.Document) (*domain.DeletionAuditEntry, error) {
	data, err := json.Marshal(doc.Fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audit document %s: %w", doc.ID, err)
	}
	var entry domain.DeletionAuditEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode audit document %s: %w", doc.ID, err)
	}
	entry.ID = doc.ID
	return &entry, nil
}

func scopeToMap(s domain.DeletionScope) map[string]any {
	return map[string]any{
		"profile_deleted":           s.ProfileDeleted,
		"external_identity_deleted": s.ExternalIdentityDeleted,
		"storage_files_deleted":     s.StorageFilesDeleted,
		"related_tables":            s.RelatedTables,
	}
}
