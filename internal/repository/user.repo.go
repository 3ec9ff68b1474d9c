package repository

import (
	"context"
	"fmt"
	"time"

	"user-deletion-service/internal/domain"
	"user-deletion-service/internal/store"
	"user-deletion-service/pkg/xerrors"
)

// UsersTable is the root user collection.
const UsersTable = "users"

type UserRepository struct {
	store store.DocumentStore
}

func NewUserRepository(s store.DocumentStore) *UserRepository {
	return &UserRepository{store: s}
}

func (r *UserRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	doc, err := r.store.Get(ctx, UsersTable, userID)
	if err != nil {
		if err == xerrors.ErrDocNotFound {
			return nil, xerrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	return userFromDoc(doc), nil
}

// MarkTombstone flips the record to pending and stamps deleted_at. From this
// point the record belongs to the deletion engine.
func (r *UserRepository) MarkTombstone(ctx context.Context, userID string, now time.Time) error {
	err := r.store.Patch(ctx, UsersTable, userID, map[string]any{
		"deletion_status": string(domain.DeletionPending),
		"deleted_at":      now.UTC().Format(time.RFC3339Nano),
		"updated_at":      now.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to tombstone user %s: %w", userID, err)
	}
	return nil
}

// MarkFailed records a failed cascade. The tombstone timestamp is kept so the
// staleness check can admit a retry.
func (r *UserRepository) MarkFailed(ctx context.Context, userID string) error {
	err := r.store.Patch(ctx, UsersTable, userID, map[string]any{
		"deletion_status": string(domain.DeletionFailed),
	})
	if err != nil {
		return fmt.Errorf("failed to mark user %s deletion failed: %w", userID, err)
	}
	return nil
}

// DeleteUser removes the root record entirely. The tombstone pattern exists so
// the row can be fully removed once the cascade finishes.
func (r *UserRepository) DeleteUser(ctx context.Context, userID string) error {
	if err := r.store.Delete(ctx, UsersTable, userID); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	return nil
}

func userFromDoc(doc *store.Document) *domain.User {
	u := &domain.User{
		ID:             doc.ID,
		ExternalID:     doc.StringField("external_id"),
		Email:          doc.StringField("email"),
		FirstName:      doc.StringField("first_name"),
		LastName:       doc.StringField("last_name"),
		DisplayName:    doc.StringField("display_name"),
		Rank:           doc.StringField("rank"),
		AccountStatus:  doc.StringField("account_status"),
		ProfileImageID: doc.StringField("profile_image_id"),
		DeletionStatus: domain.DeletionStatus(doc.StringField("deletion_status")),
	}
	if ts := doc.StringField("deleted_at"); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			u.DeletedAt = &t
		}
	}
	if ts := doc.StringField("created_at"); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			u.CreatedAt = t
		}
	}
	if ts := doc.StringField("updated_at"); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			u.UpdatedAt = t
		}
	}
	return u
}
