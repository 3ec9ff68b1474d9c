package domain

import "time"

// Initiator roles recorded on the audit entry.
const (
	InitiatorSelf   = "self"
	InitiatorAdmin  = "admin"
	InitiatorSystem = "system"
)

// CascadeOptions controls a single deletion cascade invocation.
type CascadeOptions struct {
	// NewOwnerID is the target for reassign-strategy tables. A reassign table
	// with no target is a configuration error; the field is skipped, not silently deleted.
	NewOwnerID string `json:"new_owner_id,omitempty"`

	// DeleteStorageFiles controls the blob sweep. Defaults to true.
	DeleteStorageFiles *bool `json:"delete_storage_files,omitempty"`

	// SkipExternalIdentityDeletion leaves the identity-provider mapping intact.
	SkipExternalIdentityDeletion bool `json:"skip_external_identity_deletion,omitempty"`

	// Reason is free text. Required (non-empty) for admin-initiated deletions.
	Reason string `json:"reason,omitempty"`

	// InitiatorRole is self, admin or system.
	InitiatorRole string `json:"initiator_role,omitempty"`
}

// SweepStorage resolves the DeleteStorageFiles default.
func (o CascadeOptions) SweepStorage() bool {
	if o.DeleteStorageFiles == nil {
		return true
	}
	return *o.DeleteStorageFiles
}

// CascadeResult is returned to the caller. It is not persisted; the audit
// journal entry is the durable record.
type CascadeResult struct {
	Success           bool          `json:"success"`
	UserID            string        `json:"user_id"`
	TablesProcessed   []string      `json:"tables_processed"`
	RecordsDeleted    int           `json:"records_deleted"`
	RecordsAnonymized int           `json:"records_anonymized"`
	RecordsPreserved  int           `json:"records_preserved"`
	RecordsReassigned int           `json:"records_reassigned"`
	DeletedBlobIDs    []string      `json:"deleted_blob_ids,omitempty"`
	ChunksCascaded    int           `json:"chunks_cascaded"`
	Duration          time.Duration `json:"duration"`
	ErrorMessage      string        `json:"error_message,omitempty"`
}
