package domain

import "time"

// Journal entry statuses.
const (
	JournalInProgress = "in_progress"
	JournalCompleted  = "completed"
	JournalFailed     = "failed"
)

// ProfileSnapshot captures the human-readable identity of the user before the
// record is destroyed, for forensic review after the row is gone.
type ProfileSnapshot struct {
	Email          string `json:"email,omitempty"`
	DisplayName    string `json:"display_name,omitempty"`
	Rank           string `json:"rank,omitempty"`
	AccountStatus  string `json:"account_status,omitempty"`
	DeletionStatus string `json:"deletion_status,omitempty"`
}

// DeletionScope describes what a cascade actually touched.
type DeletionScope struct {
	ProfileDeleted          bool     `json:"profile_deleted"`
	ExternalIdentityDeleted bool     `json:"external_identity_deleted"`
	StorageFilesDeleted     []string `json:"storage_files_deleted,omitempty"`
	RelatedTables           []string `json:"related_tables,omitempty"`
}

// DeletionAuditEntry is one row per cascade attempt, created in_progress before
// any destructive work and patched at completion or failure. It is never
// replaced, so an interrupted cascade leaves an inspectable partial record.
type DeletionAuditEntry struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	ExternalID        string          `json:"external_id,omitempty"`
	Profile           ProfileSnapshot `json:"profile"`
	InitiatorID       string          `json:"initiator_id"`
	InitiatorRole     string          `json:"initiator_role"`
	Reason            string          `json:"reason,omitempty"`
	Scope             DeletionScope   `json:"scope"`
	Status            string          `json:"status"`
	ChunksCascaded    int             `json:"chunks_cascaded"`
	RecordsDeleted    int             `json:"records_deleted"`
	RecordsAnonymized int             `json:"records_anonymized"`
	RecordsPreserved  int             `json:"records_preserved"`
	StartedAt         time.Time       `json:"started_at"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
	ErrorMessage      string          `json:"error_message,omitempty"`
}
