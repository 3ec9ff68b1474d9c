package usecase

import (
	"context"
	"time"
)

// Account deletion event types, consumed downstream by the audit pipeline.
const (
	EventDeletionStarted   = "account_deletion_started"
	EventDeletionCompleted = "account_deleted"
	EventDeletionFailed    = "account_deletion_failed"
)

// AccountDeletionMessage is the event published for every cascade transition.
type AccountDeletionMessage struct {
	EventType         string    `json:"event_type"`
	UserID            string    `json:"user_id"`
	ExternalID        string    `json:"external_id,omitempty"`
	InitiatorID       string    `json:"initiator_id"`
	InitiatorRole     string    `json:"initiator_role"`
	Reason            string    `json:"reason,omitempty"`
	JournalEntryID    string    `json:"journal_entry_id,omitempty"`
	RecordsDeleted    int       `json:"records_deleted,omitempty"`
	RecordsAnonymized int       `json:"records_anonymized,omitempty"`
	RecordsPreserved  int       `json:"records_preserved,omitempty"`
	ErrorMessage      string    `json:"error_message,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// DeletionEventProducer publishes cascade lifecycle events. Publishing is
// best-effort; a broker outage must never fail a cascade.
type DeletionEventProducer interface {
	PublishDeletionEvent(ctx context.Context, msg *AccountDeletionMessage) error
}
