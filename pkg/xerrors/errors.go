package xerrors

import (
	"errors"
)

// Deletion cascade
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserIDRequired       = errors.New("user ID required")
	ErrInitiatorRequired    = errors.New("initiator ID required")
	ErrReasonRequired       = errors.New("reason is required for admin-initiated deletions")
	ErrDeletionCompleted    = errors.New("deletion already completed")
	ErrDeletionInProgress   = errors.New("deletion already in progress")
	ErrJournalEntryNotFound = errors.New("deletion audit entry not found")
)

// Store
var (
	ErrDocNotFound   = errors.New("document not found")
	ErrTableRequired = errors.New("table name required")
	ErrBlobNotFound  = errors.New("blob not found")
)
