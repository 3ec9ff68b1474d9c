package domain

import (
	"time"
)

// DeletionStatus tracks where a user record sits in the deletion lifecycle.
type DeletionStatus string

const (
	DeletionNone      DeletionStatus = ""
	DeletionPending   DeletionStatus = "pending"
	DeletionCompleted DeletionStatus = "completed"
	DeletionFailed    DeletionStatus = "failed"
)

// User represents the root user record. Once a cascade begins, the record is
// exclusively mutated by the deletion engine until it is removed entirely.
type User struct {
	ID             string         `json:"id"`
	ExternalID     string         `json:"external_id,omitempty"` // identity-provider subject, if cached locally
	Email          string         `json:"email,omitempty"`
	FirstName      string         `json:"first_name,omitempty"`
	LastName       string         `json:"last_name,omitempty"`
	DisplayName    string         `json:"display_name,omitempty"`
	Rank           string         `json:"rank,omitempty"`
	AccountStatus  string         `json:"account_status,omitempty"`
	ProfileImageID string         `json:"profile_image_id,omitempty"`
	DeletionStatus DeletionStatus `json:"deletion_status,omitempty"`
	DeletedAt      *time.Time     `json:"deleted_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TombstoneAge returns how long ago the record was tombstoned, or zero if it
// never was.
func (u *User) TombstoneAge(now time.Time) time.Duration {
	if u.DeletedAt == nil {
		return 0
	}
	return now.Sub(*u.DeletedAt)
}
