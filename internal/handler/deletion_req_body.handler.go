package handler

// SelfDeleteRequest is the optional body for self-service account deletion.
type SelfDeleteRequest struct {
	Reason             string `json:"reason,omitempty"`
	DeleteStorageFiles *bool  `json:"delete_storage_files,omitempty"`
}

// AdminDeleteRequest is the body for admin-initiated deletion. Reason is
// mandatory and must be non-empty.
type AdminDeleteRequest struct {
	Reason                       string `json:"reason"`
	NewOwnerID                   string `json:"new_owner_id,omitempty"`
	DeleteStorageFiles           *bool  `json:"delete_storage_files,omitempty"`
	SkipExternalIdentityDeletion bool   `json:"skip_external_identity_deletion,omitempty"`
}
