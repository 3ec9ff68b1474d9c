package identity

import (
	"context"
)

// Registry is the slice of the identity-provider integration the deletion
// engine consumes: resolve a user's external subject for audit correlation,
// and sever the mapping once the account is gone.
type Registry interface {
	ResolveExternalID(ctx context.Context, userID string) (string, error)
	SeverMapping(ctx context.Context, userID string) error
}
