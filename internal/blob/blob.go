package blob

import (
	"context"
	"strings"
)

// Store is the binary store contract. Delete must tolerate blobs that are
// already gone; a missing blob is not an error condition for the sweeper.
type Store interface {
	Delete(ctx context.Context, blobID string) error
}

// IsManagedRef reports whether s is a managed blob identifier rather than an
// already-externalized URL. Historical records sometimes carry a direct link
// instead of a storage id; only managed references may be deleted.
func IsManagedRef(s string) bool {
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return false
	}
	return !strings.ContainsAny(s, " \t\n")
}
