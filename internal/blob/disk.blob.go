package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"user-deletion-service/pkg/xerrors"
)

// DiskStore keeps blobs as flat files under a root upload directory.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create blob dir %s: %w", root, err)
		}
	}
	return &DiskStore{root: root}, nil
}

func (s *DiskStore) Delete(ctx context.Context, blobID string) error {
	path, err := s.resolve(blobID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return xerrors.ErrBlobNotFound
		}
		return fmt.Errorf("failed to delete blob %s: %w", blobID, err)
	}
	return nil
}

// resolve rejects ids that would escape the upload root.
func (s *DiskStore) resolve(blobID string) (string, error) {
	if blobID == "" || strings.Contains(blobID, "..") {
		return "", fmt.Errorf("invalid blob id %q", blobID)
	}
	path := filepath.Join(s.root, filepath.Clean(blobID))
	if !strings.HasPrefix(path, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid blob id %q", blobID)
	}
	return path, nil
}
