package blob

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"user-deletion-service/pkg/xerrors"
)

func TestIsManagedRef(t *testing.T) {
	cases := []struct {
		ref  string
		want bool
	}{
		{"kg2abc123", true},
		{"avatars/user-42.png", true},
		{"", false},
		{"https://cdn.example.com/x.png", false},
		{"http://legacy.example.com/y.jpg", false},
		{"has space", false},
	}
	for _, c := range cases {
		if got := IsManagedRef(c.ref); got != c.want {
			t.Errorf("IsManagedRef(%q) = %v, want %v", c.ref, got, c.want)
		}
	}
}

func TestDiskStore_Delete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := NewDiskStore(dir)
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}

	path := filepath.Join(dir, "blob-1")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.Delete(ctx, "blob-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("blob file still exists")
	}

	if err := s.Delete(ctx, "blob-1"); !errors.Is(err, xerrors.ErrBlobNotFound) {
		t.Errorf("double delete = %v, want ErrBlobNotFound", err)
	}
}

func TestDiskStore_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"../../etc/passwd", "..", ""} {
		if err := s.Delete(ctx, id); err == nil {
			t.Errorf("Delete(%q) accepted a traversal id", id)
		}
	}
}

func TestMemStore_DeleteTolerant(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	s.Put("b1", []byte("x"))

	if err := s.Delete(ctx, "b1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, "b1"); !errors.Is(err, xerrors.ErrBlobNotFound) {
		t.Errorf("missing blob = %v, want ErrBlobNotFound", err)
	}
}
