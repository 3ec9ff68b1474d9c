package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"user-deletion-service/pkg/xerrors"
)

func TestMemStore_InsertGetPatchDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	id, err := s.Insert(ctx, "tasks", map[string]any{
		"owner_id": "42",
		"title":    "write report",
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	doc, err := s.Get(ctx, "tasks", id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc.StringField("owner_id") != "42" {
		t.Errorf("owner_id = %q, want 42", doc.StringField("owner_id"))
	}

	if err := s.Patch(ctx, "tasks", id, map[string]any{"owner_id": "7"}); err != nil {
		t.Fatalf("Patch failed: %v", err)
	}
	doc, _ = s.Get(ctx, "tasks", id)
	if doc.StringField("owner_id") != "7" {
		t.Errorf("owner_id after patch = %q, want 7", doc.StringField("owner_id"))
	}
	if doc.StringField("title") != "write report" {
		t.Errorf("patch must not clobber unrelated fields, title = %q", doc.StringField("title"))
	}

	if err := s.Delete(ctx, "tasks", id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "tasks", id); !errors.Is(err, xerrors.ErrDocNotFound) {
		t.Errorf("Get after delete = %v, want ErrDocNotFound", err)
	}
	if err := s.Delete(ctx, "tasks", id); !errors.Is(err, xerrors.ErrDocNotFound) {
		t.Errorf("double delete = %v, want ErrDocNotFound", err)
	}
}

func TestMemStore_QueryFilterAndPaging(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	for i := 0; i < 5; i++ {
		if _, err := s.Insert(ctx, "notes", map[string]any{
			"id":        fmt.Sprintf("n%02d", i),
			"author_id": "42",
		}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if _, err := s.Insert(ctx, "notes", map[string]any{"id": "zz", "author_id": "7"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	docs, err := s.Query(ctx, "notes", Filter{Field: "author_id", Value: "42"})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(docs) != 5 {
		t.Fatalf("matched %d docs, want 5", len(docs))
	}

	// Bounded page, then cursor past it.
	page, err := s.Query(ctx, "notes", Filter{Field: "author_id", Value: "42", Limit: 2})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page size = %d, want 2", len(page))
	}
	rest, err := s.Query(ctx, "notes", Filter{
		Field:   "author_id",
		Value:   "42",
		AfterID: page[len(page)-1].ID,
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(rest) != 3 {
		t.Fatalf("rest size = %d, want 3", len(rest))
	}

	// Unknown table is empty, not an error.
	docs, err = s.Query(ctx, "missing", Filter{Field: "x", Value: "y"})
	if err != nil || len(docs) != 0 {
		t.Errorf("Query on missing table = (%d docs, %v), want empty", len(docs), err)
	}
}

func TestMemStore_QueryOrderStable(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	for _, id := range []string{"c", "a", "b"} {
		if _, err := s.Insert(ctx, "tasks", map[string]any{"id": id, "owner_id": "42"}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	first, _ := s.Query(ctx, "tasks", Filter{Field: "owner_id", Value: "42"})
	second, _ := s.Query(ctx, "tasks", Filter{Field: "owner_id", Value: "42"})
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("query order not stable: %v vs %v", first, second)
		}
	}
	if first[0].ID != "a" || first[1].ID != "b" || first[2].ID != "c" {
		t.Errorf("expected id-sorted order, got %s %s %s", first[0].ID, first[1].ID, first[2].ID)
	}
}
