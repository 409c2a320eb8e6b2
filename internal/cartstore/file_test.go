package cartstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"storefront/internal/domain"
)

func TestFileStoreLoadUnknownSession(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	lines, err := store.Load(context.Background(), "fresh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lines == nil || len(lines) != 0 {
		t.Fatalf("expected empty non-nil lines, got %#v", lines)
	}
}

func TestFileStoreSaveKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	in := []domain.CartLine{
		{ProductID: "p2", Name: "Chain", UnitPriceCents: 300, Quantity: 1},
		{ProductID: "p1", Name: "Ring", UnitPriceCents: 100, Quantity: 2, ImageRef: "ring.jpg"},
	}
	if err := store.Save(ctx, "sess_1", in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := store.Load(ctx, "sess_1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != 2 || out[0].ProductID != "p2" || out[1].ImageRef != "ring.jpg" {
		t.Fatalf("unexpected lines %+v", out)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "sess_1.json" {
		t.Fatalf("expected a single cart file, got %v", entries)
	}

	if err := store.Delete(ctx, "sess_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "sess_1.json")); !os.IsNotExist(err) {
		t.Fatalf("expected cart file removed, got %v", err)
	}
	if err := store.Delete(ctx, "sess_1"); err != nil {
		t.Fatalf("second delete should be a no-op, got %v", err)
	}
}

func TestFileStoreRejectsPathLikeSession(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	err = store.Save(context.Background(), "../escape", nil)
	if !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected invalid session, got %v", err)
	}
}
