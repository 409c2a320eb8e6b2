package product

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/testdb"
)

func TestPostgres_UpsertListGetDelete(t *testing.T) {
	ctx := context.Background()
	pool := testdb.Pool(ctx, t)
	repo := NewPostgres(pool, nil)

	p, err := repo.Upsert(ctx, domain.Product{
		Key:        "silver-ring",
		Name:       "Silver Ring",
		Category:   "rings",
		Material:   "silver",
		PriceCents: 2500,
		Currency:   "USD",
		InStock:    true,
	})
	if err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected ID set")
	}

	updated, err := repo.Upsert(ctx, domain.Product{
		Key:         "silver-ring",
		Name:        "Hammered Silver Ring",
		Description: "hand hammered",
		Category:    "rings",
		Material:    "silver",
		PriceCents:  2800,
		Currency:    "USD",
		ImageURL:    "https://example.com/ring.jpg",
	})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if updated.ID != p.ID {
		t.Fatalf("expected same ID after update")
	}
	if updated.PriceCents != 2800 || updated.Description != "hand hammered" || updated.InStock {
		t.Fatalf("unexpected updated product %+v", updated)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 product, got %d", len(list))
	}

	got, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Hammered Silver Ring" {
		t.Fatalf("unexpected product %+v", got)
	}
	if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
