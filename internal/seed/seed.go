package seed

import (
	"context"
	"fmt"

	"storefront/internal/domain"
)

// ProductWriter stores catalog entries keyed by product key.
type ProductWriter interface {
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}

// Catalog is the demo jewelry collection used for manual testing.
var Catalog = []domain.Product{
	{
		Key:         "silver-leaf-ring",
		Name:        "Silver Leaf Ring",
		Description: "Hand-forged sterling silver band with a hammered leaf motif",
		Category:    "rings",
		Material:    "sterling silver",
		PriceCents:  2500,
		ImageURL:    "/images/silver-leaf-ring.jpg",
		InStock:     true,
	},
	{
		Key:         "amber-drop-earrings",
		Name:        "Amber Drop Earrings",
		Description: "Baltic amber teardrops on gold-filled hooks",
		Category:    "earrings",
		Material:    "amber",
		PriceCents:  3400,
		ImageURL:    "/images/amber-drop-earrings.jpg",
		InStock:     true,
	},
	{
		Key:         "seed-bead-bracelet",
		Name:        "Seed Bead Bracelet",
		Description: "Loom-woven glass seed beads in a river pattern",
		Category:    "bracelets",
		Material:    "glass",
		PriceCents:  1500,
		ImageURL:    "/images/seed-bead-bracelet.jpg",
		InStock:     true,
	},
	{
		Key:         "moonstone-pendant",
		Name:        "Moonstone Pendant",
		Description: "Rainbow moonstone cabochon in a copper bezel",
		Category:    "necklaces",
		Material:    "copper",
		PriceCents:  4200,
		ImageURL:    "/images/moonstone-pendant.jpg",
		InStock:     true,
	},
	{
		Key:         "brass-cuff",
		Name:        "Textured Brass Cuff",
		Description: "Open cuff with a bark texture, adjustable",
		Category:    "bracelets",
		Material:    "brass",
		PriceCents:  2800,
		ImageURL:    "/images/brass-cuff.jpg",
		InStock:     false,
	},
}

// Apply upserts the demo catalog. It is idempotent since products are keyed.
func Apply(ctx context.Context, products ProductWriter) (int, error) {
	for i, p := range Catalog {
		if _, err := products.Upsert(ctx, p); err != nil {
			return i, fmt.Errorf("upsert product %s: %w", p.Key, err)
		}
	}
	return len(Catalog), nil
}
