package domain

import "time"

// Product is a catalog entry of the jewelry shop.
type Product struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Material    string    `json:"material,omitempty"`
	PriceCents  int64     `json:"priceCents"`
	Currency    string    `json:"currency"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	InStock     bool      `json:"inStock"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CartLine snapshots the product's display data for a cart.
func (p Product) CartLine(quantity int) CartLine {
	return NewCartLine(p.ID, p.Name, p.PriceCents, p.ImageURL, quantity)
}
