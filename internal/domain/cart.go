package domain

import "strings"

// CartLine is one product in a shopper's cart. Name, price and image are a
// snapshot of the catalog taken when the product was first added.
type CartLine struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	ImageRef       string `json:"imageRef,omitempty"`
}

// NewCartLine builds a line from a catalog snapshot. A quantity below one is
// normalized to one, the default for a single "add to cart" gesture.
func NewCartLine(productID, name string, unitPriceCents int64, imageRef string, quantity int) CartLine {
	if quantity < 1 {
		quantity = 1
	}
	return CartLine{
		ProductID:      strings.TrimSpace(productID),
		Name:           name,
		UnitPriceCents: unitPriceCents,
		Quantity:       quantity,
		ImageRef:       imageRef,
	}
}

// TotalCents is the line's unit price times its quantity.
func (l CartLine) TotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// Cart is the prospective purchase of one cart session.
type Cart struct {
	SessionID  string     `json:"sessionId"`
	Lines      []CartLine `json:"lines"`
	TotalCents int64      `json:"totalCents"`
}

// NewCart hydrates a cart from previously stored lines. Lines are merged by
// product and the total is derived from them, never taken from storage.
func NewCart(sessionID string, lines []CartLine) *Cart {
	c := &Cart{SessionID: sessionID, Lines: []CartLine{}}
	for _, l := range lines {
		if l.ProductID == "" || l.Quantity < 1 {
			continue
		}
		if idx := c.indexOf(l.ProductID); idx >= 0 {
			c.Lines[idx].Quantity += l.Quantity
			continue
		}
		c.Lines = append(c.Lines, l)
	}
	c.Recalculate()
	return c
}

// Add merges line into the cart: an existing line for the same product has
// its quantity increased, otherwise the line is appended.
func (c *Cart) Add(line CartLine) {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	if idx := c.indexOf(line.ProductID); idx >= 0 {
		c.Lines[idx].Quantity += line.Quantity
	} else {
		c.Lines = append(c.Lines, line)
	}
	c.Recalculate()
}

// Remove deletes the line for productID. It reports whether a line existed.
func (c *Cart) Remove(productID string) bool {
	idx := c.indexOf(productID)
	if idx < 0 {
		c.Recalculate()
		return false
	}
	c.Lines = append(c.Lines[:idx], c.Lines[idx+1:]...)
	c.Recalculate()
	return true
}

// SetQuantity replaces the quantity of an existing line. A quantity of zero
// or less removes the line. It reports whether a line was affected.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	if quantity <= 0 {
		return c.Remove(productID)
	}
	idx := c.indexOf(productID)
	if idx < 0 {
		c.Recalculate()
		return false
	}
	c.Lines[idx].Quantity = quantity
	c.Recalculate()
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = []CartLine{}
	c.TotalCents = 0
}

// Recalculate derives TotalCents from the current lines.
func (c *Cart) Recalculate() {
	var total int64
	for _, l := range c.Lines {
		total += l.TotalCents()
	}
	c.TotalCents = total
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// ItemCount is the number of units across all lines.
func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Clone returns a deep copy that shares no line storage with c.
func (c *Cart) Clone() Cart {
	out := Cart{
		SessionID:  c.SessionID,
		Lines:      CloneLines(c.Lines),
		TotalCents: c.TotalCents,
	}
	return out
}

// CloneLines copies a line sequence.
func CloneLines(src []CartLine) []CartLine {
	out := make([]CartLine, len(src))
	copy(out, src)
	return out
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}
