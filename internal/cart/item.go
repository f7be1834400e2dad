package cart

import (
	"errors"
	"fmt"

	"ShopFlow/internal/catalog"
)

// MaxQuantity caps a single line.
const MaxQuantity = 9_999

var (
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 9999")
	ErrEmpty           = errors.New("cart is empty")
)

// LineItem is one cart row. Name, price and image are a snapshot of the
// product taken when it was first added and are never refreshed.
type LineItem struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Image      string `json:"image"`
	Quantity   int    `json:"quantity"`
}

func (it LineItem) LineTotalCents() int64 {
	return it.PriceCents * int64(it.Quantity)
}

func checkQuantity(qty int) error {
	if qty < 1 || qty > MaxQuantity {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, qty)
	}
	return nil
}

func snapshot(p catalog.Product, qty int) LineItem {
	return LineItem{
		ProductID:  p.ID,
		Name:       p.Name,
		PriceCents: p.PriceCents,
		Image:      p.PrimaryImage(),
		Quantity:   qty,
	}
}

func totals(items []LineItem) (count int, totalCents int64) {
	for _, it := range items {
		count += it.Quantity
		totalCents += it.LineTotalCents()
	}
	return count, totalCents
}

// normalize drops rows that violate the line item invariants and merges
// duplicate product ids into the first occurrence, capped at MaxQuantity.
// It reports whether
// anything changed.
func normalize(in []LineItem) ([]LineItem, bool) {
	out := make([]LineItem, 0, len(in))
	index := make(map[string]int, len(in))
	changed := false

	for _, it := range in {
		if it.ProductID == "" || it.Quantity < 1 || it.Quantity > MaxQuantity || it.PriceCents < 0 {
			changed = true
			continue
		}
		if i, dup := index[it.ProductID]; dup {
			out[i].Quantity = min(out[i].Quantity+it.Quantity, MaxQuantity)
			changed = true
			continue
		}
		index[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out, changed
}
