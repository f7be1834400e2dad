package cart

const (
	FreeShippingThresholdCents int64 = 100_00
	StandardShippingCents      int64 = 9_99
	TaxRateBasisPoints         int64 = 800
)

// Summary is the priced view of a cart shown before checkout.
type Summary struct {
	Count         int   `json:"count"`
	SubtotalCents int64 `json:"subtotal_cents"`
	ShippingCents int64 `json:"shipping_cents"`
	TaxCents      int64 `json:"tax_cents"`
	TotalCents    int64 `json:"total_cents"`

	// FreeShippingRemainingCents is how much more must be added before
	// shipping becomes free; zero once it already is.
	FreeShippingRemainingCents int64 `json:"free_shipping_remaining_cents"`
}

// Price computes the summary for items. Shipping is free strictly above
// the threshold and nothing is charged for an empty cart. Tax is rounded
// half up to the cent.
func Price(items []LineItem) Summary {
	count, subtotal := totals(items)
	s := Summary{Count: count, SubtotalCents: subtotal}
	if count == 0 {
		return s
	}

	if subtotal <= FreeShippingThresholdCents {
		s.ShippingCents = StandardShippingCents
		s.FreeShippingRemainingCents = FreeShippingThresholdCents - subtotal + 1
	}
	s.TaxCents = (subtotal*TaxRateBasisPoints + 5_000) / 10_000
	s.TotalCents = subtotal + s.ShippingCents + s.TaxCents
	return s
}
