package catalog

import "errors"

var (
	ErrNotFound         = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
)

type Product struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	PriceCents         int64    `json:"price_cents"`
	OriginalPriceCents *int64   `json:"original_price_cents,omitempty"`
	Category           string   `json:"category"`
	Tags               []string `json:"tags"`
	Featured           bool     `json:"featured"`
	OnSale             bool     `json:"on_sale"`
	Images             []string `json:"images"`
	Rating             float64  `json:"rating"`
	ReviewCount        int      `json:"review_count"`
	InStock            bool     `json:"in_stock"`
}

// Clone returns a copy that shares no memory with p.
func (p Product) Clone() Product {
	out := p
	if p.OriginalPriceCents != nil {
		v := *p.OriginalPriceCents
		out.OriginalPriceCents = &v
	}
	if p.Tags != nil {
		out.Tags = append([]string(nil), p.Tags...)
	}
	if p.Images != nil {
		out.Images = append([]string(nil), p.Images...)
	}
	return out
}

// PrimaryImage is the first image, or "" when the product has none.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	ProductCount int    `json:"product_count"`
	Featured     bool   `json:"featured"`
}

func cloneProducts(in []Product) []Product {
	out := make([]Product, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}
