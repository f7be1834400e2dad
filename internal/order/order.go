package order

import (
	"time"

	"ShopFlow/internal/cart"
)

const StatusPlaced = "PLACED"

type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
}

// Payment is what an order keeps of the card: never the full number.
type Payment struct {
	NameOnCard string `json:"name_on_card"`
	CardLast4  string `json:"card_last4"`
}

type Order struct {
	ID            string          `json:"id"`
	Items         []cart.LineItem `json:"items"`
	Shipping      Address         `json:"shipping"`
	Billing       Address         `json:"billing"`
	Payment       Payment         `json:"payment"`
	SubtotalCents int64           `json:"subtotal_cents"`
	ShippingCents int64           `json:"shipping_cents"`
	TaxCents      int64           `json:"tax_cents"`
	TotalCents    int64           `json:"total_cents"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}
