package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ShopFlow/internal/cart"
)

var ErrEmptyCart = cart.ErrEmpty

// Form is the checkout form: shipping, payment and, unless BillingSame,
// a separate billing address.
type Form struct {
	Shipping Address `json:"shipping"`

	CardNumber string `json:"card_number"`
	ExpiryDate string `json:"expiry_date"`
	CVV        string `json:"cvv"`
	NameOnCard string `json:"name_on_card"`

	BillingSame bool    `json:"billing_same"`
	Billing     Address `json:"billing"`
}

// ValidationError lists every form field that is missing or unusable.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid checkout form: " + strings.Join(e.Fields, ", ")
}

// Validate checks the shipping step, then the payment step, then the
// billing address when it differs from shipping.
func Validate(f Form) error {
	var bad []string
	need := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			bad = append(bad, name)
		}
	}

	need("shipping.first_name", f.Shipping.FirstName)
	need("shipping.last_name", f.Shipping.LastName)
	need("shipping.email", f.Shipping.Email)
	need("shipping.address", f.Shipping.Address)
	need("shipping.city", f.Shipping.City)
	need("shipping.state", f.Shipping.State)
	need("shipping.zip_code", f.Shipping.ZipCode)

	need("card_number", f.CardNumber)
	if strings.TrimSpace(f.CardNumber) != "" && len(cardDigits(f.CardNumber)) < 4 {
		bad = append(bad, "card_number")
	}
	need("expiry_date", f.ExpiryDate)
	need("cvv", f.CVV)
	need("name_on_card", f.NameOnCard)

	if !f.BillingSame {
		need("billing.address", f.Billing.Address)
		need("billing.city", f.Billing.City)
		need("billing.state", f.Billing.State)
		need("billing.zip_code", f.Billing.ZipCode)
	}

	if len(bad) > 0 {
		return &ValidationError{Fields: bad}
	}
	return nil
}

func cardDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

const defaultCountry = "United States"

// Checkout turns the cart into an order.
type Checkout struct {
	Cart   *cart.Store
	Orders Store
	Log    *zap.Logger

	Now   func() time.Time
	NewID func() string
}

func NewCheckout(c *cart.Store, orders Store, log *zap.Logger) *Checkout {
	if log == nil {
		log = zap.NewNop()
	}
	return &Checkout{
		Cart:   c,
		Orders: orders,
		Log:    log,
		Now:    func() time.Time { return time.Now().UTC() },
		NewID:  func() string { return "o_" + uuid.NewString() },
	}
}

// Place validates f, records an order priced from the current cart and
// empties the cart. The cart is only emptied once the order is stored.
func (c *Checkout) Place(ctx context.Context, f Form) (Order, error) {
	if err := Validate(f); err != nil {
		return Order{}, err
	}

	shipping := f.Shipping
	if shipping.Country == "" {
		shipping.Country = defaultCountry
	}
	billing := f.Billing
	if f.BillingSame {
		billing = shipping
	} else if billing.Country == "" {
		billing.Country = defaultCountry
	}

	var placed Order
	err := c.Cart.Settle(ctx, func(items []cart.LineItem) error {
		sum := cart.Price(items)
		o := Order{
			ID:       c.NewID(),
			Items:    items,
			Shipping: shipping,
			Billing:  billing,
			Payment: Payment{
				NameOnCard: strings.TrimSpace(f.NameOnCard),
				CardLast4:  last4(f.CardNumber),
			},
			SubtotalCents: sum.SubtotalCents,
			ShippingCents: sum.ShippingCents,
			TaxCents:      sum.TaxCents,
			TotalCents:    sum.TotalCents,
			Status:        StatusPlaced,
			CreatedAt:     c.Now(),
		}
		if err := c.Orders.Create(ctx, o); err != nil {
			return fmt.Errorf("store order: %w", err)
		}
		placed = o
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrEmptyCart) {
			c.Log.Error("checkout failed", zap.Error(err))
		}
		return Order{}, err
	}

	c.Log.Info("order placed",
		zap.String("order_id", placed.ID),
		zap.Int("lines", len(placed.Items)),
		zap.Int64("total_cents", placed.TotalCents),
	)
	return placed, nil
}

func last4(card string) string {
	d := cardDigits(card)
	if len(d) <= 4 {
		return d
	}
	return d[len(d)-4:]
}
