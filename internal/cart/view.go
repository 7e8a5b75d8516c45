package cart

import "github.com/shopspring/decimal"

// View is the API representation of a cart: the snapshot plus derived totals
// rounded to cents.
type View struct {
	Snapshot
	Subtotal              float64 `json:"subtotal"`
	Discount              float64 `json:"discount"`
	Shipping              float64 `json:"shipping"`
	Total                 float64 `json:"total"`
	ItemCount             int     `json:"itemCount"`
	FreeShippingThreshold float64 `json:"freeShippingThreshold"`
}

// NewView renders c for API responses.
func NewView(c *Cart) View {
	totals := c.Totals()
	return View{
		Snapshot:              c.Snapshot(),
		Subtotal:              cents(totals.Subtotal),
		Discount:              cents(totals.Discount),
		Shipping:              cents(totals.Shipping),
		Total:                 cents(totals.Total),
		ItemCount:             totals.ItemCount,
		FreeShippingThreshold: cents(c.freeShippingThreshold),
	}
}

func cents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
