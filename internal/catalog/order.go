package catalog

import (
	"github.com/storefront/storefront-backend/internal/cart"
	"github.com/storefront/storefront-backend/pkg/enums"
)

// Customer identifies who placed an order.
type Customer struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
	Address string `json:"address" validate:"required,max=300"`
}

// Order is the payload submitted to the backend orders endpoint. Totals are
// computed from the cart, never taken from the client.
type Order struct {
	Customer      Customer            `json:"customer"`
	Items         []cart.ItemRecord   `json:"items"`
	CouponCode    string              `json:"couponCode,omitempty"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod"`
	Notes         string              `json:"notes,omitempty"`
	Subtotal      float64             `json:"subtotal"`
	Discount      float64             `json:"discount"`
	Shipping      float64             `json:"shipping"`
	Total         float64             `json:"total"`
}
