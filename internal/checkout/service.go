package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/storefront/storefront-backend/internal/cart"
	"github.com/storefront/storefront-backend/internal/catalog"
	"github.com/storefront/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefront/storefront-backend/pkg/errors"
	"github.com/storefront/storefront-backend/pkg/logger"
)

type orderCreator interface {
	CreateOrder(ctx context.Context, storeID int64, order catalog.Order) (json.RawMessage, error)
}

// Service turns a session cart into a backend order.
type Service interface {
	Execute(ctx context.Context, key cart.SessionKey, input CheckoutInput) (json.RawMessage, error)
}

// CheckoutInput captures what the shopper submits at checkout.
type CheckoutInput struct {
	Customer      catalog.Customer    `json:"customer" validate:"required"`
	PaymentMethod enums.PaymentMethod `json:"paymentMethod" validate:"required"`
	Notes         string              `json:"notes" validate:"omitempty,max=500"`
}

type service struct {
	carts  cart.Service
	orders orderCreator
	logg   *logger.Logger
}

// NewService builds the checkout service.
func NewService(carts cart.Service, orders orderCreator, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order creator required")
	}
	return &service{carts: carts, orders: orders, logg: logg}, nil
}

func (s *service) Execute(ctx context.Context, key cart.SessionKey, input CheckoutInput) (json.RawMessage, error) {
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method").
			WithDetails(map[string]any{"field": "paymentMethod"})
	}

	current, err := s.carts.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(current.Items()) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
	}

	created, err := s.orders.CreateOrder(ctx, key.StoreID, buildOrder(current, input))
	if err != nil {
		return nil, err
	}

	// The order exists at this point; a stale cart is only an annoyance.
	if err := s.carts.Discard(ctx, key); err != nil && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"store_id": key.StoreID})
		s.logg.Error(logCtx, "checkout.cart_discard_failed", err)
	}
	return created, nil
}

func buildOrder(c *cart.Cart, input CheckoutInput) catalog.Order {
	view := cart.NewView(c)
	order := catalog.Order{
		Customer:      trimCustomer(input.Customer),
		Items:         view.Items,
		PaymentMethod: input.PaymentMethod,
		Notes:         strings.TrimSpace(input.Notes),
		Subtotal:      view.Subtotal,
		Discount:      view.Discount,
		Shipping:      view.Shipping,
		Total:         view.Total,
	}
	if coupon := c.AppliedCoupon(); coupon != nil {
		order.CouponCode = coupon.Code
	}
	return order
}

func trimCustomer(c catalog.Customer) catalog.Customer {
	return catalog.Customer{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.TrimSpace(c.Email),
		Phone:   strings.TrimSpace(c.Phone),
		Address: strings.TrimSpace(c.Address),
	}
}
