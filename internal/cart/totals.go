package cart

import (
	"github.com/shopspring/decimal"

	"github.com/storefront/storefront-backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Totals bundles the derived monetary values of a cart.
type Totals struct {
	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Shipping  decimal.Decimal
	Total     decimal.Decimal
	ItemCount int
}

// Subtotal sums unit price times quantity over all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c.items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// Discount is zero without a coupon or below the coupon's minimum order value.
func (c *Cart) Discount() decimal.Decimal {
	return couponDiscount(c.coupon, c.Subtotal())
}

func couponDiscount(coupon *Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}
	if coupon.MinOrderValue != nil && subtotal.LessThan(*coupon.MinOrderValue) {
		return decimal.Zero
	}
	switch coupon.Kind {
	case enums.DiscountKindPercentage:
		return subtotal.Mul(coupon.Discount).Div(hundred)
	case enums.DiscountKindFixed:
		return coupon.Discount
	default:
		return decimal.Zero
	}
}

// ShippingApplied waives the stored shipping cost once the subtotal reaches
// the free-shipping threshold.
func (c *Cart) ShippingApplied() decimal.Decimal {
	return c.shippingFor(c.Subtotal())
}

func (c *Cart) shippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(c.freeShippingThreshold) {
		return decimal.Zero
	}
	return c.shippingCost
}

// Total is subtotal minus discount plus applied shipping, floored at zero.
func (c *Cart) Total() decimal.Decimal {
	return c.Totals().Total
}

// ItemCount sums the quantities of all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Totals computes every derived value from a single subtotal pass.
func (c *Cart) Totals() Totals {
	subtotal := c.Subtotal()
	discount := couponDiscount(c.coupon, subtotal)
	shipping := c.shippingFor(subtotal)

	total := subtotal.Sub(discount).Add(shipping)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal:  subtotal,
		Discount:  discount,
		Shipping:  shipping,
		Total:     total,
		ItemCount: c.ItemCount(),
	}
}
