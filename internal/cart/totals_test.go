package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storefront/storefront-backend/pkg/enums"
)

// cartWithSubtotal builds a single-line cart whose subtotal equals amount.
func cartWithSubtotal(amount string, opts ...Option) *Cart {
	c := New(opts...)
	c.AddItem(product("sku", amount), "", "")
	return c
}

func TestSubtotalAndItemCount(t *testing.T) {
	c := New()
	c.AddItem(product("1", "10.50"), "", "")
	c.AddItem(product("1", "10.50"), "", "")
	c.AddItem(product("2", "3.00"), "", "")
	c.UpdateQuantity("2", 3)

	requireMoney(t, "30.00", c.Subtotal())
	assert.Equal(t, 5, c.ItemCount())
}

func TestDiscount(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		coupon   *Coupon
		want     string
	}{
		{name: "no coupon", subtotal: "100.00", want: "0"},
		{
			name:     "percentage without minimum",
			subtotal: "100.00",
			coupon:   &Coupon{Code: "P20", Discount: money("20"), Kind: enums.DiscountKindPercentage},
			want:     "20.00",
		},
		{
			name:     "fixed below minimum",
			subtotal: "40.00",
			coupon:   &Coupon{Code: "F30", Discount: money("30.00"), Kind: enums.DiscountKindFixed, MinOrderValue: moneyPtr("50.00")},
			want:     "0.00",
		},
		{
			name:     "fixed at minimum",
			subtotal: "50.00",
			coupon:   &Coupon{Code: "F30", Discount: money("30.00"), Kind: enums.DiscountKindFixed, MinOrderValue: moneyPtr("50.00")},
			want:     "30.00",
		},
		{
			name:     "unknown kind",
			subtotal: "50.00",
			coupon:   &Coupon{Code: "X", Discount: money("30.00"), Kind: "bogo"},
			want:     "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cartWithSubtotal(tt.subtotal)
			if tt.coupon != nil {
				c.ApplyCoupon(*tt.coupon)
			}
			requireMoney(t, tt.want, c.Discount())
		})
	}
}

func TestShippingApplied(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		shipping string
		want     string
	}{
		{name: "above threshold ships free", subtotal: "250.00", shipping: "15.00", want: "0"},
		{name: "exactly at threshold ships free", subtotal: "199.00", shipping: "15.00", want: "0"},
		{name: "below threshold pays shipping", subtotal: "100.00", shipping: "15.00", want: "15.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cartWithSubtotal(tt.subtotal)
			c.SetShipping(money(tt.shipping))
			requireMoney(t, tt.want, c.ShippingApplied())
		})
	}
}

func TestShippingThresholdOverride(t *testing.T) {
	c := cartWithSubtotal("100.00", WithFreeShippingThreshold(money("99.99")))
	c.SetShipping(money("15"))

	requireMoney(t, "0", c.ShippingApplied())
	requireMoney(t, "99.99", c.FreeShippingThreshold())
}

func TestTotal(t *testing.T) {
	c := cartWithSubtotal("100.00")
	c.SetShipping(money("15.00"))
	c.ApplyCoupon(Coupon{Code: "P20", Discount: money("20"), Kind: enums.DiscountKindPercentage})

	totals := c.Totals()
	requireMoney(t, "100.00", totals.Subtotal)
	requireMoney(t, "20.00", totals.Discount)
	requireMoney(t, "15.00", totals.Shipping)
	requireMoney(t, "95.00", totals.Total)
	assert.Equal(t, 1, totals.ItemCount)
	requireMoney(t, "95.00", c.Total())
}

func TestTotalNeverNegative(t *testing.T) {
	coupons := []Coupon{
		{Code: "HUGE", Discount: money("1000"), Kind: enums.DiscountKindFixed},
		{Code: "P500", Discount: money("500"), Kind: enums.DiscountKindPercentage},
		{Code: "P100", Discount: money("100"), Kind: enums.DiscountKindPercentage},
	}
	for _, subtotal := range []string{"0.01", "10", "198.99", "500"} {
		for _, coupon := range coupons {
			c := cartWithSubtotal(subtotal)
			c.SetShipping(money("5"))
			c.ApplyCoupon(coupon)
			assert.Falsef(t, c.Total().IsNegative(), "subtotal %s coupon %s gave %s", subtotal, coupon.Code, c.Total())
		}
	}
}

func TestEmptyCartTotals(t *testing.T) {
	c := New()
	c.SetShipping(money("12.50"))

	totals := c.Totals()
	requireMoney(t, "0", totals.Subtotal)
	requireMoney(t, "12.50", totals.Shipping)
	requireMoney(t, "12.50", totals.Total)
	assert.Zero(t, totals.ItemCount)
}
