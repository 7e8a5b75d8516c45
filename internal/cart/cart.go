package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/storefront/storefront-backend/pkg/enums"
)

// DefaultFreeShippingThreshold is the subtotal at or above which shipping is waived.
var DefaultFreeShippingThreshold = decimal.RequireFromString("199.00")

// Product is the catalog snapshot carried into a cart line.
type Product struct {
	ID            string
	Name          string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Image         string
	Category      string
	Sizes         []string
	Colors        []string
	Stock         *int
	IsNew         bool
}

// Item is one cart line. Lines are identified by (product id, size, color).
type Item struct {
	Product       Product
	Quantity      int
	SelectedSize  string
	SelectedColor string
}

// Key returns the composite "id-size-color" line key.
func (i Item) Key() string {
	return LineKey(i.Product.ID, i.SelectedSize, i.SelectedColor)
}

// LineTotal is unit price times quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i Item) sameLine(productID, size, color string) bool {
	return i.Product.ID == productID && i.SelectedSize == size && i.SelectedColor == color
}

// LineKey builds the composite key accepted by RemoveItem and UpdateQuantity.
func LineKey(productID, size, color string) string {
	return fmt.Sprintf("%s-%s-%s", productID, size, color)
}

// Coupon is a discount applied to the whole cart.
type Coupon struct {
	Code          string
	Discount      decimal.Decimal
	Kind          enums.DiscountKind
	MinOrderValue *decimal.Decimal
}

// Cart holds the lines, applied coupon, shipping cost and drawer state of one
// shopper session. It is not safe for concurrent use; Service serializes
// access per session.
type Cart struct {
	items                 []Item
	coupon                *Coupon
	shippingCost          decimal.Decimal
	open                  bool
	freeShippingThreshold decimal.Decimal
}

// Option customizes a new Cart.
type Option func(*Cart)

// WithFreeShippingThreshold overrides DefaultFreeShippingThreshold.
func WithFreeShippingThreshold(threshold decimal.Decimal) Option {
	return func(c *Cart) {
		c.freeShippingThreshold = threshold
	}
}

// New returns an empty, closed cart.
func New(opts ...Option) *Cart {
	c := &Cart{
		shippingCost:          decimal.Zero,
		freeShippingThreshold: DefaultFreeShippingThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Items returns a copy of the cart lines in display order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// AppliedCoupon returns a copy of the applied coupon, or nil.
func (c *Cart) AppliedCoupon() *Coupon {
	if c.coupon == nil {
		return nil
	}
	cp := *c.coupon
	return &cp
}

func (c *Cart) ShippingCost() decimal.Decimal {
	return c.shippingCost
}

func (c *Cart) IsOpen() bool {
	return c.open
}

func (c *Cart) FreeShippingThreshold() decimal.Decimal {
	return c.freeShippingThreshold
}

// MaxLineQuantity bounds the units a single line can hold.
const MaxLineQuantity = 99

// AddItem increments the matching line or appends a new line with quantity 1.
func (c *Cart) AddItem(product Product, size, color string) {
	for idx := range c.items {
		if c.items[idx].sameLine(product.ID, size, color) {
			c.items[idx].Quantity++
			return
		}
	}
	c.items = append(c.items, Item{
		Product:       product,
		Quantity:      1,
		SelectedSize:  size,
		SelectedColor: color,
	})
}

// Quantity returns the units held by the line with the given composite key.
func (c *Cart) Quantity(key string) int {
	for _, item := range c.items {
		if item.Key() == key {
			return item.Quantity
		}
	}
	return 0
}

// addUnits adds units of a line in one step, capped at MaxLineQuantity.
func (c *Cart) addUnits(product Product, size, color string, units int) {
	if units <= 0 {
		return
	}
	c.AddItem(product, size, color)
	for idx := range c.items {
		if c.items[idx].sameLine(product.ID, size, color) {
			c.items[idx].Quantity = min(c.items[idx].Quantity+units-1, MaxLineQuantity)
			return
		}
	}
}

// RemoveItem drops every line whose composite key or bare product id equals key.
func (c *Cart) RemoveItem(key string) {
	kept := c.items[:0]
	for _, item := range c.items {
		if item.Key() == key || item.Product.ID == key {
			continue
		}
		kept = append(kept, item)
	}
	c.items = kept
}

// UpdateQuantity sets the quantity of the lines matching key, clamped to
// [0, MaxLineQuantity]. A composite key match wins; otherwise lines with a
// matching bare product id are updated. Lines that end at zero are dropped.
func (c *Cart) UpdateQuantity(key string, quantity int) {
	quantity = min(max(quantity, 0), MaxLineQuantity)

	match := func(item Item) bool { return item.Key() == key }
	if !c.any(match) {
		match = func(item Item) bool { return item.Product.ID == key }
	}

	kept := c.items[:0]
	for _, item := range c.items {
		if match(item) {
			if quantity == 0 {
				continue
			}
			item.Quantity = quantity
		}
		kept = append(kept, item)
	}
	c.items = kept
}

func (c *Cart) any(match func(Item) bool) bool {
	for _, item := range c.items {
		if match(item) {
			return true
		}
	}
	return false
}

// Clear removes all lines and the applied coupon. Shipping and the open flag stay.
func (c *Cart) Clear() {
	c.items = nil
	c.coupon = nil
}

// Toggle flips the drawer visibility flag.
func (c *Cart) Toggle() {
	c.open = !c.open
}

// ApplyCoupon replaces any previously applied coupon.
func (c *Cart) ApplyCoupon(coupon Coupon) {
	c.coupon = &coupon
}

func (c *Cart) RemoveCoupon() {
	c.coupon = nil
}

// SetShipping stores the quoted shipping cost as-is.
func (c *Cart) SetShipping(cost decimal.Decimal) {
	c.shippingCost = cost
}
