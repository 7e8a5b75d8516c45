package cart

import (
	"github.com/shopspring/decimal"

	"github.com/storefront/storefront-backend/pkg/enums"
)

// Snapshot is the persisted "cart" document. Money is encoded as JSON numbers.
type Snapshot struct {
	Items         []ItemRecord  `json:"items"`
	IsOpen        bool          `json:"isOpen"`
	AppliedCoupon *CouponRecord `json:"appliedCoupon,omitempty"`
	ShippingCost  float64       `json:"shippingCost"`
}

// ProductRecord is the wire form of Product.
type ProductRecord struct {
	ID            string   `json:"id" validate:"required"`
	Name          string   `json:"name" validate:"required"`
	Price         float64  `json:"price" validate:"gte=0"`
	OriginalPrice *float64 `json:"originalPrice,omitempty" validate:"omitempty,gte=0"`
	Image         string   `json:"image"`
	Category      string   `json:"category"`
	Sizes         []string `json:"sizes,omitempty"`
	Colors        []string `json:"colors,omitempty"`
	Stock         *int     `json:"stock,omitempty"`
	IsNew         bool     `json:"isNew"`
}

// ItemRecord is a product record flattened with its line attributes.
type ItemRecord struct {
	ProductRecord
	Quantity      int    `json:"quantity"`
	SelectedSize  string `json:"selectedSize,omitempty"`
	SelectedColor string `json:"selectedColor,omitempty"`
}

// CouponRecord is the wire form of Coupon.
type CouponRecord struct {
	Code     string   `json:"code" validate:"required"`
	Discount float64  `json:"discount" validate:"gte=0"`
	Type     string   `json:"type" validate:"required,oneof=percentage fixed"`
	MinValue *float64 `json:"minValue,omitempty" validate:"omitempty,gte=0"`
}

// ToProduct converts the record into a domain Product.
func (r ProductRecord) ToProduct() Product {
	return Product{
		ID:            r.ID,
		Name:          r.Name,
		Price:         decimal.NewFromFloat(r.Price),
		OriginalPrice: decimalPtr(r.OriginalPrice),
		Image:         r.Image,
		Category:      r.Category,
		Sizes:         cloneStrings(r.Sizes),
		Colors:        cloneStrings(r.Colors),
		Stock:         cloneInt(r.Stock),
		IsNew:         r.IsNew,
	}
}

// NewProductRecord converts a domain Product into its wire form.
func NewProductRecord(p Product) ProductRecord {
	return ProductRecord{
		ID:            p.ID,
		Name:          p.Name,
		Price:         p.Price.InexactFloat64(),
		OriginalPrice: floatPtr(p.OriginalPrice),
		Image:         p.Image,
		Category:      p.Category,
		Sizes:         cloneStrings(p.Sizes),
		Colors:        cloneStrings(p.Colors),
		Stock:         cloneInt(p.Stock),
		IsNew:         p.IsNew,
	}
}

// ToCoupon converts the record into a domain Coupon. ok is false when the
// discount type is unknown.
func (r CouponRecord) ToCoupon() (Coupon, bool) {
	kind, err := enums.ParseDiscountKind(r.Type)
	if err != nil {
		return Coupon{}, false
	}
	return Coupon{
		Code:          r.Code,
		Discount:      decimal.NewFromFloat(r.Discount),
		Kind:          kind,
		MinOrderValue: decimalPtr(r.MinValue),
	}, true
}

// NewCouponRecord converts a domain Coupon into its wire form.
func NewCouponRecord(c Coupon) CouponRecord {
	return CouponRecord{
		Code:     c.Code,
		Discount: c.Discount.InexactFloat64(),
		Type:     c.Kind.String(),
		MinValue: floatPtr(c.MinOrderValue),
	}
}

// Snapshot captures the full cart state for persistence.
func (c *Cart) Snapshot() Snapshot {
	snap := Snapshot{
		Items:        make([]ItemRecord, 0, len(c.items)),
		IsOpen:       c.open,
		ShippingCost: c.shippingCost.InexactFloat64(),
	}
	for _, item := range c.items {
		snap.Items = append(snap.Items, ItemRecord{
			ProductRecord: NewProductRecord(item.Product),
			Quantity:      item.Quantity,
			SelectedSize:  item.SelectedSize,
			SelectedColor: item.SelectedColor,
		})
	}
	if c.coupon != nil {
		record := NewCouponRecord(*c.coupon)
		snap.AppliedCoupon = &record
	}
	return snap
}

// Rehydrate rebuilds a cart by replaying every stored line through AddItem
// and restoring its quantity in the same step, then restores the coupon,
// shipping cost and drawer flag. Lines with a non-positive quantity are
// skipped; larger quantities are capped at MaxLineQuantity.
func Rehydrate(snap Snapshot, opts ...Option) *Cart {
	c := New(opts...)
	for _, record := range snap.Items {
		c.addUnits(record.ToProduct(), record.SelectedSize, record.SelectedColor, record.Quantity)
	}
	if snap.AppliedCoupon != nil {
		if coupon, ok := snap.AppliedCoupon.ToCoupon(); ok {
			c.ApplyCoupon(coupon)
		}
	}
	c.SetShipping(decimal.NewFromFloat(snap.ShippingCost))
	c.open = snap.IsOpen
	return c
}

func decimalPtr(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}

func floatPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}
