package cart

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/storefront-backend/pkg/enums"
)

func lineQuantities(c *Cart) map[string]int {
	out := map[string]int{}
	for _, item := range c.Items() {
		out[item.Key()] = item.Quantity
	}
	return out
}

func TestSnapshotRoundTripThroughJSON(t *testing.T) {
	stock := 3
	original := product("1", "49.90")
	original.OriginalPrice = moneyPtr("59.90")
	original.Sizes = []string{"M", "L"}
	original.Stock = &stock
	original.IsNew = true

	c := New()
	c.AddItem(original, "M", "blue")
	c.AddItem(original, "M", "blue")
	c.AddItem(original, "L", "")
	c.AddItem(product("2", "0.10"), "", "")
	c.UpdateQuantity("2", 7)
	c.ApplyCoupon(Coupon{Code: "P10", Discount: money("10"), Kind: enums.DiscountKindPercentage, MinOrderValue: moneyPtr("50")})
	c.SetShipping(money("15.00"))
	c.Toggle()

	payload, err := json.Marshal(c.Snapshot())
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(payload, &decoded))
	restored := Rehydrate(decoded)

	assert.Equal(t, lineQuantities(c), lineQuantities(restored))
	assert.True(t, restored.IsOpen())
	requireMoney(t, "15.00", restored.ShippingCost())
	require.NotNil(t, restored.AppliedCoupon())
	assert.Equal(t, "P10", restored.AppliedCoupon().Code)
	requireMoney(t, c.Total().String(), restored.Total())

	first := restored.Items()[0].Product
	requireMoney(t, "49.90", first.Price)
	requireMoney(t, "59.90", *first.OriginalPrice)
	assert.Equal(t, []string{"M", "L"}, first.Sizes)
	assert.Equal(t, 3, *first.Stock)
	assert.True(t, first.IsNew)
}

func TestSnapshotWireShape(t *testing.T) {
	c := New()
	c.AddItem(product("1", "20"), "M", "")
	c.SetShipping(money("15"))

	payload, err := json.Marshal(c.Snapshot())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(payload, &raw))
	assert.Contains(t, raw, "items")
	assert.Contains(t, raw, "isOpen")
	assert.Contains(t, raw, "shippingCost")
	assert.NotContains(t, raw, "appliedCoupon")
	assert.Equal(t, float64(15), raw["shippingCost"])

	items := raw["items"].([]any)
	line := items[0].(map[string]any)
	assert.Equal(t, "1", line["id"])
	assert.Equal(t, float64(20), line["price"])
	assert.Equal(t, float64(1), line["quantity"])
	assert.Equal(t, "M", line["selectedSize"])
}

func TestRehydrateSkipsInvalidRecords(t *testing.T) {
	snap := Snapshot{
		Items: []ItemRecord{
			{ProductRecord: ProductRecord{ID: "1", Name: "a", Price: 10}, Quantity: 2},
			{ProductRecord: ProductRecord{ID: "2", Name: "b", Price: 10}, Quantity: 0},
			{ProductRecord: ProductRecord{ID: "3", Name: "c", Price: 10}, Quantity: -4},
		},
		AppliedCoupon: &CouponRecord{Code: "WEIRD", Discount: 5, Type: "bogo"},
	}

	c := Rehydrate(snap)

	assert.Equal(t, map[string]int{"1--": 2}, lineQuantities(c))
	assert.Nil(t, c.AppliedCoupon())
}

func TestRehydrateCapsOversizedQuantities(t *testing.T) {
	snap := Snapshot{
		Items: []ItemRecord{
			{ProductRecord: ProductRecord{ID: "1", Name: "a", Price: 10}, SelectedSize: "M", Quantity: 9_000_000_000_000_000_000},
			{ProductRecord: ProductRecord{ID: "2", Name: "b", Price: 10}, Quantity: 3},
		},
	}

	done := make(chan *Cart, 1)
	go func() { done <- Rehydrate(snap) }()

	select {
	case c := <-done:
		assert.Equal(t, map[string]int{"1-M-": MaxLineQuantity, "2--": 3}, lineQuantities(c))
	case <-time.After(time.Second):
		t.Fatal("rehydrate did not finish")
	}
}

func TestRehydrateAppliesOptions(t *testing.T) {
	c := Rehydrate(Snapshot{}, WithFreeShippingThreshold(money("50")))
	requireMoney(t, "50", c.FreeShippingThreshold())
}

func TestNewView(t *testing.T) {
	c := New()
	c.AddItem(product("1", "33.333"), "", "")
	c.AddItem(product("1", "33.333"), "", "")
	c.AddItem(product("1", "33.333"), "", "")
	c.SetShipping(money("10"))

	view := NewView(c)

	assert.Equal(t, 100.0, view.Subtotal)
	assert.Equal(t, 10.0, view.Shipping)
	assert.Equal(t, 110.0, view.Total)
	assert.Equal(t, 3, view.ItemCount)
	assert.Equal(t, 199.0, view.FreeShippingThreshold)
	require.Len(t, view.Items, 1)
}
