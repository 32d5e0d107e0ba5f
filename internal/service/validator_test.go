package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"coupon-service/internal/model"
)

func i64(v int64) *int64 { return &v }

func testCoupon() *model.Coupon {
	return &model.Coupon{
		SiteID:        "site-1",
		Code:          "SUMMER10",
		DiscountType:  model.DiscountPercentage,
		DiscountValue: 10,
		ValidFrom:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:    time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
	}
}

var midWindow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func TestEvaluateCheckOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Coupon)
		now    time.Time
		amount int64
		reason Reason
	}{
		{
			name:   "inactive",
			mutate: func(c *model.Coupon) { c.IsActive = false },
			now:    midWindow,
			amount: 10000,
			reason: ReasonNotActive,
		},
		{
			// An inactive coupon reports not_active even when it is also
			// expired: the check order is fixed.
			name: "inactive wins over expired",
			mutate: func(c *model.Coupon) {
				c.IsActive = false
				c.ValidUntil = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
			},
			now:    midWindow,
			amount: 10000,
			reason: ReasonNotActive,
		},
		{
			name:   "before window",
			mutate: func(c *model.Coupon) {},
			now:    time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			amount: 10000,
			reason: ReasonNotYetValid,
		},
		{
			name:   "after window",
			mutate: func(c *model.Coupon) {},
			now:    time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
			amount: 10000,
			reason: ReasonExpired,
		},
		{
			name: "usage exhausted",
			mutate: func(c *model.Coupon) {
				c.MaxUses = i64(100)
				c.UsedCount = 100
			},
			now:    midWindow,
			amount: 10000,
			reason: ReasonUsageExceeded,
		},
		{
			name: "expired wins over exhausted",
			mutate: func(c *model.Coupon) {
				c.MaxUses = i64(1)
				c.UsedCount = 1
			},
			now:    time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
			amount: 10000,
			reason: ReasonExpired,
		},
		{
			name:   "below minimum purchase",
			mutate: func(c *model.Coupon) { c.MinPurchase = i64(5000) },
			now:    midWindow,
			amount: 4999,
			reason: ReasonBelowMinPurchase,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCoupon()
			tt.mutate(c)

			res := Evaluate(c, tt.amount, tt.now)
			assert.False(t, res.Valid)
			assert.Equal(t, tt.reason, res.Reason)
			assert.Zero(t, res.Discount)
		})
	}
}

func TestEvaluateWindowBoundsInclusive(t *testing.T) {
	c := testCoupon()

	assert.True(t, Evaluate(c, 10000, c.ValidFrom).Valid)
	assert.True(t, Evaluate(c, 10000, c.ValidUntil).Valid)
}

func TestEvaluateOptionalConstraintsAbsent(t *testing.T) {
	c := testCoupon()
	c.UsedCount = 1_000_000 // no max_uses, so usage never blocks

	res := Evaluate(c, 1, midWindow)
	assert.True(t, res.Valid)
}

func TestEvaluatePercentageDiscount(t *testing.T) {
	c := testCoupon()

	res := Evaluate(c, 10000, midWindow)
	assert.True(t, res.Valid)
	assert.Equal(t, int64(1000), res.Discount)
}

func TestEvaluatePercentageFloors(t *testing.T) {
	c := testCoupon()
	c.DiscountValue = 3

	// 3% of 101 = 3.03, floored to 3 minor units.
	res := Evaluate(c, 101, midWindow)
	assert.True(t, res.Valid)
	assert.Equal(t, int64(3), res.Discount)
}

func TestEvaluateFixedDiscountCapped(t *testing.T) {
	c := testCoupon()
	c.DiscountType = model.DiscountFixed
	c.DiscountValue = 5000

	res := Evaluate(c, 3000, midWindow)
	assert.True(t, res.Valid)
	assert.Equal(t, int64(3000), res.Discount)
}

func TestEvaluateFixedDiscountBelowTotal(t *testing.T) {
	c := testCoupon()
	c.DiscountType = model.DiscountFixed
	c.DiscountValue = 500

	res := Evaluate(c, 3000, midWindow)
	assert.True(t, res.Valid)
	assert.Equal(t, int64(500), res.Discount)
}

func TestEvaluateIsPure(t *testing.T) {
	c := testCoupon()
	c.MinPurchase = i64(1000)
	c.MaxUses = i64(5)
	c.UsedCount = 2

	first := Evaluate(c, 20000, midWindow)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate(c, 20000, midWindow))
	}
}
