package service

import (
	"time"

	"coupon-service/internal/model"
)

// Reason explains why a coupon cannot be applied. Checks run in a fixed
// order and the first failure wins, so results are deterministic.
type Reason string

const (
	ReasonNotActive        Reason = "not_active"
	ReasonNotYetValid      Reason = "not_yet_valid"
	ReasonExpired          Reason = "expired"
	ReasonUsageExceeded    Reason = "usage_exceeded"
	ReasonBelowMinPurchase Reason = "below_min_purchase"
)

// ValidationResult is the outcome of evaluating a coupon against a
// purchase. Discount is set only when Valid; Reason only when not.
type ValidationResult struct {
	Valid    bool
	Discount int64
	Reason   Reason
}

// Evaluate decides whether a coupon applies to a purchase of the given
// amount (minor units) at the given instant, and computes the discount.
// Pure function of its inputs: identical state and time always yield an
// identical result.
//
// Check order: active → window start → window end → usage cap → minimum
// purchase.
func Evaluate(c *model.Coupon, purchaseAmount int64, now time.Time) ValidationResult {
	switch {
	case !c.IsActive:
		return ValidationResult{Reason: ReasonNotActive}
	case now.Before(c.ValidFrom):
		return ValidationResult{Reason: ReasonNotYetValid}
	case now.After(c.ValidUntil):
		return ValidationResult{Reason: ReasonExpired}
	case c.MaxUses != nil && c.UsedCount >= *c.MaxUses:
		return ValidationResult{Reason: ReasonUsageExceeded}
	case c.MinPurchase != nil && purchaseAmount < *c.MinPurchase:
		return ValidationResult{Reason: ReasonBelowMinPurchase}
	}
	return ValidationResult{Valid: true, Discount: discountFor(c, purchaseAmount)}
}

// discountFor computes the discount in minor units. Percentage division
// floors; the discount never exceeds the purchase total and never goes
// negative.
func discountFor(c *model.Coupon, purchaseAmount int64) int64 {
	var discount int64
	switch c.DiscountType {
	case model.DiscountPercentage:
		discount = purchaseAmount * c.DiscountValue / 100
	case model.DiscountFixed:
		discount = c.DiscountValue
	}
	if discount > purchaseAmount {
		discount = purchaseAmount
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
