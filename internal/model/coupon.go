package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DiscountType is the coupon discount strategy.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Coupon is a discount coupon issued by a site. Monetary fields are
// integer minor units (cents); DiscountValue is percent points [0,100]
// for percentage coupons and minor units for fixed coupons.
type Coupon struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	SiteID        string             `bson:"site_id" json:"site_id"`
	UserID        string             `bson:"user_id" json:"user_id"`
	Code          string             `bson:"code" json:"code"`
	DiscountType  DiscountType       `bson:"discount_type" json:"discount_type"`
	DiscountValue int64              `bson:"discount_value" json:"discount_value"`
	MinPurchase   *int64             `bson:"min_purchase,omitempty" json:"min_purchase,omitempty"`
	MaxUses       *int64             `bson:"max_uses,omitempty" json:"max_uses,omitempty"`
	UsedCount     int64              `bson:"used_count" json:"used_count"`
	ValidFrom     time.Time          `bson:"valid_from" json:"valid_from"`
	ValidUntil    time.Time          `bson:"valid_until" json:"valid_until"`
	IsActive      bool               `bson:"is_active" json:"is_active"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// CreateCouponRequest is the payload for creating a coupon.
type CreateCouponRequest struct {
	Code          string       `json:"code" binding:"required"`
	DiscountType  DiscountType `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue int64        `json:"discount_value" binding:"min=0"`
	MinPurchase   *int64       `json:"min_purchase,omitempty"`
	MaxUses       *int64       `json:"max_uses,omitempty"`
	ValidFrom     time.Time    `json:"valid_from" binding:"required"`
	ValidUntil    time.Time    `json:"valid_until" binding:"required"`
	IsActive      *bool        `json:"is_active,omitempty"`
}

// CouponPatch is a partial update. Nil fields are left untouched.
// UsedCount is deliberately absent: only the redemption path may change it.
type CouponPatch struct {
	DiscountType  *DiscountType `json:"discount_type,omitempty"`
	DiscountValue *int64        `json:"discount_value,omitempty"`
	MinPurchase   *int64        `json:"min_purchase,omitempty"`
	MaxUses       *int64        `json:"max_uses,omitempty"`
	ValidFrom     *time.Time    `json:"valid_from,omitempty"`
	ValidUntil    *time.Time    `json:"valid_until,omitempty"`
	IsActive      *bool         `json:"is_active,omitempty"`
}

// RedeemRequest is the payload for validating or applying a coupon
// against a purchase. At is honored by validation only, so merchants can
// preview a validity window; application always uses the server clock.
type RedeemRequest struct {
	Code           string     `json:"code" binding:"required"`
	PurchaseAmount int64      `json:"purchase_amount" binding:"min=0"`
	At             *time.Time `json:"at,omitempty"`
}

// ValidationResponse reports whether a coupon currently applies and the
// discount it would grant.
type ValidationResponse struct {
	Valid    bool   `json:"valid"`
	Discount int64  `json:"discount,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// ApplyResponse reports a successful redemption.
type ApplyResponse struct {
	Code      string `json:"code"`
	Discount  int64  `json:"discount"`
	UsedCount int64  `json:"used_count"`
}

// QuotaResponse reports whether a user may create another coupon on a
// site. Limit is -1 for unlimited plans, in which case Current is not
// meaningful.
type QuotaResponse struct {
	Allowed bool  `json:"allowed"`
	Current int64 `json:"current"`
	Limit   int64 `json:"limit"`
}
