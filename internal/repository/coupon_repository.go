package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"coupon-service/internal/model"
)

// CouponRepository defines the storage operations the coupon core needs:
// point reads and writes, a filtered count, and a conditional increment.
type CouponRepository interface {
	// Insert persists a new coupon. Returns ErrDuplicateCode when the
	// (site_id, code) pair is already taken.
	Insert(ctx context.Context, coupon *model.Coupon) error

	// GetByID retrieves a coupon by id.
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Coupon, error)

	// GetByCode retrieves a coupon by code within a site. Exact match.
	GetByCode(ctx context.Context, siteID, code string) (*model.Coupon, error)

	// List returns up to limit coupons for a site, ordered by creation
	// time ascending.
	List(ctx context.Context, siteID string, limit int64) ([]*model.Coupon, error)

	// CountBySite returns the number of coupons a site currently holds.
	CountBySite(ctx context.Context, siteID string) (int64, error)

	// Update applies the non-nil patch fields and returns the updated
	// coupon.
	Update(ctx context.Context, id primitive.ObjectID, patch *model.CouponPatch) (*model.Coupon, error)

	// Delete removes a coupon permanently.
	Delete(ctx context.Context, id primitive.ObjectID) error

	// IncrementUsage adds one use to the coupon only if its used count
	// still equals expectedUsed — the conditional-write primitive the
	// redemption path builds its compare-and-swap loop on. Returns false
	// without error when the condition no longer holds.
	IncrementUsage(ctx context.Context, id primitive.ObjectID, expectedUsed int64) (bool, error)
}
