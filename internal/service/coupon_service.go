package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"coupon-service/internal/model"
	"coupon-service/internal/plan"
	"coupon-service/internal/repository"
	apperr "coupon-service/pkg/errors"
)

const (
	defaultMaxRedeemRetries = 5
	defaultListLimit        = 100
	maxListLimit            = 500
)

// CouponService holds the coupon business logic: quota evaluation,
// lifecycle management and redemption.
type CouponService struct {
	coupons    repository.CouponRepository
	users      repository.UserRepository
	plans      *plan.Registry
	maxRetries int
	now        func() time.Time
}

// Option customizes a CouponService.
type Option func(*CouponService)

// WithClock overrides the service clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *CouponService) { s.now = now }
}

// WithMaxRedeemRetries bounds the redemption retry loop.
func WithMaxRedeemRetries(n int) Option {
	return func(s *CouponService) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

// NewCouponService creates a new coupon service.
func NewCouponService(coupons repository.CouponRepository, users repository.UserRepository, plans *plan.Registry, opts ...Option) *CouponService {
	s := &CouponService{
		coupons:    coupons,
		users:      users,
		plans:      plans,
		maxRetries: defaultMaxRedeemRetries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CanCreateCoupon decides whether the user's plan allows one more coupon
// on the site. For unlimited plans the current count is not fetched and
// Current is reported as 0. The count-then-compare is advisory: two
// concurrent creations can both pass and overshoot the quota by one,
// which is accepted for this low-contention, human-driven path.
func (s *CouponService) CanCreateCoupon(ctx context.Context, userID, siteID string) (*model.QuotaResponse, error) {
	p, err := s.users.GetPlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	limit := s.plans.QuotaFor(p)
	if limit == plan.Unlimited {
		return &model.QuotaResponse{Allowed: true, Current: 0, Limit: plan.Unlimited}, nil
	}

	current, err := s.coupons.CountBySite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	return &model.QuotaResponse{Allowed: current < limit, Current: current, Limit: limit}, nil
}

// CreateCoupon validates the input, checks the plan quota and persists a
// new coupon with a zero usage count.
func (s *CouponService) CreateCoupon(ctx context.Context, userID, siteID string, req *model.CreateCouponRequest) (*model.Coupon, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, &apperr.ValidationError{Field: "code", Message: "must not be empty"}
	}
	if err := validateDiscount(req.DiscountType, req.DiscountValue); err != nil {
		return nil, err
	}
	if req.MinPurchase != nil && *req.MinPurchase < 0 {
		return nil, &apperr.ValidationError{Field: "min_purchase", Message: "must not be negative"}
	}
	if req.MaxUses != nil && *req.MaxUses < 1 {
		return nil, &apperr.ValidationError{Field: "max_uses", Message: "must be at least 1"}
	}
	if req.ValidUntil.Before(req.ValidFrom) {
		return nil, &apperr.ValidationError{Field: "valid_until", Message: "must not precede valid_from"}
	}

	// Friendly duplicate check; the unique index is the real guarantee.
	if _, err := s.coupons.GetByCode(ctx, siteID, code); err == nil {
		return nil, apperr.ErrDuplicateCode
	} else if !errors.Is(err, apperr.ErrCouponNotFound) {
		return nil, err
	}

	quota, err := s.CanCreateCoupon(ctx, userID, siteID)
	if err != nil {
		return nil, err
	}
	if !quota.Allowed {
		return nil, &apperr.QuotaExceededError{Current: quota.Current, Limit: quota.Limit}
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := s.now().UTC()
	coupon := &model.Coupon{
		SiteID:        siteID,
		UserID:        userID,
		Code:          code,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MinPurchase:   req.MinPurchase,
		MaxUses:       req.MaxUses,
		UsedCount:     0,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
		IsActive:      isActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.coupons.Insert(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// ListCoupons returns a site's coupons ordered by creation time
// ascending. The page size is clamped to a sane bound.
func (s *CouponService) ListCoupons(ctx context.Context, siteID string, limit int64) ([]*model.Coupon, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.coupons.List(ctx, siteID, limit)
}

// UpdateCoupon applies a partial update. The usage count cannot be
// changed through this path; lowering max_uses below the current usage
// is allowed and simply makes future redemptions report usage_exceeded.
func (s *CouponService) UpdateCoupon(ctx context.Context, id string, patch *model.CouponPatch) (*model.Coupon, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.ErrCouponNotFound
	}

	current, err := s.coupons.GetByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	merged := *current
	if patch.DiscountType != nil {
		merged.DiscountType = *patch.DiscountType
	}
	if patch.DiscountValue != nil {
		merged.DiscountValue = *patch.DiscountValue
	}
	if patch.MinPurchase != nil {
		merged.MinPurchase = patch.MinPurchase
	}
	if patch.MaxUses != nil {
		merged.MaxUses = patch.MaxUses
	}
	if patch.ValidFrom != nil {
		merged.ValidFrom = *patch.ValidFrom
	}
	if patch.ValidUntil != nil {
		merged.ValidUntil = *patch.ValidUntil
	}

	switch merged.DiscountType {
	case model.DiscountPercentage, model.DiscountFixed:
	default:
		return nil, &apperr.ValidationError{Field: "discount_type", Message: "must be percentage or fixed"}
	}
	if err := validateDiscount(merged.DiscountType, merged.DiscountValue); err != nil {
		return nil, err
	}
	if merged.MinPurchase != nil && *merged.MinPurchase < 0 {
		return nil, &apperr.ValidationError{Field: "min_purchase", Message: "must not be negative"}
	}
	if merged.MaxUses != nil && *merged.MaxUses < 1 {
		return nil, &apperr.ValidationError{Field: "max_uses", Message: "must be at least 1"}
	}
	if merged.ValidUntil.Before(merged.ValidFrom) {
		return nil, &apperr.ValidationError{Field: "valid_until", Message: "must not precede valid_from"}
	}

	return s.coupons.Update(ctx, oid, patch)
}

// DeleteCoupon removes a coupon permanently.
func (s *CouponService) DeleteCoupon(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.ErrCouponNotFound
	}
	return s.coupons.Delete(ctx, oid)
}

// ValidateCoupon evaluates a coupon against a purchase without consuming
// usage. A zero `at` means "now". Repeated calls with unchanged state
// and time return identical results.
func (s *CouponService) ValidateCoupon(ctx context.Context, siteID, code string, purchaseAmount int64, at time.Time) (ValidationResult, error) {
	coupon, err := s.coupons.GetByCode(ctx, siteID, code)
	if err != nil {
		return ValidationResult{}, err
	}
	if at.IsZero() {
		at = s.now()
	}
	return Evaluate(coupon, purchaseAmount, at), nil
}

// ApplyCoupon redeems a coupon against a purchase: it re-reads, re-
// validates and conditionally increments the usage count until the
// conditional write sticks. Each retry validates against fresh state, so
// the usage count can never pass max_uses no matter how many redemptions
// race. After maxRetries lost races it surfaces ErrContention, which the
// caller may retry.
func (s *CouponService) ApplyCoupon(ctx context.Context, siteID, code string, purchaseAmount int64) (*model.ApplyResponse, error) {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		coupon, err := s.coupons.GetByCode(ctx, siteID, code)
		if err != nil {
			return nil, err
		}

		result := Evaluate(coupon, purchaseAmount, s.now())
		if !result.Valid {
			return nil, &apperr.CouponInvalidError{Reason: string(result.Reason)}
		}

		ok, err := s.coupons.IncrementUsage(ctx, coupon.ID, coupon.UsedCount)
		if err != nil {
			return nil, err
		}
		if ok {
			return &model.ApplyResponse{
				Code:      coupon.Code,
				Discount:  result.Discount,
				UsedCount: coupon.UsedCount + 1,
			}, nil
		}
		// Lost the race to a concurrent redemption; retry from scratch.
	}
	return nil, apperr.ErrContention
}

func validateDiscount(t model.DiscountType, value int64) error {
	if value < 0 {
		return &apperr.ValidationError{Field: "discount_value", Message: "must not be negative"}
	}
	if t == model.DiscountPercentage && value > 100 {
		return &apperr.ValidationError{Field: "discount_value", Message: "percentage must be between 0 and 100"}
	}
	return nil
}
