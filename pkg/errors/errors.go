package errors

import (
	"errors"
	"fmt"
)

// Wire-level error codes. Every error response carries exactly one.
const (
	CodeValidation         = "validation_error"
	CodeQuotaExceeded      = "quota_exceeded"
	CodeNotFound           = "not_found"
	CodeCouponInvalid      = "coupon_invalid"
	CodeContention         = "contention"
	CodeStorageUnavailable = "storage_unavailable"
)

// Domain errors shared by the service and repository layers.
var (
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrDuplicateCode means the code is already taken within the site.
	// Backed by the unique (site_id, code) index.
	ErrDuplicateCode = errors.New("coupon code already in use for this site")

	// ErrContention is returned when a redemption loses the conditional
	// write too many times in a row. Callers may retry.
	ErrContention = errors.New("coupon is being redeemed concurrently, retry")

	// ErrStorageUnavailable wraps collaborator failures. Transient; no
	// local recovery.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError reports malformed input, rejected before any store
// access.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// QuotaExceededError reports a plan limit hit on coupon creation.
type QuotaExceededError struct {
	Current int64
	Limit   int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("coupon quota exceeded: %d of %d used", e.Current, e.Limit)
}

// CouponInvalidError reports a coupon that cannot be applied right now.
// Expected, frequent traffic; never logged as an error.
type CouponInvalidError struct {
	Reason string
}

func (e *CouponInvalidError) Error() string {
	return fmt.Sprintf("coupon not applicable: %s", e.Reason)
}
