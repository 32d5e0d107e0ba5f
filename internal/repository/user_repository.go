package repository

import (
	"context"

	"coupon-service/internal/plan"
)

// UserRepository resolves a user's subscription plan. Plans are written
// by external billing processes; this core only reads them.
type UserRepository interface {
	// GetPlan returns the user's plan. A missing user resolves to the
	// free plan rather than an error.
	GetPlan(ctx context.Context, userID string) (plan.Plan, error)
}
