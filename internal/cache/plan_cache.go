package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"coupon-service/internal/plan"
	"coupon-service/internal/repository"
)

const planKeyPrefix = "plan:"

// PlanCache is a read-through redis cache in front of the user
// repository. Quota checks are advisory, so a slightly stale plan is
// acceptable; any cache failure falls through to the repository and
// never fails the request.
type PlanCache struct {
	client *redis.Client
	users  repository.UserRepository
	ttl    time.Duration
	logger *slog.Logger
}

// NewPlanCache wraps a user repository with a redis-backed plan cache.
func NewPlanCache(client *redis.Client, users repository.UserRepository, ttl time.Duration, logger *slog.Logger) *PlanCache {
	return &PlanCache{
		client: client,
		users:  users,
		ttl:    ttl,
		logger: logger,
	}
}

// GetPlan implements repository.UserRepository.
func (c *PlanCache) GetPlan(ctx context.Context, userID string) (plan.Plan, error) {
	key := planKeyPrefix + userID

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return plan.Parse(cached), nil
	}
	if err != redis.Nil {
		c.logger.Debug("plan cache read failed", "user_id", userID, "error", err)
	}

	p, err := c.users.GetPlan(ctx, userID)
	if err != nil {
		return "", err
	}

	if err := c.client.Set(ctx, key, string(p), c.ttl).Err(); err != nil {
		c.logger.Debug("plan cache write failed", "user_id", userID, "error", err)
	}
	return p, nil
}
