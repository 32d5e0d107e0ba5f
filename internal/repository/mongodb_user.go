package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"coupon-service/internal/plan"
	apperr "coupon-service/pkg/errors"
)

// mongodbUserRepository implements UserRepository using MongoDB.
type mongodbUserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new MongoDB-based user repository.
func NewUserRepository(db *mongo.Database) UserRepository {
	return &mongodbUserRepository{
		collection: db.Collection("users"),
	}
}

func (r *mongodbUserRepository) GetPlan(ctx context.Context, userID string) (plan.Plan, error) {
	var doc struct {
		Plan string `bson:"plan"`
	}
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Unknown users get the most restrictive tier.
			return plan.Free, nil
		}
		return "", fmt.Errorf("%w: find user: %v", apperr.ErrStorageUnavailable, err)
	}
	return plan.Parse(doc.Plan), nil
}
