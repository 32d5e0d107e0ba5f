package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"coupon-service/internal/model"
	apperr "coupon-service/pkg/errors"
)

// mongodbCouponRepository implements CouponRepository using MongoDB.
type mongodbCouponRepository struct {
	collection *mongo.Collection
}

// NewCouponRepository creates a new MongoDB-based coupon repository.
func NewCouponRepository(db *mongo.Database) CouponRepository {
	return &mongodbCouponRepository{
		collection: db.Collection("coupons"),
	}
}

func (r *mongodbCouponRepository) Insert(ctx context.Context, coupon *model.Coupon) error {
	res, err := r.collection.InsertOne(ctx, coupon)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.ErrDuplicateCode
		}
		return storageErr("insert coupon", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		coupon.ID = oid
	}
	return nil
}

func (r *mongodbCouponRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Coupon, error) {
	return r.getOne(ctx, bson.M{"_id": id})
}

func (r *mongodbCouponRepository) GetByCode(ctx context.Context, siteID, code string) (*model.Coupon, error) {
	return r.getOne(ctx, bson.M{"site_id": siteID, "code": code})
}

func (r *mongodbCouponRepository) getOne(ctx context.Context, filter bson.M) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.collection.FindOne(ctx, filter).Decode(&coupon)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.ErrCouponNotFound
		}
		return nil, storageErr("find coupon", err)
	}
	return &coupon, nil
}

func (r *mongodbCouponRepository) List(ctx context.Context, siteID string, limit int64) ([]*model.Coupon, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"site_id": siteID}, opts)
	if err != nil {
		return nil, storageErr("list coupons", err)
	}
	defer cursor.Close(ctx)

	coupons := make([]*model.Coupon, 0)
	if err := cursor.All(ctx, &coupons); err != nil {
		return nil, storageErr("decode coupons", err)
	}
	return coupons, nil
}

func (r *mongodbCouponRepository) CountBySite(ctx context.Context, siteID string) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"site_id": siteID})
	if err != nil {
		return 0, storageErr("count coupons", err)
	}
	return count, nil
}

func (r *mongodbCouponRepository) Update(ctx context.Context, id primitive.ObjectID, patch *model.CouponPatch) (*model.Coupon, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.DiscountType != nil {
		set["discount_type"] = *patch.DiscountType
	}
	if patch.DiscountValue != nil {
		set["discount_value"] = *patch.DiscountValue
	}
	if patch.MinPurchase != nil {
		set["min_purchase"] = *patch.MinPurchase
	}
	if patch.MaxUses != nil {
		set["max_uses"] = *patch.MaxUses
	}
	if patch.ValidFrom != nil {
		set["valid_from"] = *patch.ValidFrom
	}
	if patch.ValidUntil != nil {
		set["valid_until"] = *patch.ValidUntil
	}
	if patch.IsActive != nil {
		set["is_active"] = *patch.IsActive
	}

	var updated model.Coupon
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.ErrCouponNotFound
		}
		return nil, storageErr("update coupon", err)
	}
	return &updated, nil
}

func (r *mongodbCouponRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storageErr("delete coupon", err)
	}
	if res.DeletedCount == 0 {
		return apperr.ErrCouponNotFound
	}
	return nil
}

// IncrementUsage performs the conditional write the redemption loop
// relies on: the filter pins used_count to the value the caller read, so
// a concurrent redemption makes the update match nothing instead of
// double-counting.
func (r *mongodbCouponRepository) IncrementUsage(ctx context.Context, id primitive.ObjectID, expectedUsed int64) (bool, error) {
	res, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "used_count": expectedUsed},
		bson.M{
			"$inc": bson.M{"used_count": 1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, storageErr("increment usage", err)
	}
	return res.ModifiedCount == 1, nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", apperr.ErrStorageUnavailable, op, err)
}
