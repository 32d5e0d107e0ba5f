package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB wraps the MongoDB client and database.
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect establishes a connection to MongoDB and ensures indexes.
func Connect(ctx context.Context, uri, dbName string) (*MongoDB, error) {
	clientOptions := options.Client().ApplyURI(uri)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	mongoDB := &MongoDB{
		Client:   client,
		Database: client.Database(dbName),
	}

	if err := mongoDB.CreateIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return mongoDB, nil
}

// CreateIndexes creates all necessary indexes for the application.
func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	coupons := m.Database.Collection("coupons")

	// Unique (site_id, code): a code may be reused across sites but not
	// within one. This index is what makes duplicate detection race-free.
	siteCodeIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "site_id", Value: 1},
			{Key: "code", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("site_code_unique"),
	}
	if _, err := coupons.Indexes().CreateOne(ctx, siteCodeIndex); err != nil {
		return fmt.Errorf("failed to create site_code index: %w", err)
	}

	// Supports site listings (created_at ascending) and per-site counts.
	siteCreatedIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "site_id", Value: 1},
			{Key: "created_at", Value: 1},
		},
		Options: options.Index().SetName("site_created_index"),
	}
	if _, err := coupons.Indexes().CreateOne(ctx, siteCreatedIndex); err != nil {
		return fmt.Errorf("failed to create site_created index: %w", err)
	}

	return nil
}

// Disconnect closes the MongoDB connection.
func (m *MongoDB) Disconnect(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
