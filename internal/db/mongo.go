package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"dzgamezone-be/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollCategories = "categories"
	CollProducts   = "products"
	CollWilayas    = "shipping_wilayas"
	CollOrders     = "orders"
)

const connectTimeout = 10 * time.Second

// NewMongo connects to MONGO_URI and returns the configured database.
func NewMongo(ctx context.Context, cfg *config.Config) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client, client.Database(cfg.MongoDatabase), nil
}

// InitMongo is NewMongo for startup: any failure terminates the process.
func InitMongo(cfg *config.Config) (*mongo.Client, *mongo.Database) {
	client, database, err := NewMongo(context.Background(), cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	log.Println("MongoDB connection established")
	return client, database
}

// IndexModels lists the indexes backing the uniqueness rules of each collection.
func IndexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		CollCategories: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_name")},
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_slug")},
			{Keys: bson.D{{Key: "parent", Value: 1}}, Options: options.Index().SetName("parent")},
		},
		CollProducts: {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_slug")},
			{
				Keys: bson.D{{Key: "variants.sku", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetName("uniq_variant_sku").
					SetPartialFilterExpression(bson.M{"variants.sku": bson.M{"$exists": true}}),
			},
			{Keys: bson.D{{Key: "category", Value: 1}}, Options: options.Index().SetName("category")},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("created_at")},
		},
		CollWilayas: {
			{Keys: bson.D{{Key: "numero", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_numero")},
			{Keys: bson.D{{Key: "nom", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_nom")},
		},
		CollOrders: {
			{Keys: bson.D{{Key: "reference", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_reference")},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}, Options: options.Index().SetName("created_at")},
			{Keys: bson.D{{Key: "product", Value: 1}}, Options: options.Index().SetName("product")},
		},
	}
}

// EnsureIndexes creates every index from IndexModels; existing ones are left alone.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	for coll, models := range IndexModels() {
		if _, err := database.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
