package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"marketchat/pkg/errors"
)

// Existence checks against the deployment's identity and catalog collections.
// Chat only needs to know that the referenced user or product is real.

type MongoUserDirectory struct {
	db *mongo.Database
}

func NewMongoUserDirectory(db *mongo.Database) *MongoUserDirectory {
	return &MongoUserDirectory{db: db}
}

func (d *MongoUserDirectory) EnsureUserExists(ctx context.Context, userID string) error {
	count, err := d.db.Collection("users").CountDocuments(ctx, bson.M{"_id": userID})
	if err != nil {
		return errors.Internal("Failed to look up user", err)
	}
	if count == 0 {
		return errors.NotFound("User", nil)
	}
	return nil
}

type MongoProductCatalog struct {
	db *mongo.Database
}

func NewMongoProductCatalog(db *mongo.Database) *MongoProductCatalog {
	return &MongoProductCatalog{db: db}
}

func (c *MongoProductCatalog) EnsureProductExists(ctx context.Context, productID string) error {
	filter := bson.M{"_id": productID}
	if oid, err := primitive.ObjectIDFromHex(productID); err == nil {
		filter = bson.M{"_id": oid}
	}

	count, err := c.db.Collection("products").CountDocuments(ctx, filter)
	if err != nil {
		return errors.Internal("Failed to look up product", err)
	}
	if count == 0 {
		return errors.NotFound("Product", nil)
	}
	return nil
}
