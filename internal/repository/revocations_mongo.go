package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RevokedTokensCollection holds revoked token ids. A TTL index on
// expires_at, created by db.EnsureMongoIndexes, lets MongoDB purge them.
const RevokedTokensCollection = "revoked_tokens"

// MongoRevocationRepository keeps revoked token ids in a MongoDB collection.
type MongoRevocationRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoRevocationRepository creates a MongoRevocationRepository backed by coll.
func NewMongoRevocationRepository(coll *mongo.Collection) *MongoRevocationRepository {
	return &MongoRevocationRepository{coll: coll, now: time.Now}
}

// Revoke marks jti as revoked until the given time. Revoking twice keeps the first entry.
func (r *MongoRevocationRepository) Revoke(ctx context.Context, jti string, until time.Time) error {
	_, err := r.coll.UpdateOne(
		ctx,
		bson.D{{Key: "_id", Value: jti}},
		bson.D{{Key: "$setOnInsert", Value: bson.D{{Key: "expires_at", Value: until.UTC()}}}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti has an unexpired revocation entry. The TTL
// monitor runs periodically, so expiry is also checked here.
func (r *MongoRevocationRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	filter := bson.D{
		{Key: "_id", Value: jti},
		{Key: "expires_at", Value: bson.D{{Key: "$gt", Value: r.now().UTC()}}},
	}
	err := r.coll.FindOne(ctx, filter).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return true, nil
}
