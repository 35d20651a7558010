package database

import (
	"context"
	"fmt"

	"nfl-playoff-pickem/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAuditRepository appends administrative audit entries to admin_audit
type MongoAuditRepository struct {
	collection *mongo.Collection
}

func NewMongoAuditRepository(db *MongoDB) *MongoAuditRepository {
	return &MongoAuditRepository{collection: db.GetCollection("admin_audit")}
}

func (r *MongoAuditRepository) Insert(ctx context.Context, entry *models.AuditEntry) error {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert audit entry %s: %w", entry.ID, err)
	}
	return nil
}

func (r *MongoAuditRepository) FindBySeason(ctx context.Context, season int) ([]*models.AuditEntry, error) {
	ctx, cancel := WithMediumTimeout(ctx)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"season": season}, options.Find().SetSort(bson.D{{Key: "at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find audit entries for season %d: %w", season, err)
	}
	defer cursor.Close(ctx)

	entries := []*models.AuditEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit entries: %w", err)
	}
	return entries, nil
}
