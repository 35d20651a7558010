package database

import (
	"context"
	"fmt"

	"nfl-playoff-pickem/logging"
	"nfl-playoff-pickem/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserStatRepository stores one aggregate row per (user_id, season)
type MongoUserStatRepository struct {
	collection *mongo.Collection
}

func NewMongoUserStatRepository(db *MongoDB) *MongoUserStatRepository {
	collection := db.GetCollection("user_stats")

	ctx, cancel := WithShortTimeout(context.Background())
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "season", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logging.WithPrefix("mongo_user_stat_repo").Errorf("Failed to create index on user_stats: %v", err)
	}

	return &MongoUserStatRepository{collection: collection}
}

// Replace overwrites the stored row for the stat's (user, season)
func (r *MongoUserStatRepository) Replace(ctx context.Context, stat *models.UserStat) error {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	filter := bson.M{"user_id": stat.UserID, "season": stat.Season}
	if _, err := r.collection.ReplaceOne(ctx, filter, stat, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to replace stats for user %d season %d: %w", stat.UserID, stat.Season, err)
	}
	return nil
}

func (r *MongoUserStatRepository) FindBySeason(ctx context.Context, season int) ([]*models.UserStat, error) {
	ctx, cancel := WithMediumTimeout(ctx)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"season": season}, options.Find().SetSort(bson.D{{Key: "user_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find stats for season %d: %w", season, err)
	}
	defer cursor.Close(ctx)

	stats := []*models.UserStat{}
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats: %w", err)
	}
	return stats, nil
}

func (r *MongoUserStatRepository) DeleteSeason(ctx context.Context, season int) (int64, error) {
	ctx, cancel := WithLongTimeout(ctx)
	defer cancel()

	res, err := r.collection.DeleteMany(ctx, bson.M{"season": season})
	if err != nil {
		return 0, fmt.Errorf("failed to delete stats for season %d: %w", season, err)
	}
	return res.DeletedCount, nil
}
