package database

import (
	"context"
	"errors"
	"fmt"

	"nfl-playoff-pickem/logging"
	"nfl-playoff-pickem/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository stores the roster in the users collection
type MongoUserRepository struct {
	collection *mongo.Collection
}

func NewMongoUserRepository(db *MongoDB) *MongoUserRepository {
	collection := db.GetCollection("users")

	ctx, cancel := WithShortTimeout(context.Background())
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logging.WithPrefix("mongo_user_repo").Errorf("Failed to create email index: %v", err)
	}

	return &MongoUserRepository{collection: collection}
}

func (r *MongoUserRepository) FindAll(ctx context.Context) ([]*models.User, error) {
	ctx, cancel := WithMediumTimeout(ctx)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []*models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (r *MongoUserRepository) FindByID(ctx context.Context, userID int) (*models.User, error) {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find user %d: %w", userID, err)
	}
	return &user, nil
}

func (r *MongoUserRepository) Upsert(ctx context.Context, user *models.User) error {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": user.ID}, user, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", user.ID, err)
	}
	return nil
}
