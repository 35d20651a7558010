package database

import (
	"context"
	"errors"
	"fmt"

	"nfl-playoff-pickem/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTeamRepository stores team reference data keyed by provider team id
type MongoTeamRepository struct {
	collection *mongo.Collection
}

func NewMongoTeamRepository(db *MongoDB) *MongoTeamRepository {
	return &MongoTeamRepository{collection: db.GetCollection("teams")}
}

func (r *MongoTeamRepository) FindAll(ctx context.Context) ([]*models.Team, error) {
	ctx, cancel := WithMediumTimeout(ctx)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "abbreviation", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find teams: %w", err)
	}
	defer cursor.Close(ctx)

	teams := []*models.Team{}
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, fmt.Errorf("failed to decode teams: %w", err)
	}
	return teams, nil
}

func (r *MongoTeamRepository) FindByID(ctx context.Context, teamID int) (*models.Team, error) {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	var team models.Team
	err := r.collection.FindOne(ctx, bson.M{"_id": teamID}).Decode(&team)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find team %d: %w", teamID, err)
	}
	return &team, nil
}

func (r *MongoTeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": team.ID}, team, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert team %s: %w", team.Abbreviation, err)
	}
	return nil
}
