package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nfl-playoff-pickem/logging"
	"nfl-playoff-pickem/models"
)

// MongoPickRepository implements PickRepository for MongoDB
type MongoPickRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

// NewMongoPickRepository creates a new MongoDB pick repository
func NewMongoPickRepository(db *MongoDB) *MongoPickRepository {
	collection := db.GetCollection("picks")
	logger := logging.WithPrefix("mongo_pick_repo")

	ctx, cancel := WithMediumTimeout(context.Background())
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "game_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("user_game_unique"),
		},
		{Keys: bson.D{{Key: "season", Value: 1}, {Key: "week", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "season", Value: 1}, {Key: "week", Value: 1}}},
		{Keys: bson.D{{Key: "game_id", Value: 1}, {Key: "outcome", Value: 1}}},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Errorf("Could not create pick indexes: %v", err)
	}

	return &MongoPickRepository{
		collection: collection,
		logger:     logger,
	}
}

// Upsert creates or updates the pick for (user, game). Two concurrent first
// submissions can both miss the filter and race on insert; the loser retries
// once and lands on the update path.
func (r *MongoPickRepository) Upsert(ctx context.Context, pick *models.Pick) (*models.Pick, error) {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	filter := bson.M{"user_id": pick.UserID, "game_id": pick.GameID}
	set := bson.M{
		"selected_team_id": pick.SelectedTeamID,
		"is_auto_pick":     pick.IsAutoPick,
		"updated_at":       pick.UpdatedAt,
	}
	if pick.SuperBowlTotalPointsGuess != nil {
		set["superbowl_total_points_guess"] = *pick.SuperBowlTotalPointsGuess
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"season":        pick.Season,
			"week":          pick.Week,
			"outcome":       models.PickOutcomePending,
			"points_earned": 0,
			"locked":        pick.Locked,
			"created_at":    pick.CreatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored models.Pick
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	if mongo.IsDuplicateKeyError(err) {
		r.logger.Debugf("Upsert race on user %d game %d, retrying", pick.UserID, pick.GameID)
		err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upsert pick for user %d game %d: %w", pick.UserID, pick.GameID, err)
	}
	return &stored, nil
}

// InsertAutoPick inserts a pick, reporting ErrDuplicatePick when one exists
func (r *MongoPickRepository) InsertAutoPick(ctx context.Context, pick *models.Pick) error {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, pick)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicatePick
		}
		return fmt.Errorf("failed to insert auto pick for user %d game %d: %w", pick.UserID, pick.GameID, err)
	}
	return nil
}

// FindOne returns the pick for (user, game), or nil when absent
func (r *MongoPickRepository) FindOne(ctx context.Context, userID, gameID int) (*models.Pick, error) {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	var pick models.Pick
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "game_id": gameID}).Decode(&pick)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pick: %w", err)
	}
	return &pick, nil
}

func (r *MongoPickRepository) find(ctx context.Context, filter bson.M) ([]*models.Pick, error) {
	ctx, cancel := WithMediumTimeout(ctx)
	defer cancel()

	// Sort by week, then by game_id for consistent ordering
	opts := options.Find().SetSort(bson.D{
		{Key: "week", Value: 1},
		{Key: "game_id", Value: 1},
		{Key: "user_id", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find picks: %w", err)
	}
	defer cursor.Close(ctx)

	picks := []*models.Pick{}
	if err := cursor.All(ctx, &picks); err != nil {
		return nil, fmt.Errorf("failed to decode picks: %w", err)
	}
	return picks, nil
}

// FindByUser retrieves all picks for a user in a season
func (r *MongoPickRepository) FindByUser(ctx context.Context, userID, season int) ([]*models.Pick, error) {
	return r.find(ctx, bson.M{"user_id": userID, "season": season})
}

// FindByUserWeek retrieves all picks for a user in a season/week
func (r *MongoPickRepository) FindByUserWeek(ctx context.Context, userID, season, week int) ([]*models.Pick, error) {
	return r.find(ctx, bson.M{"user_id": userID, "season": season, "week": week})
}

// FindByGame retrieves all picks for a game
func (r *MongoPickRepository) FindByGame(ctx context.Context, gameID int) ([]*models.Pick, error) {
	return r.find(ctx, bson.M{"game_id": gameID})
}

// FindBySeason retrieves every pick of a season
func (r *MongoPickRepository) FindBySeason(ctx context.Context, season int) ([]*models.Pick, error) {
	return r.find(ctx, bson.M{"season": season})
}

// ResolveGame scores pending picks in two passes, winners then losers.
// The outcome filter makes a rerun a no-op.
func (r *MongoPickRepository) ResolveGame(ctx context.Context, gameID, winningTeamID, points int, now time.Time) (int64, error) {
	ctx, cancel := WithLongTimeout(ctx)
	defer cancel()

	correct, err := r.collection.UpdateMany(ctx,
		bson.M{"game_id": gameID, "outcome": models.PickOutcomePending, "selected_team_id": winningTeamID},
		bson.M{"$set": bson.M{"outcome": models.PickOutcomeCorrect, "points_earned": points, "updated_at": now}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to score correct picks for game %d: %w", gameID, err)
	}

	incorrect, err := r.collection.UpdateMany(ctx,
		bson.M{"game_id": gameID, "outcome": models.PickOutcomePending, "selected_team_id": bson.M{"$ne": winningTeamID}},
		bson.M{"$set": bson.M{"outcome": models.PickOutcomeIncorrect, "points_earned": 0, "updated_at": now}},
	)
	if err != nil {
		return correct.ModifiedCount, fmt.Errorf("failed to score incorrect picks for game %d: %w", gameID, err)
	}

	return correct.ModifiedCount + incorrect.ModifiedCount, nil
}

// ResetGame returns every pick of a game to pending
func (r *MongoPickRepository) ResetGame(ctx context.Context, gameID int, now time.Time) (int64, error) {
	ctx, cancel := WithLongTimeout(ctx)
	defer cancel()

	res, err := r.collection.UpdateMany(ctx,
		bson.M{"game_id": gameID},
		bson.M{"$set": bson.M{"outcome": models.PickOutcomePending, "points_earned": 0, "updated_at": now}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reset picks for game %d: %w", gameID, err)
	}
	return res.ModifiedCount, nil
}

// LockForGames mirrors the game lock onto its picks
func (r *MongoPickRepository) LockForGames(ctx context.Context, gameIDs []int, locked bool) error {
	if len(gameIDs) == 0 {
		return nil
	}
	ctx, cancel := WithLongTimeout(ctx)
	defer cancel()

	_, err := r.collection.UpdateMany(ctx,
		bson.M{"game_id": bson.M{"$in": gameIDs}},
		bson.M{"$set": bson.M{"locked": locked}},
	)
	if err != nil {
		return fmt.Errorf("failed to set pick lock for %d games: %w", len(gameIDs), err)
	}
	return nil
}

// DeleteSeason removes every pick of a season
func (r *MongoPickRepository) DeleteSeason(ctx context.Context, season int) (int64, error) {
	ctx, cancel := WithLongTimeout(ctx)
	defer cancel()

	res, err := r.collection.DeleteMany(ctx, bson.M{"season": season})
	if err != nil {
		return 0, fmt.Errorf("failed to delete picks for season %d: %w", season, err)
	}
	return res.DeletedCount, nil
}
