package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nfl-playoff-pickem/logging"
	"nfl-playoff-pickem/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoGameRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

func NewMongoGameRepository(db *MongoDB) *MongoGameRepository {
	collection := db.GetCollection("games")
	logger := logging.WithPrefix("mongo_game_repo")

	ctx, cancel := WithShortTimeout(context.Background())
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "season", Value: 1}, {Key: "week", Value: 1}}},
		{Keys: bson.D{{Key: "season", Value: 1}, {Key: "is_locked", Value: 1}, {Key: "scheduled_start_time", Value: 1}}},
		// Discourages a second row for the same matchup in a round
		{
			Keys: bson.D{
				{Key: "season", Value: 1},
				{Key: "week", Value: 1},
				{Key: "home_team_id", Value: 1},
				{Key: "away_team_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Errorf("Failed to create indexes on games collection: %v", err)
	}

	return &MongoGameRepository{
		collection: collection,
		logger:     logger,
	}
}

var gameSort = options.Find().SetSort(bson.D{
	{Key: "scheduled_start_time", Value: 1},
	{Key: "_id", Value: 1},
})

func (r *MongoGameRepository) UpsertSchedule(ctx context.Context, games []*models.Game, now time.Time) (int, error) {
	ctx, cancel := WithMediumTimeout(ctx)
	defer cancel()

	written := 0
	for _, game := range games {
		update := bson.M{
			"$set": bson.M{
				"season":               game.Season,
				"week":                 game.Week,
				"home_team_id":         game.HomeTeamID,
				"away_team_id":         game.AwayTeamID,
				"scheduled_start_time": game.ScheduledStartTime,
				"updated_at":           now,
			},
			"$setOnInsert": bson.M{
				"status":          models.GameStatusScheduled,
				"is_locked":       false,
				"home_score":      nil,
				"away_score":      nil,
				"winning_team_id": nil,
				"quarter":         0,
				"clock":           "",
			},
		}
		_, err := r.collection.UpdateOne(ctx, bson.M{"_id": game.ID}, update, options.Update().SetUpsert(true))
		if err != nil {
			return written, fmt.Errorf("failed to upsert game %d: %w", game.ID, err)
		}
		written++
	}
	return written, nil
}

func (r *MongoGameRepository) FindByID(ctx context.Context, gameID int) (*models.Game, error) {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	var game models.Game
	err := r.collection.FindOne(ctx, bson.M{"_id": gameID}).Decode(&game)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find game %d: %w", gameID, err)
	}
	return &game, nil
}

func (r *MongoGameRepository) find(ctx context.Context, filter bson.M) ([]*models.Game, error) {
	ctx, cancel := WithMediumTimeout(ctx)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, gameSort)
	if err != nil {
		return nil, fmt.Errorf("failed to find games: %w", err)
	}
	defer cursor.Close(ctx)

	games := []*models.Game{}
	if err := cursor.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("failed to decode games: %w", err)
	}
	return games, nil
}

func (r *MongoGameRepository) FindBySeason(ctx context.Context, season int) ([]*models.Game, error) {
	return r.find(ctx, bson.M{"season": season})
}

func (r *MongoGameRepository) FindByWeek(ctx context.Context, season, week int) ([]*models.Game, error) {
	return r.find(ctx, bson.M{"season": season, "week": week})
}

func (r *MongoGameRepository) FindLocked(ctx context.Context, season int) ([]*models.Game, error) {
	return r.find(ctx, bson.M{"season": season, "is_locked": true})
}

func (r *MongoGameRepository) FindFinal(ctx context.Context, season int) ([]*models.Game, error) {
	return r.find(ctx, bson.M{"season": season, "status": models.GameStatusFinal})
}

func (r *MongoGameRepository) FindSyncable(ctx context.Context, season int) ([]*models.Game, error) {
	return r.find(ctx, bson.M{
		"season": season,
		"status": bson.M{"$nin": bson.A{models.GameStatusFinal, models.GameStatusCancelled}},
	})
}

func (r *MongoGameRepository) LockDueGames(ctx context.Context, season int, now time.Time) ([]int, error) {
	due, err := r.find(ctx, bson.M{
		"season":               season,
		"is_locked":            false,
		"scheduled_start_time": bson.M{"$lte": now},
	})
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(due))
	for _, g := range due {
		ids = append(ids, g.ID)
	}
	return r.lock(ctx, ids, now)
}

func (r *MongoGameRepository) LockGames(ctx context.Context, gameIDs []int, now time.Time) ([]int, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}
	unlocked, err := r.find(ctx, bson.M{"_id": bson.M{"$in": gameIDs}, "is_locked": false})
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(unlocked))
	for _, g := range unlocked {
		ids = append(ids, g.ID)
	}
	return r.lock(ctx, ids, now)
}

// lock flips is_locked for ids still unlocked. The is_locked filter keeps lockedAt
// from being rewritten when two runners race.
func (r *MongoGameRepository) lock(ctx context.Context, ids []int, now time.Time) ([]int, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := WithLongTimeout(ctx)
	defer cancel()

	filter := bson.M{"_id": bson.M{"$in": ids}, "is_locked": false}
	update := bson.M{"$set": bson.M{"is_locked": true, "locked_at": now, "updated_at": now}}
	res, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to lock games: %w", err)
	}
	if int(res.ModifiedCount) != len(ids) {
		r.logger.Debugf("Locked %d of %d candidate games, the rest were locked concurrently", res.ModifiedCount, len(ids))
	}
	return ids, nil
}

func (r *MongoGameRepository) ApplyState(ctx context.Context, gameID int, state GameState, now time.Time) (bool, error) {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	filter := bson.M{"_id": gameID, "status": bson.M{"$ne": models.GameStatusFinal}}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": stateFields(state, now)})
	if err != nil {
		return false, fmt.Errorf("failed to apply state to game %d: %w", gameID, err)
	}
	return res.MatchedCount == 1, nil
}

func (r *MongoGameRepository) SetResult(ctx context.Context, gameID int, state GameState, now time.Time) error {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": gameID}, bson.M{"$set": stateFields(state, now)})
	if err != nil {
		return fmt.Errorf("failed to set result of game %d: %w", gameID, err)
	}
	if res.MatchedCount == 0 {
		return ErrGameNotFound
	}
	return nil
}

func (r *MongoGameRepository) SetLock(ctx context.Context, gameID int, locked bool, now time.Time) error {
	ctx, cancel := WithShortTimeout(ctx)
	defer cancel()

	var update bson.M
	if locked {
		update = bson.M{"$set": bson.M{"is_locked": true, "locked_at": now, "updated_at": now}}
	} else {
		update = bson.M{
			"$set":   bson.M{"is_locked": false, "updated_at": now},
			"$unset": bson.M{"locked_at": ""},
		}
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": gameID}, update)
	if err != nil {
		return fmt.Errorf("failed to set lock on game %d: %w", gameID, err)
	}
	if res.MatchedCount == 0 {
		return ErrGameNotFound
	}
	return nil
}

func stateFields(state GameState, now time.Time) bson.M {
	return bson.M{
		"status":          state.Status,
		"home_score":      state.HomeScore,
		"away_score":      state.AwayScore,
		"winning_team_id": state.WinningTeamID,
		"quarter":         state.Quarter,
		"clock":           state.Clock,
		"updated_at":      now,
	}
}
