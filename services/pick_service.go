package services

import (
	"context"
	"fmt"
	"time"

	"nfl-playoff-pickem/database"
	"nfl-playoff-pickem/logging"
	"nfl-playoff-pickem/models"
)

// SubmitPickRequest is a user's selection for one game
type SubmitPickRequest struct {
	UserID          int
	GameID          int
	TeamID          int
	TiebreakerGuess *int
}

// PickService is the only user-facing write path for picks
type PickService struct {
	games  database.GameRepository
	picks  database.PickRepository
	users  database.UserRepository
	now    func() time.Time
	logger *logging.Logger
}

// NewPickService creates a new pick service
func NewPickService(games database.GameRepository, picks database.PickRepository, users database.UserRepository) *PickService {
	return &PickService{
		games:  games,
		picks:  picks,
		users:  users,
		now:    time.Now,
		logger: logging.WithPrefix("PickService"),
	}
}

// SubmitPick creates or replaces the user's pick for a game.
//
// The game is read fresh and the clock sampled immediately before the
// upsert, so a write after kickoff fails even if the lock engine has not
// run yet. Concurrent submissions for the same (user, game) are settled
// by the store's upsert on the unique index.
func (s *PickService) SubmitPick(ctx context.Context, season int, req SubmitPickRequest) (*models.Pick, error) {
	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", req.UserID, err)
	}
	if user == nil {
		return nil, notFoundErrorf("user %d", req.UserID)
	}

	game, err := s.games.FindByID(ctx, req.GameID)
	if err != nil {
		return nil, fmt.Errorf("load game %d: %w", req.GameID, err)
	}
	if game == nil || game.Season != season {
		return nil, notFoundErrorf("game %d in season %d", req.GameID, season)
	}

	if _, err := models.RoundForWeek(game.Week); err != nil {
		return nil, validationErrorf("game %d: %v", game.ID, err)
	}
	if !game.HasTeam(req.TeamID) {
		return nil, validationErrorf("team %d is not playing in game %d", req.TeamID, game.ID)
	}

	var guess *int
	if models.IsFinalRound(game.Week) && req.TiebreakerGuess != nil {
		if *req.TiebreakerGuess < 0 {
			return nil, validationErrorf("tiebreaker guess must not be negative")
		}
		g := *req.TiebreakerGuess
		guess = &g
	}

	now := s.now()
	if !game.AcceptsPicks(now) {
		s.logger.Debugf("Rejected late pick: user %d game %d (locked=%t, kickoff=%s)",
			req.UserID, game.ID, game.IsLocked, game.ScheduledStartTime.Format(time.RFC3339))
		return nil, lockedError(game.ID)
	}

	pick := models.NewPick(req.UserID, game, req.TeamID, now)
	pick.SuperBowlTotalPointsGuess = guess

	stored, err := s.picks.Upsert(ctx, pick)
	if err != nil {
		return nil, fmt.Errorf("save pick: %w", err)
	}

	s.logger.Infow("pick saved", "user", req.UserID, "game", game.ID, "team", req.TeamID)
	return stored, nil
}

// GetPicksFor returns a user's picks for a season, optionally one week only
func (s *PickService) GetPicksFor(ctx context.Context, userID, season int, week *int) ([]*models.Pick, error) {
	if week == nil {
		return s.picks.FindByUser(ctx, userID, season)
	}
	if _, err := models.RoundForWeek(*week); err != nil {
		return nil, validationErrorf("%v", err)
	}
	return s.picks.FindByUserWeek(ctx, userID, season, *week)
}
