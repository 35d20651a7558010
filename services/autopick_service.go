package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"nfl-playoff-pickem/database"
	"nfl-playoff-pickem/logging"
	"nfl-playoff-pickem/models"
)

// AutoPickService gives every roster member a pick for every locked game.
// The (user, game) unique index decides races; a duplicate means the user
// already has a pick, which is the goal.
type AutoPickService struct {
	games  database.GameRepository
	picks  database.PickRepository
	users  database.UserRepository
	now    func() time.Time
	coin   func() bool
	logger *logging.Logger
}

// NewAutoPickService creates a new backfill service
func NewAutoPickService(games database.GameRepository, picks database.PickRepository, users database.UserRepository) *AutoPickService {
	return &AutoPickService{
		games:  games,
		picks:  picks,
		users:  users,
		now:    time.Now,
		coin:   func() bool { return rand.Intn(2) == 0 },
		logger: logging.WithPrefix("AutoPick"),
	}
}

// BackfillLockedGames fills missing picks for every locked game of a season
func (s *AutoPickService) BackfillLockedGames(ctx context.Context, season int) (JobReport, error) {
	report := NewJobReport("auto-pick")

	games, err := s.games.FindLocked(ctx, season)
	if err != nil {
		return report.Finish(), fmt.Errorf("find locked games: %w", err)
	}
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return report.Finish(), fmt.Errorf("load roster: %w", err)
	}

	for _, game := range games {
		report.Merge(s.backfillGame(ctx, game, users))
	}

	if report.Succeeded > 0 {
		s.logger.Infow("backfilled auto picks", "season", season, "inserted", report.Succeeded, "games", len(games))
	}
	return report.Finish(), nil
}

// backfillGame inserts a coin-flip pick for each roster member without one
func (s *AutoPickService) backfillGame(ctx context.Context, game *models.Game, users []*models.User) JobReport {
	var report JobReport
	if !game.IsLocked {
		return report
	}

	existing, err := s.picks.FindByGame(ctx, game.ID)
	if err != nil {
		report.Fail(fmt.Errorf("game %d: %w", game.ID, err))
		return report
	}
	has := make(map[int]bool, len(existing))
	for _, p := range existing {
		has[p.UserID] = true
	}

	for _, user := range users {
		if has[user.ID] {
			continue
		}

		teamID := game.AwayTeamID
		if s.coin() {
			teamID = game.HomeTeamID
		}
		now := s.now()
		pick := models.NewPick(user.ID, game, teamID, now)
		pick.IsAutoPick = true
		pick.Locked = true

		err := s.picks.InsertAutoPick(ctx, pick)
		switch {
		case err == nil:
			report.Succeeded++
		case errors.Is(err, database.ErrDuplicatePick):
			// Submitted or backfilled concurrently
			report.Skipped++
		default:
			report.Fail(fmt.Errorf("user %d game %d: %w", user.ID, game.ID, err))
			s.logger.Errorw("auto pick insert failed", "user", user.ID, "game", game.ID, "err", err)
		}
	}
	return report
}
