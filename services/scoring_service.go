package services

import (
	"context"
	"fmt"
	"time"

	"nfl-playoff-pickem/database"
	"nfl-playoff-pickem/logging"
	"nfl-playoff-pickem/models"
)

// ScoringService resolves pending picks of final games. Resolved picks are
// never reopened here; a post-final correction goes through AdminService.
type ScoringService struct {
	games  database.GameRepository
	picks  database.PickRepository
	now    func() time.Time
	logger *logging.Logger
}

// NewScoringService creates a new scoring service
func NewScoringService(games database.GameRepository, picks database.PickRepository) *ScoringService {
	return &ScoringService{
		games:  games,
		picks:  picks,
		now:    time.Now,
		logger: logging.WithPrefix("Scoring"),
	}
}

// ScoreGame resolves the pending picks of one final game and returns how
// many it resolved. Games without a winner are left alone.
func (s *ScoringService) ScoreGame(ctx context.Context, game *models.Game) (int64, error) {
	if !game.IsFinal() {
		return 0, nil
	}
	if game.WinningTeamID == nil {
		s.logger.Warnw("final game has no winner, not scoring", "game", game.ID)
		return 0, nil
	}

	round, err := models.RoundForWeek(game.Week)
	if err != nil {
		return 0, validationErrorf("game %d: %v", game.ID, err)
	}

	n, err := s.picks.ResolveGame(ctx, game.ID, *game.WinningTeamID, round.PointsPerCorrectPick, s.now())
	if err != nil {
		return n, fmt.Errorf("resolve picks for game %d: %w", game.ID, err)
	}
	if n > 0 {
		s.logger.Infow("scored picks", "game", game.ID, "round", round.Name, "resolved", n)
	}
	return n, nil
}

// ScoreFinalGames scores every final game of a season. Running it again
// changes nothing because only pending picks are touched.
func (s *ScoringService) ScoreFinalGames(ctx context.Context, season int) (JobReport, error) {
	report := NewJobReport("scoring")

	games, err := s.games.FindFinal(ctx, season)
	if err != nil {
		return report.Finish(), fmt.Errorf("find final games: %w", err)
	}

	for _, game := range games {
		n, err := s.ScoreGame(ctx, game)
		switch {
		case err != nil:
			report.Fail(err)
		case n == 0:
			report.Skipped++
		default:
			report.Succeeded++
		}
	}
	return report.Finish(), nil
}
