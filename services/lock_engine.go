package services

import (
	"context"
	"fmt"
	"time"

	"nfl-playoff-pickem/database"
	"nfl-playoff-pickem/logging"
)

// LockEngine closes games to picks once kickoff passes. It reads only the
// schedule and the clock, never the score feed.
type LockEngine struct {
	games  database.GameRepository
	picks  database.PickRepository
	now    func() time.Time
	logger *logging.Logger
}

// NewLockEngine creates a new lock engine
func NewLockEngine(games database.GameRepository, picks database.PickRepository) *LockEngine {
	return &LockEngine{
		games:  games,
		picks:  picks,
		now:    time.Now,
		logger: logging.WithPrefix("LockEngine"),
	}
}

// LockDueGames locks every game of the season whose kickoff is at or before
// now and mirrors the lock onto the games' picks. It returns the ids it locked.
func (e *LockEngine) LockDueGames(ctx context.Context, season int) ([]int, JobReport, error) {
	report := NewJobReport(JobLockCheck)

	ids, err := e.games.LockDueGames(ctx, season, e.now())
	if err != nil {
		return nil, report.Finish(), fmt.Errorf("lock due games for season %d: %w", season, err)
	}
	report.Succeeded = len(ids)

	if len(ids) > 0 {
		e.logger.Infow("locked games", "season", season, "games", ids)
		// Games are the authority for lock state; the pick flag is a mirror
		if err := e.picks.LockForGames(ctx, ids, true); err != nil {
			report.Fail(err)
			e.logger.Errorw("failed to mirror lock onto picks", "games", ids, "err", err)
		}
	}
	return ids, report.Finish(), nil
}
