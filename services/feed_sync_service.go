package services

import (
	"context"
	"fmt"
	"time"

	"nfl-playoff-pickem/database"
	"nfl-playoff-pickem/logging"
	"nfl-playoff-pickem/models"
)

// FeedSyncService is the only writer of feed data. It pulls updates for
// every game that can still change and persists them one game at a time,
// so a failure partway leaves earlier games written.
type FeedSyncService struct {
	games  database.GameRepository
	picks  database.PickRepository
	feed   ScoreFeed
	now    func() time.Time
	logger *logging.Logger
}

// NewFeedSyncService creates a new feed sync service
func NewFeedSyncService(games database.GameRepository, picks database.PickRepository, feed ScoreFeed) *FeedSyncService {
	return &FeedSyncService{
		games:  games,
		picks:  picks,
		feed:   feed,
		now:    time.Now,
		logger: logging.WithPrefix("FeedSync"),
	}
}

// Sync applies the latest provider state to the season's unfinished games.
// A feed outage returns ErrFeedUnavailable and leaves stored state as it was.
func (s *FeedSyncService) Sync(ctx context.Context, season int) (JobReport, error) {
	report := NewJobReport("feed-sync")

	games, err := s.games.FindSyncable(ctx, season)
	if err != nil {
		return report.Finish(), fmt.Errorf("find syncable games: %w", err)
	}
	if len(games) == 0 {
		return report.Finish(), nil
	}

	refs := make([]models.GameRef, 0, len(games))
	for _, g := range games {
		refs = append(refs, g.Ref())
	}

	updates, err := s.feed.FetchUpdatesFor(ctx, refs)
	if err != nil {
		report.Errored = len(games)
		s.logger.Warnw("feed unavailable, keeping last known state", "season", season, "games", len(games), "err", err)
		return report.Finish(), fmt.Errorf("fetch updates: %w", err)
	}

	byExternal := make(map[int]models.GameUpdate, len(updates))
	for _, u := range updates {
		byExternal[u.ExternalID] = u
	}

	for _, game := range games {
		update, ok := byExternal[game.ID]
		if !ok {
			report.Skipped++
			continue
		}
		changed, err := s.apply(ctx, game, update)
		switch {
		case err != nil:
			report.Fail(err)
			s.logger.Errorw("failed to apply update", "game", game.ID, "err", err)
		case changed:
			report.Succeeded++
		default:
			report.Skipped++
		}
	}
	return report.Finish(), nil
}

// apply writes one update. It locks the game first when the feed says play
// has begun, so the lock never trails a live score.
func (s *FeedSyncService) apply(ctx context.Context, game *models.Game, update models.GameUpdate) (bool, error) {
	state := StateFromUpdate(game, update)
	if sameState(game, state) {
		return false, nil
	}

	now := s.now()
	if (state.Status == models.GameStatusInProgress || state.Status == models.GameStatusFinal) && !game.IsLocked {
		locked, err := s.games.LockGames(ctx, []int{game.ID}, now)
		if err != nil {
			return false, fmt.Errorf("lock game %d: %w", game.ID, err)
		}
		if len(locked) > 0 {
			if err := s.picks.LockForGames(ctx, locked, true); err != nil {
				s.logger.Warnw("failed to mirror lock onto picks", "game", game.ID, "err", err)
			}
		}
	}

	applied, err := s.games.ApplyState(ctx, game.ID, state, now)
	if err != nil {
		return false, fmt.Errorf("apply state to game %d: %w", game.ID, err)
	}
	if applied && state.Status == models.GameStatusFinal {
		s.logger.Infow("game final", "game", game.ID, "home", deref(state.HomeScore), "away", deref(state.AwayScore))
	}
	return applied, nil
}

// StateFromUpdate maps a feed update onto a game. The winner is set only for
// a final game with two different scores.
func StateFromUpdate(game *models.Game, update models.GameUpdate) database.GameState {
	state := database.GameState{
		Status:    update.Status,
		HomeScore: update.HomeScore,
		AwayScore: update.AwayScore,
		Quarter:   update.Period,
		Clock:     update.Clock,
	}
	probe := models.Game{
		HomeTeamID: game.HomeTeamID,
		AwayTeamID: game.AwayTeamID,
		Status:     update.Status,
		HomeScore:  update.HomeScore,
		AwayScore:  update.AwayScore,
	}
	state.WinningTeamID = probe.DetermineWinner()
	return state
}

func sameState(game *models.Game, state database.GameState) bool {
	return game.Status == state.Status &&
		equalIntPtr(game.HomeScore, state.HomeScore) &&
		equalIntPtr(game.AwayScore, state.AwayScore) &&
		equalIntPtr(game.WinningTeamID, state.WinningTeamID) &&
		game.Quarter == state.Quarter &&
		game.Clock == state.Clock
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
