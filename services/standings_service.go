package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"nfl-playoff-pickem/database"
	"nfl-playoff-pickem/models"
)

// AggregateUserStat rolls one user's season picks into totals. Zero picks
// yields a zero stat. finalGame may be nil before the Super Bowl is scheduled.
func AggregateUserStat(userID, season int, picks []*models.Pick, finalGame *models.Game, now time.Time) models.UserStat {
	stat := models.UserStat{
		UserID:    userID,
		Season:    season,
		UpdatedAt: now,
	}

	for _, p := range picks {
		if p.UserID != userID || p.Season != season {
			continue
		}
		switch {
		case p.IsCorrect():
			stat.TotalCorrectPicks++
			stat.CorrectByRound.Add(p.Week)
		case p.IsIncorrect():
			stat.TotalIncorrectPicks++
		default:
			stat.TotalPendingPicks++
		}
		stat.TotalPoints += p.PointsEarned

		if finalGame != nil && p.GameID == finalGame.ID {
			stat.TiebreakerDifference = TiebreakerDifference(p.SuperBowlTotalPointsGuess, finalGame)
		}
	}
	return stat
}

// StandingRow is an aggregate paired with the display name used as the last sort key
type StandingRow struct {
	UserName string
	Stat     models.UserStat
}

// RankStandings orders rows by points, then correct picks, then tiebreaker
// difference (missing sorts last), then name. Rows equal on the first three
// keys share a rank and the next group's rank is its 1-based position.
func RankStandings(rows []StandingRow) []models.RankedStanding {
	sorted := make([]StandingRow, len(rows))
	copy(sorted, rows)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Stat, sorted[j].Stat
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.TotalCorrectPicks != b.TotalCorrectPicks {
			return a.TotalCorrectPicks > b.TotalCorrectPicks
		}
		if c := compareTiebreaker(a.TiebreakerDifference, b.TiebreakerDifference); c != 0 {
			return c < 0
		}
		if sorted[i].UserName != sorted[j].UserName {
			return sorted[i].UserName < sorted[j].UserName
		}
		return a.UserID < b.UserID
	})

	ranked := make([]models.RankedStanding, len(sorted))
	for i, row := range sorted {
		rank := i + 1
		if i > 0 && sameRankKey(sorted[i-1].Stat, row.Stat) {
			rank = ranked[i-1].Rank
		}
		ranked[i] = models.RankedStanding{Rank: rank, UserName: row.UserName, Stat: row.Stat}
	}
	return ranked
}

// compareTiebreaker orders lower differences first and nil after any value
func compareTiebreaker(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}

func sameRankKey(a, b models.UserStat) bool {
	return a.TotalPoints == b.TotalPoints &&
		a.TotalCorrectPicks == b.TotalCorrectPicks &&
		compareTiebreaker(a.TiebreakerDifference, b.TiebreakerDifference) == 0
}

// StandingsService computes the leaderboard directly from picks and games
type StandingsService struct {
	games database.GameRepository
	picks database.PickRepository
	users database.UserRepository
	now   func() time.Time
}

// NewStandingsService creates a new standings service
func NewStandingsService(games database.GameRepository, picks database.PickRepository, users database.UserRepository) *StandingsService {
	return &StandingsService{
		games: games,
		picks: picks,
		users: users,
		now:   time.Now,
	}
}

// ComputeSeasonStats aggregates every roster member's picks for a season
func (s *StandingsService) ComputeSeasonStats(ctx context.Context, season int) ([]StandingRow, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	picks, err := s.picks.FindBySeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("load picks for season %d: %w", season, err)
	}
	finalRound, err := s.games.FindByWeek(ctx, season, models.WeekSuperBowl)
	if err != nil {
		return nil, fmt.Errorf("load final round for season %d: %w", season, err)
	}
	finalGame := finalRoundGame(finalRound)

	byUser := make(map[int][]*models.Pick, len(users))
	for _, p := range picks {
		byUser[p.UserID] = append(byUser[p.UserID], p)
	}

	now := s.now()
	rows := make([]StandingRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, StandingRow{
			UserName: u.Name,
			Stat:     AggregateUserStat(u.ID, season, byUser[u.ID], finalGame, now),
		})
	}
	return rows, nil
}

// GetStandings returns the ranked leaderboard for a season
func (s *StandingsService) GetStandings(ctx context.Context, season int) ([]models.RankedStanding, error) {
	rows, err := s.ComputeSeasonStats(ctx, season)
	if err != nil {
		return nil, err
	}
	return RankStandings(rows), nil
}
