package services

import (
	"context"
	"fmt"

	"nfl-playoff-pickem/database"
	"nfl-playoff-pickem/logging"
	"nfl-playoff-pickem/models"
)

// StatsService materializes UserStat rows. The rows are a cache; the
// standings endpoint never depends on them being fresh.
type StatsService struct {
	standings *StandingsService
	stats     database.UserStatRepository
	logger    *logging.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(standings *StandingsService, stats database.UserStatRepository) *StatsService {
	return &StatsService{
		standings: standings,
		stats:     stats,
		logger:    logging.WithPrefix("Stats"),
	}
}

// RecomputeSeason rebuilds every roster member's UserStat for a season from scratch
func (s *StatsService) RecomputeSeason(ctx context.Context, season int) (JobReport, error) {
	report := NewJobReport(JobStatsRefresh)

	rows, err := s.standings.ComputeSeasonStats(ctx, season)
	if err != nil {
		return report.Finish(), fmt.Errorf("compute stats for season %d: %w", season, err)
	}

	for i := range rows {
		stat := rows[i].Stat
		if err := s.stats.Replace(ctx, &stat); err != nil {
			report.Fail(fmt.Errorf("user %d: %w", stat.UserID, err))
			continue
		}
		report.Succeeded++
	}
	return report.Finish(), nil
}

// GetSeasonStats returns the stored rows for a season
func (s *StatsService) GetSeasonStats(ctx context.Context, season int) ([]*models.UserStat, error) {
	return s.stats.FindBySeason(ctx, season)
}
