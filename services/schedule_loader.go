package services

import (
	"context"
	"fmt"
	"time"

	"nfl-playoff-pickem/database"
	"nfl-playoff-pickem/logging"
	"nfl-playoff-pickem/models"
)

// ScheduleLoader seeds playoff games from the provider schedule
type ScheduleLoader struct {
	source ScheduleSource
	games  database.GameRepository
	teams  database.TeamRepository
	now    func() time.Time
	logger *logging.Logger
}

// NewScheduleLoader creates a new schedule loader
func NewScheduleLoader(source ScheduleSource, games database.GameRepository, teams database.TeamRepository) *ScheduleLoader {
	return &ScheduleLoader{
		source: source,
		games:  games,
		teams:  teams,
		now:    time.Now,
		logger: logging.WithPrefix("ScheduleLoader"),
	}
}

// Load upserts the season's postseason schedule. Only schedule fields are
// written, so reloading never unlocks a game or clears a score.
func (l *ScheduleLoader) Load(ctx context.Context, season int) (JobReport, error) {
	report := NewJobReport("schedule-load")

	scheduled, err := l.source.FetchPostseasonSchedule(ctx, season)
	if err != nil {
		return report.Finish(), fmt.Errorf("fetch schedule for season %d: %w", season, err)
	}

	known, err := l.teams.FindAll(ctx)
	if err != nil {
		return report.Finish(), fmt.Errorf("load teams: %w", err)
	}
	teamIDs := make(map[int]bool, len(known))
	for _, t := range known {
		teamIDs[t.ID] = true
	}

	games := make([]*models.Game, 0, len(scheduled))
	for _, sg := range scheduled {
		if _, err := models.RoundForWeek(sg.Week); err != nil {
			report.Fail(fmt.Errorf("game %d: %w", sg.ExternalID, err))
			continue
		}
		if len(teamIDs) > 0 && (!teamIDs[sg.HomeTeamID] || !teamIDs[sg.AwayTeamID]) {
			report.Fail(fmt.Errorf("game %d has unknown team %d or %d", sg.ExternalID, sg.HomeTeamID, sg.AwayTeamID))
			continue
		}
		games = append(games, &models.Game{
			ID:                 sg.ExternalID,
			Season:             season,
			Week:               sg.Week,
			HomeTeamID:         sg.HomeTeamID,
			AwayTeamID:         sg.AwayTeamID,
			ScheduledStartTime: sg.ScheduledStartTime,
			Status:             models.GameStatusScheduled,
		})
	}

	written, err := l.games.UpsertSchedule(ctx, games, l.now())
	report.Succeeded = written
	if err != nil {
		report.Fail(err)
		return report.Finish(), fmt.Errorf("store schedule: %w", err)
	}

	l.logger.Infof("Loaded %d playoff games for season %d", written, season)
	return report.Finish(), nil
}
