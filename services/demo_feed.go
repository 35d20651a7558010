package services

import (
	"context"
	"fmt"
	"time"

	"nfl-playoff-pickem/logging"
	"nfl-playoff-pickem/models"
)

const demoGameLength = 3 * time.Hour

// DemoFeed is an offline ScheduleSource and ScoreFeed for demo mode. It
// invents a full bracket anchored at a start time and plays each game out
// deterministically against the clock.
type DemoFeed struct {
	anchor time.Time
	now    func() time.Time
	logger *logging.Logger
}

// NewDemoFeed creates a demo feed whose first Wild Card game kicks off at anchor
func NewDemoFeed(anchor time.Time) *DemoFeed {
	return &DemoFeed{
		anchor: anchor,
		now:    time.Now,
		logger: logging.WithPrefix("DemoFeed"),
	}
}

// demo bracket by abbreviation: round -> matchups (home, away)
var demoBracket = map[int][][2]string{
	models.WeekWildCard:   {{"HOU", "LAC"}, {"BAL", "PIT"}, {"BUF", "DEN"}, {"PHI", "GB"}, {"TB", "WSH"}, {"LAR", "MIN"}},
	models.WeekDivisional: {{"KC", "HOU"}, {"BUF", "BAL"}, {"DET", "WSH"}, {"PHI", "LAR"}},
	models.WeekConference: {{"KC", "BUF"}, {"PHI", "WSH"}},
	models.WeekSuperBowl:  {{"KC", "PHI"}},
}

var demoRoundOffset = map[int]time.Duration{
	models.WeekWildCard:   0,
	models.WeekDivisional: 7 * 24 * time.Hour,
	models.WeekConference: 14 * 24 * time.Hour,
	models.WeekSuperBowl:  28 * 24 * time.Hour,
}

func demoGameID(season, week, index int) int {
	return season*1000 + week*10 + index
}

// FetchPostseasonSchedule returns the invented bracket for a season
func (d *DemoFeed) FetchPostseasonSchedule(_ context.Context, season int) ([]models.ScheduledGame, error) {
	var games []models.ScheduledGame
	for _, round := range models.PlayoffRounds {
		for i, m := range demoBracket[round.Week] {
			home, okHome := TeamByAbbreviation(m[0])
			away, okAway := TeamByAbbreviation(m[1])
			if !okHome || !okAway {
				return nil, fmt.Errorf("demo bracket references unknown team %s or %s", m[0], m[1])
			}
			games = append(games, models.ScheduledGame{
				ExternalID:         demoGameID(season, round.Week, i),
				Season:             season,
				Week:               round.Week,
				HomeTeamID:         home.ID,
				AwayTeamID:         away.ID,
				ScheduledStartTime: d.anchor.Add(demoRoundOffset[round.Week] + time.Duration(i)*4*time.Hour),
			})
		}
	}
	return games, nil
}

// FetchUpdatesFor reports each game's simulated state at the current time
func (d *DemoFeed) FetchUpdatesFor(ctx context.Context, refs []models.GameRef) ([]models.GameUpdate, error) {
	now := d.now()
	updates := make([]models.GameUpdate, 0, len(refs))
	for _, ref := range refs {
		start, ok := d.kickoff(ref)
		if !ok {
			continue
		}
		updates = append(updates, simulateGame(ref.ExternalID, start, now))
	}
	return updates, nil
}

func (d *DemoFeed) kickoff(ref models.GameRef) (time.Time, bool) {
	index := ref.ExternalID - demoGameID(ref.Season, ref.Week, 0)
	matchups, ok := demoBracket[ref.Week]
	if !ok || index < 0 || index >= len(matchups) {
		return time.Time{}, false
	}
	return d.anchor.Add(demoRoundOffset[ref.Week] + time.Duration(index)*4*time.Hour), true
}

// simulateGame derives a deterministic game state from the id and elapsed time
func simulateGame(id int, start, now time.Time) models.GameUpdate {
	update := models.GameUpdate{ExternalID: id, Status: models.GameStatusScheduled}
	if now.Before(start) {
		return update
	}

	finalHome := 10 + (id*7)%25
	finalAway := 10 + (id*11)%25
	if finalHome == finalAway {
		finalHome += 3
	}

	elapsed := now.Sub(start)
	if elapsed >= demoGameLength {
		update.Status = models.GameStatusFinal
		update.HomeScore, update.AwayScore = &finalHome, &finalAway
		update.Period = 4
		update.Clock = "0:00"
		return update
	}

	frac := float64(elapsed) / float64(demoGameLength)
	home := int(float64(finalHome) * frac)
	away := int(float64(finalAway) * frac)
	quarterLength := demoGameLength / 4
	quarter := int(elapsed/quarterLength) + 1
	remaining := quarterLength - elapsed%quarterLength
	gameClock := time.Duration(float64(remaining) / float64(quarterLength) * float64(15*time.Minute))

	update.Status = models.GameStatusInProgress
	update.HomeScore, update.AwayScore = &home, &away
	update.Period = quarter
	update.Clock = fmt.Sprintf("%d:%02d", int(gameClock.Minutes()), int(gameClock.Seconds())%60)
	return update
}
