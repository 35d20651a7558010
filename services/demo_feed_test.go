package services

import (
	"context"
	"testing"
	"time"

	"nfl-playoff-pickem/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoFeedBracket(t *testing.T) {
	feed := NewDemoFeed(kickoff)
	games, err := feed.FetchPostseasonSchedule(context.Background(), testSeason)
	require.NoError(t, err)
	require.Len(t, games, 13)

	perWeek := map[int]int{}
	for _, g := range games {
		perWeek[g.Week]++
		assert.False(t, g.ScheduledStartTime.Before(kickoff))
	}
	assert.Equal(t, map[int]int{1: 6, 2: 4, 3: 2, 4: 1}, perWeek)
}

func TestDemoFeedPlaysGamesAgainstTheClock(t *testing.T) {
	feed := NewDemoFeed(kickoff)
	games, err := feed.FetchPostseasonSchedule(context.Background(), testSeason)
	require.NoError(t, err)
	first := games[0]
	ref := models.GameRef{GameID: first.ExternalID, ExternalID: first.ExternalID, Season: testSeason, Week: first.Week}

	at := func(now time.Time) models.GameUpdate {
		feed.now = func() time.Time { return now }
		updates, err := feed.FetchUpdatesFor(context.Background(), []models.GameRef{ref})
		require.NoError(t, err)
		require.Len(t, updates, 1)
		return updates[0]
	}

	assert.Equal(t, models.GameStatusScheduled, at(kickoff.Add(-time.Minute)).Status)

	live := at(kickoff.Add(90 * time.Minute))
	assert.Equal(t, models.GameStatusInProgress, live.Status)
	assert.Equal(t, 3, live.Period)
	require.NotNil(t, live.HomeScore)

	final := at(kickoff.Add(4 * time.Hour))
	assert.Equal(t, models.GameStatusFinal, final.Status)
	assert.NotEqual(t, *final.HomeScore, *final.AwayScore, "playoff games never end tied")
	assert.GreaterOrEqual(t, *final.HomeScore, *live.HomeScore)

	unknown, err := feed.FetchUpdatesFor(context.Background(), []models.GameRef{{ExternalID: 1, Season: testSeason, Week: 1}})
	require.NoError(t, err)
	assert.Empty(t, unknown)
}
