package services

import (
	"testing"
	"time"

	"nfl-playoff-pickem/models"

	crerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncLocksOnKickoffAndWritesScores(t *testing.T) {
	f := newFixture(t)
	f.addUsers("ANDREW")
	f.addGame(401, models.WeekWildCard, teamKC, teamHOU, kickoff)
	f.addGame(402, models.WeekWildCard, teamBUF, teamBAL, kickoff.Add(4*time.Hour))
	_, err := f.submit(1, 401, teamKC, nil)
	require.NoError(t, err)

	// Feed reports play started before the lock engine has run
	f.clock.Set(kickoff.Add(-30 * time.Second))
	f.feed.set(models.GameUpdate{ExternalID: 401, Status: models.GameStatusInProgress, HomeScore: intPtr(7), AwayScore: intPtr(3), Period: 1, Clock: "8:12"})
	f.feed.set(models.GameUpdate{ExternalID: 402, Status: models.GameStatusScheduled})

	report, err := f.syncer.Sync(f.ctx, testSeason)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Skipped, "unchanged game")

	g := f.game(401)
	assert.Equal(t, models.GameStatusInProgress, g.Status)
	assert.True(t, g.IsLocked)
	assert.Equal(t, 7, *g.HomeScore)
	assert.Equal(t, 1, g.Quarter)
	assert.Equal(t, "8:12", g.Clock)
	assert.Nil(t, g.WinningTeamID, "no winner before final")
	assert.True(t, f.pick(1, 401).Locked)
	assert.False(t, f.game(402).IsLocked)

	_, err = f.submit(1, 401, teamHOU, nil)
	assert.True(t, IsGameLocked(err))
}

func TestSyncSetsWinnerOnlyWhenFinal(t *testing.T) {
	f := newFixture(t)
	f.addGame(401, models.WeekWildCard, teamKC, teamHOU, kickoff)
	f.addGame(402, models.WeekWildCard, teamBUF, teamBAL, kickoff)

	f.feed.set(finalUpdate(401, 17, 24))
	f.feed.set(models.GameUpdate{ExternalID: 402, Status: models.GameStatusPostponed})

	_, err := f.syncer.Sync(f.ctx, testSeason)
	require.NoError(t, err)

	final := f.game(401)
	require.NotNil(t, final.WinningTeamID)
	assert.Equal(t, teamHOU, *final.WinningTeamID)
	assert.True(t, final.IsLocked)

	postponed := f.game(402)
	assert.Equal(t, models.GameStatusPostponed, postponed.Status)
	assert.Nil(t, postponed.WinningTeamID)
	assert.False(t, postponed.IsLocked, "a postponed game keeps its schedule-driven lock")
}

func TestSyncNeverRewritesFinalGames(t *testing.T) {
	f := newFixture(t)
	f.addGame(401, models.WeekWildCard, teamKC, teamHOU, kickoff)
	f.finish(401, 24, 17)

	f.feed.set(finalUpdate(401, 0, 35))
	report, err := f.syncer.Sync(f.ctx, testSeason)
	require.NoError(t, err)
	assert.Zero(t, f.feed.calls, "no syncable games means no feed call")
	assert.Zero(t, report.Succeeded)
	assert.Equal(t, 24, *f.game(401).HomeScore)
}

func TestSyncKeepsLastKnownStateWhenFeedIsDown(t *testing.T) {
	f := newFixture(t)
	g := f.addGame(401, models.WeekWildCard, teamKC, teamHOU, kickoff)
	g.Status = models.GameStatusInProgress
	g.IsLocked = true
	g.HomeScore, g.AwayScore = intPtr(14), intPtr(10)
	f.store.PutGame(g)

	f.feed.err = crerr.Mark(crerr.New("connection refused"), ErrFeedUnavailable)
	report, err := f.syncer.Sync(f.ctx, testSeason)
	require.Error(t, err)
	assert.True(t, IsFeedUnavailable(err))
	assert.Equal(t, 1, report.Errored)

	stale := f.game(401)
	assert.Equal(t, models.GameStatusInProgress, stale.Status)
	assert.Equal(t, 14, *stale.HomeScore)
}

func TestSyncSkipsGamesMissingFromFeed(t *testing.T) {
	f := newFixture(t)
	f.addGame(401, models.WeekWildCard, teamKC, teamHOU, kickoff)
	f.addGame(402, models.WeekWildCard, teamBUF, teamBAL, kickoff)
	f.feed.set(finalUpdate(402, 10, 3))

	report, err := f.syncer.Sync(f.ctx, testSeason)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, models.GameStatusScheduled, f.game(401).Status)
}

func TestStateFromUpdate(t *testing.T) {
	game := &models.Game{HomeTeamID: teamKC, AwayTeamID: teamHOU}

	live := StateFromUpdate(game, models.GameUpdate{Status: models.GameStatusInProgress, HomeScore: intPtr(21), AwayScore: intPtr(3)})
	assert.Nil(t, live.WinningTeamID)

	tie := StateFromUpdate(game, finalUpdate(0, 20, 20))
	assert.Nil(t, tie.WinningTeamID)

	final := StateFromUpdate(game, finalUpdate(0, 20, 23))
	require.NotNil(t, final.WinningTeamID)
	assert.Equal(t, teamHOU, *final.WinningTeamID)
	assert.Equal(t, 4, final.Quarter)
}
