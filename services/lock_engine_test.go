package services

import (
	"testing"
	"time"

	"nfl-playoff-pickem/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockDueGamesLocksOnlyStartedGames(t *testing.T) {
	f := newFixture(t)
	f.addUsers("ANDREW")
	f.addGame(401, models.WeekWildCard, teamKC, teamHOU, kickoff)
	f.addGame(402, models.WeekWildCard, teamBUF, teamBAL, kickoff.Add(4*time.Hour))

	f.clock.Set(kickoff.Add(-time.Hour))
	_, err := f.submit(1, 401, teamKC, nil)
	require.NoError(t, err)

	ids, report, err := f.locks.LockDueGames(f.ctx, testSeason)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Equal(t, 0, report.Succeeded)

	f.clock.Set(kickoff)
	ids, report, err = f.locks.LockDueGames(f.ctx, testSeason)
	require.NoError(t, err)
	assert.Equal(t, []int{401}, ids)
	assert.Equal(t, 1, report.Succeeded)

	g := f.game(401)
	assert.True(t, g.IsLocked)
	require.NotNil(t, g.LockedAt)
	assert.True(t, g.LockedAt.Equal(kickoff))
	assert.False(t, f.game(402).IsLocked)
	assert.True(t, f.pick(1, 401).Locked, "pick lock mirrors the game")
}

func TestLockMonotonicity(t *testing.T) {
	f := newFixture(t)
	f.addGame(401, models.WeekWildCard, teamKC, teamHOU, kickoff)

	f.clock.Set(kickoff.Add(time.Minute))
	_, _, err := f.locks.LockDueGames(f.ctx, testSeason)
	require.NoError(t, err)
	lockedAt := *f.game(401).LockedAt

	// Clock skew backwards, repeated runs and a schedule reload never unlock
	for _, now := range []time.Time{kickoff.Add(-time.Hour), kickoff.Add(2 * time.Minute), kickoff.Add(time.Hour)} {
		f.clock.Set(now)
		ids, _, err := f.locks.LockDueGames(f.ctx, testSeason)
		require.NoError(t, err)
		assert.Empty(t, ids, "already locked games are not reported again")

		g := f.game(401)
		assert.True(t, g.IsLocked)
		assert.True(t, g.LockedAt.Equal(lockedAt))
	}

	later := f.game(401)
	_, err = f.repos.Games.UpsertSchedule(f.ctx, []*models.Game{{
		ID: 401, Season: testSeason, Week: models.WeekWildCard,
		HomeTeamID: teamKC, AwayTeamID: teamHOU,
		ScheduledStartTime: later.ScheduledStartTime.Add(24 * time.Hour),
	}}, f.clock.Now())
	require.NoError(t, err)
	assert.True(t, f.game(401).IsLocked)
}

func TestLockDueGamesIgnoresOtherSeasons(t *testing.T) {
	f := newFixture(t)
	g := f.addGame(301, models.WeekWildCard, teamKC, teamHOU, kickoff.AddDate(-1, 0, 0))
	g.Season = testSeason - 1
	f.store.PutGame(g)

	f.clock.Set(kickoff)
	ids, _, err := f.locks.LockDueGames(f.ctx, testSeason)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.False(t, f.game(301).IsLocked)
}
