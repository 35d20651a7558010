package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"nfl-playoff-pickem/database"
	"nfl-playoff-pickem/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackfillGivesEveryUserOnePick(t *testing.T) {
	f := newFixture(t)
	f.addUsers("ANDREW", "BARDIA", "COOPER")
	f.addGame(401, models.WeekWildCard, teamKC, teamHOU, kickoff)
	f.addGame(402, models.WeekWildCard, teamBUF, teamBAL, kickoff.Add(4*time.Hour))

	f.clock.Set(kickoff.Add(-time.Hour))
	_, err := f.submit(1, 401, teamHOU, nil)
	require.NoError(t, err)

	f.clock.Set(kickoff.Add(time.Minute))
	_, _, err = f.locks.LockDueGames(f.ctx, testSeason)
	require.NoError(t, err)

	report, err := f.auto.BackfillLockedGames(f.ctx, testSeason)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 0, report.Errored)

	picks, err := f.repos.Picks.FindByGame(f.ctx, 401)
	require.NoError(t, err)
	require.Len(t, picks, 3)
	for _, p := range picks {
		assert.True(t, p.Locked)
		assert.True(t, f.game(401).HasTeam(p.SelectedTeamID))
		if p.UserID == 1 {
			assert.False(t, p.IsAutoPick, "a submitted pick is never replaced")
			assert.Equal(t, teamHOU, p.SelectedTeamID)
		} else {
			assert.True(t, p.IsAutoPick)
			assert.Equal(t, teamKC, p.SelectedTeamID, "coin stub always picks home")
		}
	}

	unlocked, err := f.repos.Picks.FindByGame(f.ctx, 402)
	require.NoError(t, err)
	assert.Empty(t, unlocked, "unlocked games are never backfilled")
}

func TestBackfillIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.addUsers("ANDREW", "BARDIA", "COOPER")
	f.addGame(401, models.WeekWildCard, teamKC, teamHOU, kickoff)

	f.clock.Set(kickoff.Add(time.Minute))
	_, _, err := f.locks.LockDueGames(f.ctx, testSeason)
	require.NoError(t, err)

	first, err := f.auto.BackfillLockedGames(f.ctx, testSeason)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Succeeded)

	before, err := f.repos.Picks.FindByGame(f.ctx, 401)
	require.NoError(t, err)

	second, err := f.auto.BackfillLockedGames(f.ctx, testSeason)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Succeeded)

	after, err := f.repos.Picks.FindByGame(f.ctx, 401)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestConcurrentBackfillsInsertEachPickOnce(t *testing.T) {
	f := newFixture(t)
	f.addUsers("ANDREW", "BARDIA", "COOPER", "MICAH", "RYAN")
	f.addGame(401, models.WeekWildCard, teamKC, teamHOU, kickoff)
	f.clock.Set(kickoff.Add(time.Minute))
	_, _, err := f.locks.LockDueGames(f.ctx, testSeason)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report, err := f.auto.BackfillLockedGames(context.Background(), testSeason)
			assert.NoError(t, err)
			assert.Equal(t, 0, report.Errored)
			mu.Lock()
			inserted += report.Succeeded
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, inserted)
	assert.Equal(t, 5, f.store.PickCount())
}

// duplicateOnInsert simulates a submit that wins the race between the
// existing-pick read and the insert
type duplicateOnInsert struct {
	database.PickRepository
}

func (d duplicateOnInsert) InsertAutoPick(context.Context, *models.Pick) error {
	return database.ErrDuplicatePick
}

func TestBackfillTreatsDuplicateAsSkipped(t *testing.T) {
	f := newFixture(t)
	f.addUsers("ANDREW", "BARDIA")
	g := f.addGame(401, models.WeekWildCard, teamKC, teamHOU, kickoff)
	g.IsLocked = true
	f.store.PutGame(g)

	svc := NewAutoPickService(f.repos.Games, duplicateOnInsert{f.repos.Picks}, f.repos.Users)
	report, err := svc.BackfillLockedGames(f.ctx, testSeason)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Succeeded)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 0, report.Errored)
}
