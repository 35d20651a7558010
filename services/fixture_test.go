package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"nfl-playoff-pickem/database"
	"nfl-playoff-pickem/models"

	"github.com/stretchr/testify/require"
)

const testSeason = 2025

// Team ids used across the tests
const (
	teamKC  = 12
	teamHOU = 34
	teamBUF = 2
	teamBAL = 33
	teamPHI = 21
	teamWSH = 28
)

var kickoff = time.Date(2026, time.January, 10, 21, 30, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fixture wires every service against one memory store and one clock
type fixture struct {
	t      *testing.T
	ctx    context.Context
	repos  *database.Repositories
	store  *database.MemoryStore
	clock  *testClock
	picks  *PickService
	locks  *LockEngine
	auto   *AutoPickService
	score  *ScoringService
	stand  *StandingsService
	stats  *StatsService
	pipe   *Pipeline
	admin  *AdminService
	feed   *fakeFeed
	syncer *FeedSyncService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos, store := database.NewMemoryRepositories()
	clock := &testClock{now: kickoff.Add(-24 * time.Hour)}
	f := &fixture{t: t, ctx: context.Background(), repos: repos, store: store, clock: clock, feed: &fakeFeed{}}

	f.picks = NewPickService(repos.Games, repos.Picks, repos.Users)
	f.picks.now = clock.Now
	f.locks = NewLockEngine(repos.Games, repos.Picks)
	f.locks.now = clock.Now
	f.auto = NewAutoPickService(repos.Games, repos.Picks, repos.Users)
	f.auto.now = clock.Now
	f.auto.coin = func() bool { return true }
	f.score = NewScoringService(repos.Games, repos.Picks)
	f.score.now = clock.Now
	f.stand = NewStandingsService(repos.Games, repos.Picks, repos.Users)
	f.stand.now = clock.Now
	f.stats = NewStatsService(f.stand, repos.Stats)
	f.syncer = NewFeedSyncService(repos.Games, repos.Picks, f.feed)
	f.syncer.now = clock.Now

	f.pipe = &Pipeline{Locks: f.locks, Backfill: f.auto, Feed: f.syncer, Scoring: f.score, Stats: f.stats}
	f.admin = NewAdminService(repos, f.pipe)
	f.admin.now = clock.Now
	return f
}

func (f *fixture) addUsers(names ...string) {
	f.t.Helper()
	for i, name := range names {
		require.NoError(f.t, f.repos.Users.Upsert(f.ctx, &models.User{ID: i + 1, Name: name, Email: name + "@pickem.local"}))
	}
}

func (f *fixture) addGame(id, week, home, away int, start time.Time) *models.Game {
	f.t.Helper()
	g := &models.Game{
		ID:                 id,
		Season:             testSeason,
		Week:               week,
		HomeTeamID:         home,
		AwayTeamID:         away,
		ScheduledStartTime: start,
		Status:             models.GameStatusScheduled,
	}
	f.store.PutGame(g)
	return g
}

// finish marks a stored game final with the given score
func (f *fixture) finish(id, home, away int) *models.Game {
	f.t.Helper()
	g := f.game(id)
	g.Status = models.GameStatusFinal
	g.IsLocked = true
	g.HomeScore, g.AwayScore = &home, &away
	g.WinningTeamID = g.DetermineWinner()
	f.store.PutGame(g)
	return g
}

func (f *fixture) game(id int) *models.Game {
	f.t.Helper()
	g, err := f.repos.Games.FindByID(f.ctx, id)
	require.NoError(f.t, err)
	require.NotNil(f.t, g, "game %d", id)
	return g
}

func (f *fixture) pick(userID, gameID int) *models.Pick {
	f.t.Helper()
	p, err := f.repos.Picks.FindOne(f.ctx, userID, gameID)
	require.NoError(f.t, err)
	require.NotNil(f.t, p, "pick user %d game %d", userID, gameID)
	return p
}

func (f *fixture) submit(userID, gameID, teamID int, guess *int) (*models.Pick, error) {
	return f.picks.SubmitPick(f.ctx, testSeason, SubmitPickRequest{
		UserID:          userID,
		GameID:          gameID,
		TeamID:          teamID,
		TiebreakerGuess: guess,
	})
}

func intPtr(v int) *int { return &v }

// fakeFeed returns canned updates, or err for every call
type fakeFeed struct {
	mu      sync.Mutex
	updates map[int]models.GameUpdate
	err     error
	calls   int
}

func (f *fakeFeed) set(u models.GameUpdate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updates == nil {
		f.updates = make(map[int]models.GameUpdate)
	}
	f.updates[u.ExternalID] = u
}

func (f *fakeFeed) FetchUpdatesFor(_ context.Context, refs []models.GameRef) ([]models.GameUpdate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []models.GameUpdate
	for _, ref := range refs {
		if u, ok := f.updates[ref.ExternalID]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func finalUpdate(id, home, away int) models.GameUpdate {
	return models.GameUpdate{ExternalID: id, Status: models.GameStatusFinal, HomeScore: &home, AwayScore: &away, Period: 4, Clock: "0:00"}
}
