package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(v int) *int { return &v }

func TestRoundForWeek(t *testing.T) {
	points := []int{2, 3, 4, 5}
	for i, want := range points {
		round, err := RoundForWeek(i + 1)
		require.NoError(t, err)
		assert.Equal(t, want, round.PointsPerCorrectPick)
		assert.Equal(t, i+1, round.Order)
	}

	for _, week := range []int{0, 5, 18, -1} {
		_, err := RoundForWeek(week)
		assert.Error(t, err, "week %d", week)
	}
	assert.True(t, IsFinalRound(WeekSuperBowl))
	assert.False(t, IsFinalRound(WeekConference))
}

func TestDetermineWinner(t *testing.T) {
	tests := []struct {
		name   string
		game   Game
		winner *int
	}{
		{"home wins", Game{Status: GameStatusFinal, HomeScore: score(27), AwayScore: score(20)}, score(12)},
		{"away wins", Game{Status: GameStatusFinal, HomeScore: score(10), AwayScore: score(13)}, score(34)},
		{"tied", Game{Status: GameStatusFinal, HomeScore: score(17), AwayScore: score(17)}, nil},
		{"not final", Game{Status: GameStatusInProgress, HomeScore: score(27), AwayScore: score(0)}, nil},
		{"missing score", Game{Status: GameStatusFinal, HomeScore: score(27)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.game.HomeTeamID, tt.game.AwayTeamID = 12, 34
			assert.Equal(t, tt.winner, tt.game.DetermineWinner())
		})
	}
}

func TestGameLockRules(t *testing.T) {
	kickoff := time.Date(2026, time.January, 11, 18, 0, 0, 0, time.UTC)
	g := Game{ScheduledStartTime: kickoff, Status: GameStatusScheduled}

	assert.True(t, g.AcceptsPicks(kickoff.Add(-time.Second)))
	assert.False(t, g.AcceptsPicks(kickoff), "kickoff itself is too late")
	assert.True(t, g.ShouldBeLocked(kickoff))
	assert.False(t, g.ShouldBeLocked(kickoff.Add(-time.Minute)))

	g.IsLocked = true
	assert.False(t, g.AcceptsPicks(kickoff.Add(-time.Hour)))

	early := Game{ScheduledStartTime: kickoff, Status: GameStatusInProgress}
	assert.True(t, early.ShouldBeLocked(kickoff.Add(-time.Hour)), "feed says play began")
}

func TestCombinedScore(t *testing.T) {
	g := Game{Status: GameStatusFinal, HomeScore: score(28), AwayScore: score(32)}
	total, ok := g.CombinedScore()
	assert.True(t, ok)
	assert.Equal(t, 60, total)

	g.Status = GameStatusInProgress
	_, ok = g.CombinedScore()
	assert.False(t, ok)
}

func TestNewPickIsPending(t *testing.T) {
	now := time.Date(2026, time.January, 9, 12, 0, 0, 0, time.UTC)
	p := NewPick(7, &Game{ID: 401, Season: 2025, Week: WeekDivisional}, 12, now)
	assert.True(t, p.IsPending())
	assert.False(t, p.IsCorrect())
	assert.False(t, p.IsIncorrect())
	assert.Equal(t, WeekDivisional, p.Week)
	assert.Equal(t, 2025, p.Season)

	var zero Pick
	assert.True(t, zero.IsPending(), "an unset outcome is pending")
}

func TestRoundBreakdownAndSameTotals(t *testing.T) {
	var b RoundBreakdown
	for _, week := range []int{1, 1, 2, 4, 9} {
		b.Add(week)
	}
	assert.Equal(t, map[string]int{"Wild Card": 2, "Divisional": 1, "Conference": 0, "Super Bowl": 1}, b.ByName())

	a := &UserStat{UserID: 1, Season: 2025, TotalPoints: 9, CorrectByRound: b, TiebreakerDifference: score(4), UpdatedAt: time.Now()}
	c := *a
	c.UpdatedAt = a.UpdatedAt.Add(time.Hour)
	c.TiebreakerDifference = score(4)
	assert.True(t, a.SameTotals(&c))

	c.TiebreakerDifference = nil
	assert.False(t, a.SameTotals(&c))

	c.TiebreakerDifference = score(4)
	c.CorrectByRound.Conference++
	assert.False(t, a.SameTotals(&c))
}
