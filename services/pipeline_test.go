package services

import (
	"testing"
	"time"

	"nfl-playoff-pickem/models"

	crerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockCheckLocksAndBackfills(t *testing.T) {
	f := newFixture(t)
	f.addUsers("ANDREW", "BARDIA", "COOPER")
	f.addGame(401, models.WeekWildCard, teamKC, teamHOU, kickoff)
	f.addGame(402, models.WeekWildCard, teamBUF, teamBAL, kickoff.Add(4*time.Hour))
	_, err := f.submit(1, 401, teamHOU, nil)
	require.NoError(t, err)

	f.clock.Set(kickoff.Add(time.Minute))
	report, err := f.pipe.Run(f.ctx, JobLockCheck, testSeason)
	require.NoError(t, err)
	assert.Equal(t, JobLockCheck, report.Job)

	assert.True(t, f.game(401).IsLocked)
	assert.False(t, f.game(402).IsLocked)

	manual := f.pick(1, 401)
	assert.False(t, manual.IsAutoPick)
	assert.Equal(t, teamHOU, manual.SelectedTeamID)
	for _, userID := range []int{2, 3} {
		auto := f.pick(userID, 401)
		assert.True(t, auto.IsAutoPick)
		assert.True(t, auto.Locked)
		assert.Equal(t, teamKC, auto.SelectedTeamID, "test coin always picks home")
	}

	picks, err := f.repos.Picks.FindByGame(f.ctx, 402)
	require.NoError(t, err)
	assert.Empty(t, picks)
}

func TestScoreSyncScoresEvenWhenFeedIsDown(t *testing.T) {
	f := newFixture(t)
	f.addUsers("ANDREW")
	f.addGame(401, models.WeekWildCard, teamKC, teamHOU, kickoff)
	f.addGame(402, models.WeekWildCard, teamBUF, teamBAL, kickoff)
	_, err := f.submit(1, 401, teamKC, nil)
	require.NoError(t, err)
	f.finish(401, 24, 17)

	f.feed.err = crerr.Mark(crerr.New("timeout"), ErrFeedUnavailable)
	report, err := f.pipe.Run(f.ctx, JobScoreSync, testSeason)
	require.Error(t, err)
	assert.True(t, IsFeedUnavailable(err))
	assert.Equal(t, JobScoreSync, report.Job)

	scored := f.pick(1, 401)
	assert.Equal(t, models.PickOutcomeCorrect, scored.Outcome)
	assert.Equal(t, 2, scored.PointsEarned)
}

func TestScoreSyncAppliesFeedThenScores(t *testing.T) {
	f := newFixture(t)
	f.addUsers("ANDREW")
	f.addGame(401, models.WeekWildCard, teamKC, teamHOU, kickoff)
	_, err := f.submit(1, 401, teamHOU, nil)
	require.NoError(t, err)

	f.clock.Set(kickoff.Add(4 * time.Hour))
	f.feed.set(finalUpdate(401, 10, 13))
	_, err = f.pipe.ScoreSync(f.ctx, testSeason)
	require.NoError(t, err)

	p := f.pick(1, 401)
	assert.Equal(t, models.PickOutcomeCorrect, p.Outcome)
	assert.True(t, p.Locked)
}

func TestStatsRefreshJob(t *testing.T) {
	f := newFixture(t)
	f.addUsers("ANDREW", "BARDIA")

	report, err := f.pipe.Run(f.ctx, JobStatsRefresh, testSeason)
	require.NoError(t, err)
	assert.Equal(t, JobStatsRefresh, report.Job)
	assert.Equal(t, 2, report.Succeeded)

	stats, err := f.stats.GetSeasonStats(f.ctx, testSeason)
	require.NoError(t, err)
	assert.Len(t, stats, 2)
}

func TestRunUnknownJob(t *testing.T) {
	f := newFixture(t)
	_, err := f.pipe.Run(f.ctx, "reticulate-splines", testSeason)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestTasksBindSeason(t *testing.T) {
	f := newFixture(t)
	tasks := f.pipe.Tasks(testSeason, DefaultJobIntervals)
	require.Len(t, tasks, 3)

	names := make([]string, len(tasks))
	for i, task := range tasks {
		names[i] = task.Name
	}
	assert.Equal(t, []string{JobLockCheck, JobScoreSync, JobStatsRefresh}, names)
	assert.Equal(t, time.Minute, tasks[0].Interval)
}

func TestJobReportMergeCapsErrors(t *testing.T) {
	a := NewJobReport("a")
	b := NewJobReport("b")
	for i := 0; i < maxReportErrors; i++ {
		a.Fail(crerr.Newf("a%d", i))
		b.Fail(crerr.Newf("b%d", i))
	}
	b.Succeeded = 3

	a.Merge(b)
	assert.Equal(t, 2*maxReportErrors, a.Errored)
	assert.Len(t, a.Errors, maxReportErrors)
	assert.Equal(t, 3, a.Succeeded)
}
