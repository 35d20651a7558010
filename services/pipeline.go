package services

import (
	"context"
	"time"
)

// JobIntervals holds the cadence of each periodic job
type JobIntervals struct {
	LockCheck    time.Duration
	ScoreSync    time.Duration
	StatsRefresh time.Duration
}

// DefaultJobIntervals are the production cadences
var DefaultJobIntervals = JobIntervals{
	LockCheck:    time.Minute,
	ScoreSync:    2 * time.Minute,
	StatsRefresh: 5 * time.Minute,
}

// Pipeline groups the periodic jobs. Each job reads and writes shared
// storage only; no job calls another, so any of them can fail or be run
// by hand without the others.
type Pipeline struct {
	Locks    *LockEngine
	Backfill *AutoPickService
	Feed     *FeedSyncService
	Scoring  *ScoringService
	Stats    *StatsService
}

// LockCheck locks games past kickoff, then backfills missing picks for every
// locked game. It has no feed dependency.
func (p *Pipeline) LockCheck(ctx context.Context, season int) (JobReport, error) {
	_, report, err := p.Locks.LockDueGames(ctx, season)
	if err != nil {
		return report, err
	}

	// All locked games, not just the ones locked now, so a missed run is repaired
	backfill, err := p.Backfill.BackfillLockedGames(ctx, season)
	report.Merge(backfill)
	report.Job = JobLockCheck
	return report, err
}

// ScoreSync pulls feed state and scores final games. Scoring runs even when
// the feed is down, since it works from stored state.
func (p *Pipeline) ScoreSync(ctx context.Context, season int) (JobReport, error) {
	report, feedErr := p.Feed.Sync(ctx, season)

	scoring, err := p.Scoring.ScoreFinalGames(ctx, season)
	report.Merge(scoring)
	report.Job = JobScoreSync
	if feedErr != nil {
		return report, feedErr
	}
	return report, err
}

// StatsRefresh rebuilds the materialized UserStat rows
func (p *Pipeline) StatsRefresh(ctx context.Context, season int) (JobReport, error) {
	report, err := p.Stats.RecomputeSeason(ctx, season)
	report.Job = JobStatsRefresh
	return report, err
}

// Run executes a job by name
func (p *Pipeline) Run(ctx context.Context, name string, season int) (JobReport, error) {
	switch name {
	case JobLockCheck:
		return p.LockCheck(ctx, season)
	case JobScoreSync:
		return p.ScoreSync(ctx, season)
	case JobStatsRefresh:
		return p.StatsRefresh(ctx, season)
	}
	return JobReport{}, validationErrorf("unknown job %q", name)
}

// Tasks binds the jobs to a season for the scheduler
func (p *Pipeline) Tasks(season int, intervals JobIntervals) []Task {
	bind := func(job func(context.Context, int) (JobReport, error)) func(context.Context) (JobReport, error) {
		return func(ctx context.Context) (JobReport, error) { return job(ctx, season) }
	}
	return []Task{
		{Name: JobLockCheck, Interval: intervals.LockCheck, Run: bind(p.LockCheck)},
		{Name: JobScoreSync, Interval: intervals.ScoreSync, Run: bind(p.ScoreSync)},
		{Name: JobStatsRefresh, Interval: intervals.StatsRefresh, Run: bind(p.StatsRefresh)},
	}
}
