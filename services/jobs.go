package services

import (
	"time"

	"nfl-playoff-pickem/logging"

	"github.com/google/uuid"
)

// Job names shared by the scheduler, the admin API and the CLI
const (
	JobLockCheck    = "lock-check"
	JobScoreSync    = "score-sync"
	JobStatsRefresh = "stats-refresh"
)

const maxReportErrors = 10

// JobReport summarizes one batch run. A batch never aborts on a single
// item failure; it counts it and moves on.
type JobReport struct {
	Job       string        `json:"job"`
	RunID     string        `json:"run_id"`
	Succeeded int           `json:"succeeded"`
	Skipped   int           `json:"skipped"`
	Errored   int           `json:"errored"`
	Errors    []string      `json:"errors,omitempty"`
	Duration  time.Duration `json:"duration"`
	started   time.Time
}

// NewJobReport starts a report for a job run
func NewJobReport(job string) JobReport {
	return JobReport{
		Job:     job,
		RunID:   uuid.NewString(),
		started: time.Now(),
	}
}

// Fail records one errored item
func (r *JobReport) Fail(err error) {
	r.Errored++
	if len(r.Errors) < maxReportErrors {
		r.Errors = append(r.Errors, err.Error())
	}
}

// Merge folds the counts of another report into r
func (r *JobReport) Merge(other JobReport) {
	r.Succeeded += other.Succeeded
	r.Skipped += other.Skipped
	r.Errored += other.Errored
	for _, e := range other.Errors {
		if len(r.Errors) >= maxReportErrors {
			break
		}
		r.Errors = append(r.Errors, e)
	}
}

// Finish stamps the duration and returns the report
func (r *JobReport) Finish() JobReport {
	if !r.started.IsZero() {
		r.Duration = time.Since(r.started)
	}
	return *r
}

// Log writes the counts on one line
func (r JobReport) Log(logger *logging.Logger) {
	kv := []interface{}{
		"job", r.Job,
		"run", r.RunID,
		"succeeded", r.Succeeded,
		"skipped", r.Skipped,
		"errored", r.Errored,
		"duration", r.Duration.Round(time.Millisecond),
	}
	if r.Errored > 0 {
		logger.Warnw("job finished with errors", kv...)
		return
	}
	logger.Infow("job finished", kv...)
}
