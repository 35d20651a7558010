package models

import (
	"time"
)

// GameStatus represents the current state of a game
type GameStatus string

const (
	GameStatusScheduled  GameStatus = "scheduled"
	GameStatusInProgress GameStatus = "in_progress"
	GameStatusFinal      GameStatus = "final"
	GameStatusPostponed  GameStatus = "postponed"
	GameStatusCancelled  GameStatus = "cancelled"
)

// Game represents one playoff matchup.
// IsLocked only moves false -> true outside of an audited admin override.
type Game struct {
	ID                 int        `json:"id" bson:"_id"` // provider event id
	Season             int        `json:"season" bson:"season"`
	Week               int        `json:"week" bson:"week"`
	HomeTeamID         int        `json:"home_team_id" bson:"home_team_id"`
	AwayTeamID         int        `json:"away_team_id" bson:"away_team_id"`
	ScheduledStartTime time.Time  `json:"scheduled_start_time" bson:"scheduled_start_time"`
	Status             GameStatus `json:"status" bson:"status"`
	IsLocked           bool       `json:"is_locked" bson:"is_locked"`
	LockedAt           *time.Time `json:"locked_at,omitempty" bson:"locked_at,omitempty"`
	HomeScore          *int       `json:"home_score" bson:"home_score"`
	AwayScore          *int       `json:"away_score" bson:"away_score"`
	WinningTeamID      *int       `json:"winning_team_id" bson:"winning_team_id"`

	// Live-play metadata, display only
	Quarter int    `json:"quarter" bson:"quarter"`
	Clock   string `json:"clock" bson:"clock"`

	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// IsFinal returns true if the game is finished
func (g *Game) IsFinal() bool {
	return g.Status == GameStatusFinal
}

// IsInProgress returns true if the game is currently being played
func (g *Game) IsInProgress() bool {
	return g.Status == GameStatusInProgress
}

// HasStarted reports whether kickoff has passed according to the schedule
func (g *Game) HasStarted(now time.Time) bool {
	return !now.Before(g.ScheduledStartTime)
}

// ShouldBeLocked reports whether the game must be locked at now
func (g *Game) ShouldBeLocked(now time.Time) bool {
	return g.HasStarted(now) || g.Status == GameStatusInProgress || g.Status == GameStatusFinal
}

// AcceptsPicks reports whether a pick for this game may still be written at now
func (g *Game) AcceptsPicks(now time.Time) bool {
	return !g.IsLocked && now.Before(g.ScheduledStartTime)
}

// HasTeam reports whether teamID plays in this game
func (g *Game) HasTeam(teamID int) bool {
	return teamID == g.HomeTeamID || teamID == g.AwayTeamID
}

// DetermineWinner returns the winning team id, or nil unless the game is
// final with both scores present and different
func (g *Game) DetermineWinner() *int {
	if !g.IsFinal() || g.HomeScore == nil || g.AwayScore == nil {
		return nil
	}
	switch {
	case *g.HomeScore > *g.AwayScore:
		id := g.HomeTeamID
		return &id
	case *g.AwayScore > *g.HomeScore:
		id := g.AwayTeamID
		return &id
	}
	return nil
}

// CombinedScore returns home+away once the game is final
func (g *Game) CombinedScore() (int, bool) {
	if !g.IsFinal() || g.HomeScore == nil || g.AwayScore == nil {
		return 0, false
	}
	return *g.HomeScore + *g.AwayScore, true
}

// Ref returns the feed lookup reference for this game
func (g *Game) Ref() GameRef {
	return GameRef{GameID: g.ID, ExternalID: g.ID, Season: g.Season, Week: g.Week}
}
