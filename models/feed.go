package models

import "time"

// GameRef identifies a game to the score feed
type GameRef struct {
	GameID     int
	ExternalID int
	Season     int
	Week       int
}

// GameUpdate is a provider-neutral snapshot of a game's state
type GameUpdate struct {
	ExternalID int
	Status     GameStatus
	HomeScore  *int
	AwayScore  *int
	Period     int
	Clock      string
}

// ScheduledGame is a provider schedule row used to seed Game records
type ScheduledGame struct {
	ExternalID         int
	Season             int
	Week               int
	HomeTeamID         int
	AwayTeamID         int
	ScheduledStartTime time.Time
}
