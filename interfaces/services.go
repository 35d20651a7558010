package interfaces

import (
	"context"

	"nfl-playoff-pickem/models"
	"nfl-playoff-pickem/services"
)

// GameService defines the read operations over the playoff schedule
type GameService interface {
	GetGames(ctx context.Context, season int, week *int) ([]*models.Game, error)
	GetGame(ctx context.Context, gameID int) (*models.Game, error)
	GetTeams(ctx context.Context) ([]*models.Team, error)
}

// PickService defines pick submission and lookup
type PickService interface {
	SubmitPick(ctx context.Context, season int, req services.SubmitPickRequest) (*models.Pick, error)
	GetPicksFor(ctx context.Context, userID, season int, week *int) ([]*models.Pick, error)
}

// StandingsService defines the leaderboard read
type StandingsService interface {
	GetStandings(ctx context.Context, season int) ([]models.RankedStanding, error)
}

// StatsService defines the materialized stats operations
type StatsService interface {
	RecomputeSeason(ctx context.Context, season int) (services.JobReport, error)
	GetSeasonStats(ctx context.Context, season int) ([]*models.UserStat, error)
}

// AdminService defines the audited out-of-band operations
type AdminService interface {
	ForceLock(ctx context.Context, actor string, gameID int) error
	UnlockGame(ctx context.Context, actor string, gameID int, reason string) error
	OverridePick(ctx context.Context, actor string, req services.SubmitPickRequest) (*models.Pick, error)
	CorrectGameResult(ctx context.Context, actor string, gameID, homeScore, awayScore int) (*models.Game, error)
	RecomputeStats(ctx context.Context, actor string, season int) (services.JobReport, error)
	RunJob(ctx context.Context, actor string, season int, name string) (services.JobReport, error)
	ResetSeason(ctx context.Context, actor string, season int) error
	ListAudit(ctx context.Context, season int) ([]*models.AuditEntry, error)
}

// TokenValidator validates admin bearer tokens
type TokenValidator interface {
	ValidateToken(tokenString string) (*services.AdminClaims, error)
}

// ScoreFeed is the provider adapter used by the feed sync job
type ScoreFeed interface {
	services.ScoreFeed
	services.ScheduleSource
}
