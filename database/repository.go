package database

import (
	"context"
	"errors"
	"time"

	"nfl-playoff-pickem/models"
)

var (
	// ErrDuplicatePick is returned when an insert hits the (user_id, game_id) unique index
	ErrDuplicatePick = errors.New("pick already exists for user and game")

	// ErrGameNotFound is returned by writes that target a missing game
	ErrGameNotFound = errors.New("game not found")
)

// GameState is the feed-driven portion of a game
type GameState struct {
	Status        models.GameStatus
	HomeScore     *int
	AwayScore     *int
	WinningTeamID *int
	Quarter       int
	Clock         string
}

// GameRepository stores playoff games. No method except SetLock ever sets is_locked false.
type GameRepository interface {
	// UpsertSchedule writes schedule fields only; lock and score state of existing games is kept
	UpsertSchedule(ctx context.Context, games []*models.Game, now time.Time) (int, error)
	// FindByID returns nil, nil when the game does not exist
	FindByID(ctx context.Context, gameID int) (*models.Game, error)
	FindBySeason(ctx context.Context, season int) ([]*models.Game, error)
	FindByWeek(ctx context.Context, season, week int) ([]*models.Game, error)
	FindLocked(ctx context.Context, season int) ([]*models.Game, error)
	FindFinal(ctx context.Context, season int) ([]*models.Game, error)
	// FindSyncable returns games the feed may still change: not final, not cancelled
	FindSyncable(ctx context.Context, season int) ([]*models.Game, error)
	// LockDueGames locks every unlocked game whose kickoff is at or before now
	// and returns the ids it found unlocked
	LockDueGames(ctx context.Context, season int, now time.Time) ([]int, error)
	// LockGames locks the given games if unlocked and returns the ids it found unlocked
	LockGames(ctx context.Context, gameIDs []int, now time.Time) ([]int, error)
	// ApplyState writes feed state unless the game is already final
	ApplyState(ctx context.Context, gameID int, state GameState, now time.Time) (bool, error)
	// SetResult overwrites the final result. Administrative correction only.
	SetResult(ctx context.Context, gameID int, state GameState, now time.Time) error
	// SetLock sets the lock flag either way. Administrative override only.
	SetLock(ctx context.Context, gameID int, locked bool, now time.Time) error
}

// PickRepository stores picks, unique per (user_id, game_id)
type PickRepository interface {
	// Upsert creates or updates the selection for (UserID, GameID) and returns the stored pick
	Upsert(ctx context.Context, pick *models.Pick) (*models.Pick, error)
	// InsertAutoPick inserts a new pick and returns ErrDuplicatePick if one already exists
	InsertAutoPick(ctx context.Context, pick *models.Pick) error
	FindOne(ctx context.Context, userID, gameID int) (*models.Pick, error)
	FindByUser(ctx context.Context, userID, season int) ([]*models.Pick, error)
	FindByUserWeek(ctx context.Context, userID, season, week int) ([]*models.Pick, error)
	FindByGame(ctx context.Context, gameID int) ([]*models.Pick, error)
	FindBySeason(ctx context.Context, season int) ([]*models.Pick, error)
	// ResolveGame scores pending picks of a game only; resolved picks are never touched
	ResolveGame(ctx context.Context, gameID, winningTeamID, points int, now time.Time) (int64, error)
	// ResetGame returns every pick of a game to pending with zero points
	ResetGame(ctx context.Context, gameID int, now time.Time) (int64, error)
	// LockForGames marks the picks of the given games as locked
	LockForGames(ctx context.Context, gameIDs []int, locked bool) error
	DeleteSeason(ctx context.Context, season int) (int64, error)
}

// UserRepository stores the pool roster
type UserRepository interface {
	FindAll(ctx context.Context) ([]*models.User, error)
	FindByID(ctx context.Context, userID int) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
}

// TeamRepository stores static team reference data
type TeamRepository interface {
	FindAll(ctx context.Context) ([]*models.Team, error)
	FindByID(ctx context.Context, teamID int) (*models.Team, error)
	Upsert(ctx context.Context, team *models.Team) error
}

// UserStatRepository stores the materialized per-season user aggregates
type UserStatRepository interface {
	Replace(ctx context.Context, stat *models.UserStat) error
	FindBySeason(ctx context.Context, season int) ([]*models.UserStat, error)
	DeleteSeason(ctx context.Context, season int) (int64, error)
}

// AuditRepository stores administrative audit entries
type AuditRepository interface {
	Insert(ctx context.Context, entry *models.AuditEntry) error
	FindBySeason(ctx context.Context, season int) ([]*models.AuditEntry, error)
}

// Repositories bundles every store the services need
type Repositories struct {
	Games GameRepository
	Picks PickRepository
	Users UserRepository
	Teams TeamRepository
	Stats UserStatRepository
	Audit AuditRepository
}
