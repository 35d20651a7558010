package services

import (
	"context"

	"nfl-playoff-pickem/database"
	"nfl-playoff-pickem/models"
)

// GameService serves read-only game queries
type GameService struct {
	games database.GameRepository
	teams database.TeamRepository
}

// NewGameService creates a new game service
func NewGameService(games database.GameRepository, teams database.TeamRepository) *GameService {
	return &GameService{games: games, teams: teams}
}

// GetGames returns a season's games ordered by kickoff, optionally one week only
func (s *GameService) GetGames(ctx context.Context, season int, week *int) ([]*models.Game, error) {
	if week == nil {
		return s.games.FindBySeason(ctx, season)
	}
	if _, err := models.RoundForWeek(*week); err != nil {
		return nil, validationErrorf("%v", err)
	}
	return s.games.FindByWeek(ctx, season, *week)
}

// GetGame returns one game or ErrNotFound
func (s *GameService) GetGame(ctx context.Context, gameID int) (*models.Game, error) {
	game, err := s.games.FindByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, notFoundErrorf("game %d", gameID)
	}
	return game, nil
}

// GetTeams returns the team reference table
func (s *GameService) GetTeams(ctx context.Context) ([]*models.Team, error) {
	return s.teams.FindAll(ctx)
}
