package services

import (
	"context"
	"fmt"

	"nfl-playoff-pickem/database"
	"nfl-playoff-pickem/logging"
	"nfl-playoff-pickem/models"
)

// NFLTeams is the static team table keyed by the provider's team id
var NFLTeams = []models.Team{
	// AFC East
	{ID: 2, City: "Buffalo", Name: "Bills", Abbreviation: "BUF", Conference: models.ConferenceAFC},
	{ID: 15, City: "Miami", Name: "Dolphins", Abbreviation: "MIA", Conference: models.ConferenceAFC},
	{ID: 17, City: "New England", Name: "Patriots", Abbreviation: "NE", Conference: models.ConferenceAFC},
	{ID: 20, City: "New York", Name: "Jets", Abbreviation: "NYJ", Conference: models.ConferenceAFC},

	// AFC North
	{ID: 33, City: "Baltimore", Name: "Ravens", Abbreviation: "BAL", Conference: models.ConferenceAFC},
	{ID: 4, City: "Cincinnati", Name: "Bengals", Abbreviation: "CIN", Conference: models.ConferenceAFC},
	{ID: 5, City: "Cleveland", Name: "Browns", Abbreviation: "CLE", Conference: models.ConferenceAFC},
	{ID: 23, City: "Pittsburgh", Name: "Steelers", Abbreviation: "PIT", Conference: models.ConferenceAFC},

	// AFC South
	{ID: 34, City: "Houston", Name: "Texans", Abbreviation: "HOU", Conference: models.ConferenceAFC},
	{ID: 11, City: "Indianapolis", Name: "Colts", Abbreviation: "IND", Conference: models.ConferenceAFC},
	{ID: 30, City: "Jacksonville", Name: "Jaguars", Abbreviation: "JAX", Conference: models.ConferenceAFC},
	{ID: 10, City: "Tennessee", Name: "Titans", Abbreviation: "TEN", Conference: models.ConferenceAFC},

	// AFC West
	{ID: 7, City: "Denver", Name: "Broncos", Abbreviation: "DEN", Conference: models.ConferenceAFC},
	{ID: 12, City: "Kansas City", Name: "Chiefs", Abbreviation: "KC", Conference: models.ConferenceAFC},
	{ID: 13, City: "Las Vegas", Name: "Raiders", Abbreviation: "LV", Conference: models.ConferenceAFC},
	{ID: 24, City: "Los Angeles", Name: "Chargers", Abbreviation: "LAC", Conference: models.ConferenceAFC},

	// NFC East
	{ID: 6, City: "Dallas", Name: "Cowboys", Abbreviation: "DAL", Conference: models.ConferenceNFC},
	{ID: 19, City: "New York", Name: "Giants", Abbreviation: "NYG", Conference: models.ConferenceNFC},
	{ID: 21, City: "Philadelphia", Name: "Eagles", Abbreviation: "PHI", Conference: models.ConferenceNFC},
	{ID: 28, City: "Washington", Name: "Commanders", Abbreviation: "WSH", Conference: models.ConferenceNFC},

	// NFC North
	{ID: 3, City: "Chicago", Name: "Bears", Abbreviation: "CHI", Conference: models.ConferenceNFC},
	{ID: 8, City: "Detroit", Name: "Lions", Abbreviation: "DET", Conference: models.ConferenceNFC},
	{ID: 9, City: "Green Bay", Name: "Packers", Abbreviation: "GB", Conference: models.ConferenceNFC},
	{ID: 16, City: "Minnesota", Name: "Vikings", Abbreviation: "MIN", Conference: models.ConferenceNFC},

	// NFC South
	{ID: 1, City: "Atlanta", Name: "Falcons", Abbreviation: "ATL", Conference: models.ConferenceNFC},
	{ID: 29, City: "Carolina", Name: "Panthers", Abbreviation: "CAR", Conference: models.ConferenceNFC},
	{ID: 18, City: "New Orleans", Name: "Saints", Abbreviation: "NO", Conference: models.ConferenceNFC},
	{ID: 27, City: "Tampa Bay", Name: "Buccaneers", Abbreviation: "TB", Conference: models.ConferenceNFC},

	// NFC West
	{ID: 22, City: "Arizona", Name: "Cardinals", Abbreviation: "ARI", Conference: models.ConferenceNFC},
	{ID: 14, City: "Los Angeles", Name: "Rams", Abbreviation: "LAR", Conference: models.ConferenceNFC},
	{ID: 25, City: "San Francisco", Name: "49ers", Abbreviation: "SF", Conference: models.ConferenceNFC},
	{ID: 26, City: "Seattle", Name: "Seahawks", Abbreviation: "SEA", Conference: models.ConferenceNFC},
}

// TeamSeeder loads the static team table into storage
type TeamSeeder struct {
	teams  database.TeamRepository
	logger *logging.Logger
}

// NewTeamSeeder creates a new team seeder
func NewTeamSeeder(teams database.TeamRepository) *TeamSeeder {
	return &TeamSeeder{
		teams:  teams,
		logger: logging.WithPrefix("TeamSeeder"),
	}
}

// SeedTeams upserts every NFL team. Safe to run on every start.
func (s *TeamSeeder) SeedTeams(ctx context.Context) error {
	for i := range NFLTeams {
		team := NFLTeams[i]
		if err := s.teams.Upsert(ctx, &team); err != nil {
			return fmt.Errorf("seed team %s: %w", team.Abbreviation, err)
		}
	}
	s.logger.Infof("Seeded %d teams", len(NFLTeams))
	return nil
}

// TeamByAbbreviation looks up a team in the static table
func TeamByAbbreviation(abbr string) (models.Team, bool) {
	for _, t := range NFLTeams {
		if t.Abbreviation == abbr {
			return t, true
		}
	}
	return models.Team{}, false
}
