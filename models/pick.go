package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PickOutcome is the resolution state of a pick. Pending is a distinct
// value, never a zero-valued "false".
type PickOutcome string

const (
	PickOutcomePending   PickOutcome = "pending"
	PickOutcomeCorrect   PickOutcome = "correct"
	PickOutcomeIncorrect PickOutcome = "incorrect"
)

// Pick represents one user's prediction for one game.
// Exactly one Pick exists per (UserID, GameID).
type Pick struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         int                `bson:"user_id" json:"user_id"`
	GameID         int                `bson:"game_id" json:"game_id"`
	Season         int                `bson:"season" json:"season"`
	Week           int                `bson:"week" json:"week"` // denormalized from the game
	SelectedTeamID int                `bson:"selected_team_id" json:"selected_team_id"`
	IsAutoPick     bool               `bson:"is_auto_pick" json:"is_auto_pick"`
	Outcome        PickOutcome        `bson:"outcome" json:"outcome"`
	PointsEarned   int                `bson:"points_earned" json:"points_earned"`

	// Only meaningful in the Super Bowl round
	SuperBowlTotalPointsGuess *int `bson:"superbowl_total_points_guess,omitempty" json:"superbowl_total_points_guess,omitempty"`

	Locked    bool      `bson:"locked" json:"locked"` // mirrors the game lock
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsPending returns true until the scoring engine resolves the pick
func (p *Pick) IsPending() bool {
	return p.Outcome == "" || p.Outcome == PickOutcomePending
}

// IsCorrect returns true only for a resolved, correct pick
func (p *Pick) IsCorrect() bool {
	return p.Outcome == PickOutcomeCorrect
}

// IsIncorrect returns true only for a resolved, incorrect pick
func (p *Pick) IsIncorrect() bool {
	return p.Outcome == PickOutcomeIncorrect
}

// NewPick builds a pending pick for a game
func NewPick(userID int, game *Game, teamID int, now time.Time) *Pick {
	return &Pick{
		UserID:         userID,
		GameID:         game.ID,
		Season:         game.Season,
		Week:           game.Week,
		SelectedTeamID: teamID,
		Outcome:        PickOutcomePending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
