package models

import "fmt"

// PlayoffRound is one elimination stage of the postseason
type PlayoffRound struct {
	Week                 int    `json:"week" bson:"week"`
	Name                 string `json:"name" bson:"name"`
	Order                int    `json:"order" bson:"order"`
	PointsPerCorrectPick int    `json:"points_per_correct_pick" bson:"points_per_correct_pick"`
}

// Round week numbers. The week number of a game mirrors its round.
const (
	WeekWildCard   = 1
	WeekDivisional = 2
	WeekConference = 3
	WeekSuperBowl  = 4
)

// PlayoffRounds is the immutable round table, ordered by week
var PlayoffRounds = []PlayoffRound{
	{Week: WeekWildCard, Name: "Wild Card", Order: 1, PointsPerCorrectPick: 2},
	{Week: WeekDivisional, Name: "Divisional", Order: 2, PointsPerCorrectPick: 3},
	{Week: WeekConference, Name: "Conference", Order: 3, PointsPerCorrectPick: 4},
	{Week: WeekSuperBowl, Name: "Super Bowl", Order: 4, PointsPerCorrectPick: 5},
}

// RoundForWeek returns the playoff round for a week number (1-4)
func RoundForWeek(week int) (PlayoffRound, error) {
	if week < WeekWildCard || week > WeekSuperBowl {
		return PlayoffRound{}, fmt.Errorf("week %d is not a playoff round", week)
	}
	return PlayoffRounds[week-1], nil
}

// IsFinalRound reports whether the week is the Super Bowl round
func IsFinalRound(week int) bool {
	return week == WeekSuperBowl
}
