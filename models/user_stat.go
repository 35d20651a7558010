package models

import (
	"time"
)

// RoundBreakdown counts correct picks per playoff round
type RoundBreakdown struct {
	WildCard   int `json:"wild_card" bson:"wild_card"`
	Divisional int `json:"divisional" bson:"divisional"`
	Conference int `json:"conference" bson:"conference"`
	SuperBowl  int `json:"super_bowl" bson:"super_bowl"`
}

// Add increments the counter for the round of a week
func (b *RoundBreakdown) Add(week int) {
	switch week {
	case WeekWildCard:
		b.WildCard++
	case WeekDivisional:
		b.Divisional++
	case WeekConference:
		b.Conference++
	case WeekSuperBowl:
		b.SuperBowl++
	}
}

// ByName returns the breakdown keyed by round display name
func (b RoundBreakdown) ByName() map[string]int {
	return map[string]int{
		PlayoffRounds[0].Name: b.WildCard,
		PlayoffRounds[1].Name: b.Divisional,
		PlayoffRounds[2].Name: b.Conference,
		PlayoffRounds[3].Name: b.SuperBowl,
	}
}

// UserStat is the materialized season aggregate for one user.
// It is fully derivable from picks and games.
type UserStat struct {
	UserID               int            `json:"user_id" bson:"user_id"`
	Season               int            `json:"season" bson:"season"`
	TotalPoints          int            `json:"total_points" bson:"total_points"`
	TotalCorrectPicks    int            `json:"total_correct_picks" bson:"total_correct_picks"`
	TotalIncorrectPicks  int            `json:"total_incorrect_picks" bson:"total_incorrect_picks"`
	TotalPendingPicks    int            `json:"total_pending_picks" bson:"total_pending_picks"`
	CorrectByRound       RoundBreakdown `json:"correct_by_round" bson:"correct_by_round"`
	TiebreakerDifference *int           `json:"tiebreaker_difference" bson:"tiebreaker_difference"`
	UpdatedAt            time.Time      `json:"updated_at" bson:"updated_at"`
}

// SameTotals compares every derived value, ignoring UpdatedAt
func (s *UserStat) SameTotals(other *UserStat) bool {
	if s.UserID != other.UserID || s.Season != other.Season ||
		s.TotalPoints != other.TotalPoints ||
		s.TotalCorrectPicks != other.TotalCorrectPicks ||
		s.TotalIncorrectPicks != other.TotalIncorrectPicks ||
		s.TotalPendingPicks != other.TotalPendingPicks ||
		s.CorrectByRound != other.CorrectByRound {
		return false
	}
	if (s.TiebreakerDifference == nil) != (other.TiebreakerDifference == nil) {
		return false
	}
	return s.TiebreakerDifference == nil || *s.TiebreakerDifference == *other.TiebreakerDifference
}

// RankedStanding is one row of the leaderboard
type RankedStanding struct {
	Rank     int      `json:"rank"`
	UserName string   `json:"user_name"`
	Stat     UserStat `json:"stat"`
}
