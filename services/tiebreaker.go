package services

import "nfl-playoff-pickem/models"

// TiebreakerDifference returns |guess - combined final score| for the final
// round game. It is nil when there is no guess or the game has not finished;
// a placeholder value here would silently reorder the standings.
func TiebreakerDifference(guess *int, finalGame *models.Game) *int {
	if guess == nil || finalGame == nil || !models.IsFinalRound(finalGame.Week) {
		return nil
	}
	total, ok := finalGame.CombinedScore()
	if !ok {
		return nil
	}
	diff := *guess - total
	if diff < 0 {
		diff = -diff
	}
	return &diff
}

// finalRoundGame picks the Super Bowl out of a season's games
func finalRoundGame(games []*models.Game) *models.Game {
	for _, g := range games {
		if models.IsFinalRound(g.Week) {
			return g
		}
	}
	return nil
}
