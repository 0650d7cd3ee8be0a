package grading

import "pickem/engine/internal/models"

// CoveringTeam decides a game against the spread. The favorite covers
// only by winning by strictly more than the line; winning by exactly
// the line is a push, and anything less hands the cover to the
// underdog. The spread is the favorite's give, always positive.
func CoveringTeam(favorite, underdog string, spread float64, favoriteScore, underdogScore int) string {
	margin := float64(favoriteScore - underdogScore)
	switch {
	case margin > spread:
		return favorite
	case margin == spread:
		return models.SpreadWinnerPush
	default:
		return underdog
	}
}
