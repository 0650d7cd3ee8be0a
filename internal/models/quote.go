package models

// SpreadQuote is a single bookmaker line for one matchup, produced per
// acquisition cycle. One winning quote gets attached to a selected game.
type SpreadQuote struct {
	HomeTeam     string
	AwayTeam     string
	FavoriteTeam string
	Line         float64
	Source       string
}
