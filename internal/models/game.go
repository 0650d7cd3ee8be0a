package models

import (
	"database/sql"
	"time"
)

// Game status values
const (
	GameScheduled = "scheduled"
	GameLive      = "live"
	GameCompleted = "completed"
)

// SpreadWinnerPush marks a game where the favorite won by exactly the
// spread. Neither side covers; picks on the game grade as pushes.
const SpreadWinnerPush = "PUSH"

// Game is a persisted matchup selected for a week. Spread and favorite
// are immutable once set by an upstream odds source, or once the owning
// week's spreads are locked.
type Game struct {
	ID         int            `db:"id"`
	WeekID     int            `db:"week_id"`
	ExternalID sql.NullString `db:"external_id"`
	HomeTeam   string         `db:"home_team"`
	AwayTeam   string         `db:"away_team"`
	StartTime  time.Time      `db:"start_time"`
	Status     string         `db:"status"`

	// Betting line. Spread is null when no online line exists yet.
	Spread       sql.NullFloat64 `db:"spread"`
	FavoriteTeam sql.NullString  `db:"favorite_team"`
	SpreadSource sql.NullString  `db:"spread_source"`

	// Final result. SpreadWinner is the covering team, or SpreadWinnerPush.
	HomeScore    sql.NullInt32  `db:"home_score"`
	AwayScore    sql.NullInt32  `db:"away_score"`
	SpreadWinner sql.NullString `db:"spread_winner"`

	IsFavoriteTeamGame bool `db:"is_favorite_team_game"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsFinal returns true if the game is completed.
func (g *Game) IsFinal() bool {
	return g.Status == GameCompleted
}

// HasStarted returns true if the kickoff time has passed.
func (g *Game) HasStarted(now time.Time) bool {
	return !g.StartTime.After(now)
}

// HasOnlineSpread returns true if an upstream odds source set the line.
func (g *Game) HasOnlineSpread() bool {
	return g.Spread.Valid && g.SpreadSource.Valid
}

// Gradeable returns true if the game can be ATS-graded: final, both
// scores known, and a spread with a favorite attached.
func (g *Game) Gradeable() bool {
	return g.IsFinal() &&
		g.HomeScore.Valid && g.AwayScore.Valid &&
		g.Spread.Valid && g.FavoriteTeam.Valid
}
