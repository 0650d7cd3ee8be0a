package models

import "time"

// WeeklyScore is a per-user aggregate for one week. It is a cache fully
// recomputable from picks and games; pushes count toward neither correct
// nor total.
type WeeklyScore struct {
	ID           int       `db:"id"`
	UserID       int       `db:"user_id"`
	WeekID       int       `db:"week_id"`
	CorrectPicks int       `db:"correct_picks"`
	TotalPicks   int       `db:"total_picks"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// SeasonStanding is a per-user aggregate for a season, recomputed from
// scratch on every grading pass.
type SeasonStanding struct {
	ID           int       `db:"id"`
	UserID       int       `db:"user_id"`
	SeasonYear   int       `db:"season_year"`
	CorrectPicks int       `db:"correct_picks"`
	TotalPicks   int       `db:"total_picks"`
	Percentage   float64   `db:"percentage"`
	UpdatedAt    time.Time `db:"updated_at"`
}
