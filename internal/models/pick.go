package models

import (
	"database/sql"
	"time"
)

// Pick result values. A pick is ungraded until its game completes; the
// grading engine then writes the result exactly once.
const (
	PickWin  = "win"
	PickLoss = "loss"
	PickPush = "push"
)

// Pick is one player's selection for one game. Unique per (user, game).
type Pick struct {
	ID           int            `db:"id"`
	UserID       int            `db:"user_id"`
	GameID       int            `db:"game_id"`
	SelectedTeam string         `db:"selected_team"`
	Result       sql.NullString `db:"result"`
	IsCorrect    sql.NullBool   `db:"is_correct"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// Graded returns true once the grading engine has written a result.
func (p *Pick) Graded() bool {
	return p.Result.Valid
}
