package models

import "time"

// Week status values
const (
	WeekUpcoming  = "upcoming"
	WeekActive    = "active"
	WeekCompleted = "completed"
)

// Week represents one week of the pick'em season. Exactly one week per
// season may be active at a time; the lifecycle manager enforces that,
// not the database.
type Week struct {
	ID            int       `db:"id"`
	WeekNumber    int       `db:"week_number"`
	SeasonYear    int       `db:"season_year"`
	Deadline      time.Time `db:"deadline"`
	Status        string    `db:"status"`
	SpreadsLocked bool      `db:"spreads_locked"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// IsActive returns true if this is the season's current week.
func (w *Week) IsActive() bool {
	return w.Status == WeekActive
}

// IsCompleted returns true if every game of the week has been graded.
func (w *Week) IsCompleted() bool {
	return w.Status == WeekCompleted
}
