package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"pickem/engine/internal/models"
	"pickem/engine/internal/pickemerr"
)

// WeekRepository handles week database operations
type WeekRepository struct {
	db *Database
}

const weekColumns = `id, week_number, season_year, deadline, status, spreads_locked, created_at, updated_at`

func scanWeek(row pgx.Row) (*models.Week, error) {
	var w models.Week
	err := row.Scan(
		&w.ID, &w.WeekNumber, &w.SeasonYear, &w.Deadline,
		&w.Status, &w.SpreadsLocked, &w.CreatedAt, &w.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, pickemerr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan week: %w", err)
	}
	return &w, nil
}

// Create inserts a new week
func (r *WeekRepository) Create(ctx context.Context, week *models.Week) error {
	query := `
		INSERT INTO weeks (week_number, season_year, deadline, status, spreads_locked)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(
		ctx, query,
		week.WeekNumber, week.SeasonYear, week.Deadline, week.Status, week.SpreadsLocked,
	).Scan(&week.ID, &week.CreatedAt, &week.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create week: %w", err)
	}

	log.Debug().
		Int("id", week.ID).
		Int("week", week.WeekNumber).
		Int("season", week.SeasonYear).
		Msg("Week created")

	return nil
}

// GetByID retrieves a week by its database ID
func (r *WeekRepository) GetByID(ctx context.Context, id int) (*models.Week, error) {
	query := `SELECT ` + weekColumns + ` FROM weeks WHERE id = $1`
	return scanWeek(r.db.Pool.QueryRow(ctx, query, id))
}

// GetBySeasonWeek retrieves the week row for a season and week number
func (r *WeekRepository) GetBySeasonWeek(ctx context.Context, seasonYear, weekNumber int) (*models.Week, error) {
	query := `SELECT ` + weekColumns + ` FROM weeks WHERE season_year = $1 AND week_number = $2`
	return scanWeek(r.db.Pool.QueryRow(ctx, query, seasonYear, weekNumber))
}

// GetActive retrieves the season's active week
func (r *WeekRepository) GetActive(ctx context.Context, seasonYear int) (*models.Week, error) {
	query := `SELECT ` + weekColumns + ` FROM weeks WHERE season_year = $1 AND status = $2`
	return scanWeek(r.db.Pool.QueryRow(ctx, query, seasonYear, models.WeekActive))
}

// ListBySeason retrieves all weeks of a season in week order
func (r *WeekRepository) ListBySeason(ctx context.Context, seasonYear int) ([]*models.Week, error) {
	query := `SELECT ` + weekColumns + ` FROM weeks WHERE season_year = $1 ORDER BY week_number`

	rows, err := r.db.Pool.Query(ctx, query, seasonYear)
	if err != nil {
		return nil, fmt.Errorf("failed to list weeks: %w", err)
	}
	defer rows.Close()

	var weeks []*models.Week
	for rows.Next() {
		w, err := scanWeek(rows)
		if err != nil {
			return nil, err
		}
		weeks = append(weeks, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating weeks: %w", err)
	}

	return weeks, nil
}

// SetActiveExclusive marks one week active and demotes any other active
// week of the same season, in a single transaction. This is what keeps
// the one-active-week-per-season invariant.
func (r *WeekRepository) SetActiveExclusive(ctx context.Context, weekID int) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var seasonYear int
	err = tx.QueryRow(ctx, `SELECT season_year FROM weeks WHERE id = $1`, weekID).Scan(&seasonYear)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("week %d: %w", weekID, pickemerr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to load week: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE weeks SET status = $1, updated_at = NOW()
		WHERE season_year = $2 AND status = $3 AND id <> $4
	`, models.WeekUpcoming, seasonYear, models.WeekActive, weekID)
	if err != nil {
		return fmt.Errorf("failed to demote active weeks: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE weeks SET status = $1, updated_at = NOW() WHERE id = $2
	`, models.WeekActive, weekID)
	if err != nil {
		return fmt.Errorf("failed to activate week: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit week activation: %w", err)
	}

	log.Info().Int("week_id", weekID).Int("season", seasonYear).Msg("Week activated")
	return nil
}

// SetStatus updates a week's lifecycle status
func (r *WeekRepository) SetStatus(ctx context.Context, weekID int, status string) error {
	result, err := r.db.Pool.Exec(ctx, `
		UPDATE weeks SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, weekID)
	if err != nil {
		return fmt.Errorf("failed to update week status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("week %d: %w", weekID, pickemerr.ErrNotFound)
	}
	return nil
}

// SetSpreadsLocked sets the spread-lock flag. Locking happens both
// automatically (first kickoff) and by admin action; unlocking only ever
// by admin action, which is why this is a plain explicit setter.
func (r *WeekRepository) SetSpreadsLocked(ctx context.Context, weekID int, locked bool) error {
	result, err := r.db.Pool.Exec(ctx, `
		UPDATE weeks SET spreads_locked = $1, updated_at = NOW() WHERE id = $2
	`, locked, weekID)
	if err != nil {
		return fmt.Errorf("failed to update spread lock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("week %d: %w", weekID, pickemerr.ErrNotFound)
	}
	return nil
}

// LockStartedWeeks locks every unlocked week that has at least one game
// with a kickoff at or before now. Returns the IDs of weeks locked.
func (r *WeekRepository) LockStartedWeeks(ctx context.Context, now time.Time) ([]int, error) {
	rows, err := r.db.Pool.Query(ctx, `
		UPDATE weeks SET spreads_locked = TRUE, updated_at = NOW()
		WHERE spreads_locked = FALSE
		  AND id IN (SELECT DISTINCT week_id FROM games WHERE start_time <= $1)
		RETURNING id
	`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to lock started weeks: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan locked week id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locked weeks: %w", err)
	}

	return ids, nil
}

// CompleteFinishedWeeks marks active weeks completed once every one of
// their games has finished. Returns the IDs of weeks completed.
func (r *WeekRepository) CompleteFinishedWeeks(ctx context.Context) ([]int, error) {
	rows, err := r.db.Pool.Query(ctx, `
		UPDATE weeks SET status = $1, updated_at = NOW()
		WHERE status = $2
		  AND EXISTS (SELECT 1 FROM games WHERE games.week_id = weeks.id)
		  AND NOT EXISTS (
			SELECT 1 FROM games
			WHERE games.week_id = weeks.id AND games.status <> $3
		  )
		RETURNING id
	`, models.WeekCompleted, models.WeekActive, models.GameCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to complete finished weeks: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan completed week id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completed weeks: %w", err)
	}

	return ids, nil
}
