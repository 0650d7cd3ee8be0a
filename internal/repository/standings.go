package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"pickem/engine/internal/metrics"
	"pickem/engine/internal/models"
)

// StandingsRepository handles the weekly/season aggregate tables. Both
// are caches: every recompute rebuilds them from the picks table from
// scratch, so the aggregates are always consistent with the underlying
// picks no matter how many times or in what order grading has run.
type StandingsRepository struct {
	db *Database
}

// RecomputeAll rebuilds weekly scores and season standings in one
// transaction. Pushes count toward neither correct nor total.
func (r *StandingsRepository) RecomputeAll(ctx context.Context) error {
	start := time.Now()

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM weekly_scores`); err != nil {
		return fmt.Errorf("failed to clear weekly scores: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO weekly_scores (user_id, week_id, correct_picks, total_picks)
		SELECT p.user_id,
		       g.week_id,
		       COUNT(*) FILTER (WHERE p.result = 'win'),
		       COUNT(*) FILTER (WHERE p.result IN ('win', 'loss'))
		FROM picks p
		JOIN games g ON g.id = p.game_id
		WHERE p.result IS NOT NULL
		GROUP BY p.user_id, g.week_id
	`)
	if err != nil {
		return fmt.Errorf("failed to rebuild weekly scores: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM season_standings`); err != nil {
		return fmt.Errorf("failed to clear season standings: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO season_standings (user_id, season_year, correct_picks, total_picks, percentage)
		SELECT p.user_id,
		       w.season_year,
		       COUNT(*) FILTER (WHERE p.result = 'win'),
		       COUNT(*) FILTER (WHERE p.result IN ('win', 'loss')),
		       COALESCE(
		           COUNT(*) FILTER (WHERE p.result = 'win')::float
		               / NULLIF(COUNT(*) FILTER (WHERE p.result IN ('win', 'loss')), 0),
		           0
		       )
		FROM picks p
		JOIN games g ON g.id = p.game_id
		JOIN weeks w ON w.id = g.week_id
		WHERE p.result IS NOT NULL
		GROUP BY p.user_id, w.season_year
	`)
	if err != nil {
		return fmt.Errorf("failed to rebuild season standings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit standings recompute: %w", err)
	}

	metrics.StandingsRecomputeDuration.Observe(time.Since(start).Seconds())
	log.Info().Dur("duration", time.Since(start)).Msg("Standings recomputed")
	return nil
}

// GetWeeklyScores retrieves a week's scores ordered by rank
func (r *StandingsRepository) GetWeeklyScores(ctx context.Context, weekID int) ([]*models.WeeklyScore, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, user_id, week_id, correct_picks, total_picks, updated_at
		FROM weekly_scores
		WHERE week_id = $1
		ORDER BY correct_picks DESC, user_id
	`, weekID)
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly scores: %w", err)
	}
	defer rows.Close()

	var scores []*models.WeeklyScore
	for rows.Next() {
		var s models.WeeklyScore
		err := rows.Scan(&s.ID, &s.UserID, &s.WeekID, &s.CorrectPicks, &s.TotalPicks, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan weekly score: %w", err)
		}
		scores = append(scores, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating weekly scores: %w", err)
	}

	return scores, nil
}

// GetSeasonStandings retrieves a season's standings ordered by rank
func (r *StandingsRepository) GetSeasonStandings(ctx context.Context, seasonYear int) ([]*models.SeasonStanding, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, user_id, season_year, correct_picks, total_picks, percentage, updated_at
		FROM season_standings
		WHERE season_year = $1
		ORDER BY correct_picks DESC, percentage DESC, user_id
	`, seasonYear)
	if err != nil {
		return nil, fmt.Errorf("failed to get season standings: %w", err)
	}
	defer rows.Close()

	var standings []*models.SeasonStanding
	for rows.Next() {
		var s models.SeasonStanding
		err := rows.Scan(&s.ID, &s.UserID, &s.SeasonYear, &s.CorrectPicks, &s.TotalPicks, &s.Percentage, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan season standing: %w", err)
		}
		standings = append(standings, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating season standings: %w", err)
	}

	return standings, nil
}

// GetUserStanding retrieves one user's season standing
func (r *StandingsRepository) GetUserStanding(ctx context.Context, userID, seasonYear int) (*models.SeasonStanding, error) {
	var s models.SeasonStanding
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, season_year, correct_picks, total_picks, percentage, updated_at
		FROM season_standings
		WHERE user_id = $1 AND season_year = $2
	`, userID, seasonYear).Scan(&s.ID, &s.UserID, &s.SeasonYear, &s.CorrectPicks, &s.TotalPicks, &s.Percentage, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// No graded picks yet; an empty standing, not an error.
		return &models.SeasonStanding{UserID: userID, SeasonYear: seasonYear}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user standing: %w", err)
	}
	return &s, nil
}
