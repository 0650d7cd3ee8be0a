package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"pickem/engine/internal/metrics"
	"pickem/engine/internal/models"
	"pickem/engine/internal/pickemerr"
)

// GameRepository handles game database operations
type GameRepository struct {
	db *Database
}

const gameColumns = `id, week_id, external_id, home_team, away_team, start_time, status,
	       spread, favorite_team, spread_source, home_score, away_score, spread_winner,
	       is_favorite_team_game, created_at, updated_at`

func scanGame(row pgx.Row) (*models.Game, error) {
	var g models.Game
	err := row.Scan(
		&g.ID, &g.WeekID, &g.ExternalID, &g.HomeTeam, &g.AwayTeam, &g.StartTime, &g.Status,
		&g.Spread, &g.FavoriteTeam, &g.SpreadSource, &g.HomeScore, &g.AwayScore, &g.SpreadWinner,
		&g.IsFavoriteTeamGame, &g.CreatedAt, &g.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, pickemerr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan game: %w", err)
	}
	return &g, nil
}

func (r *GameRepository) queryGames(ctx context.Context, query string, args ...interface{}) ([]*models.Game, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}

// GetByID retrieves a game by its database ID
func (r *GameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	return scanGame(r.db.Pool.QueryRow(ctx, query, id))
}

// GetByWeek retrieves a week's games in kickoff order
func (r *GameRepository) GetByWeek(ctx context.Context, weekID int) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE week_id = $1 ORDER BY start_time, id`
	return r.queryGames(ctx, query, weekID)
}

// CountByWeek returns how many games a week has
func (r *GameRepository) CountByWeek(ctx context.Context, weekID int) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM games WHERE week_id = $1`, weekID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return count, nil
}

// ReplaceWeekGames replaces a week's game set wholesale: delete then
// insert in one transaction, so a partial failure never leaves the week
// with a mix of old and new games. Rejected with ErrSpreadLocked if the
// week's spreads are locked.
func (r *GameRepository) ReplaceWeekGames(ctx context.Context, weekID int, games []*models.Game) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked bool
	err = tx.QueryRow(ctx, `SELECT spreads_locked FROM weeks WHERE id = $1`, weekID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("week %d: %w", weekID, pickemerr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to load week lock state: %w", err)
	}
	if locked {
		metrics.RecordLockViolation()
		return fmt.Errorf("week %d: %w", weekID, pickemerr.ErrSpreadLocked)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM games WHERE week_id = $1`, weekID); err != nil {
		return fmt.Errorf("failed to delete existing games: %w", err)
	}

	insert := `
		INSERT INTO games (
			week_id, external_id, home_team, away_team, start_time, status,
			spread, favorite_team, spread_source, is_favorite_team_game
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	for _, g := range games {
		err := tx.QueryRow(ctx, insert,
			weekID, g.ExternalID, g.HomeTeam, g.AwayTeam, g.StartTime, g.Status,
			g.Spread, g.FavoriteTeam, g.SpreadSource, g.IsFavoriteTeamGame,
		).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert game %s at %s: %w", g.AwayTeam, g.HomeTeam, err)
		}
		g.WeekID = weekID
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit game replacement: %w", err)
	}

	log.Info().Int("week_id", weekID).Int("count", len(games)).Msg("Week games replaced")
	return nil
}

// SetSpread sets a game's line by admin action. Two invariants guard it,
// each with its own error: the owning week's spreads must not be locked
// (ErrSpreadLocked), and a line set by an upstream odds source must not
// be overwritten (ErrSpreadFromSource).
func (r *GameRepository) SetSpread(ctx context.Context, gameID int, spread float64, favoriteTeam string) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked bool
	var hasSourceSpread bool
	err = tx.QueryRow(ctx, `
		SELECT w.spreads_locked, (g.spread IS NOT NULL AND g.spread_source IS NOT NULL)
		FROM games g JOIN weeks w ON w.id = g.week_id
		WHERE g.id = $1
	`, gameID).Scan(&locked, &hasSourceSpread)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("game %d: %w", gameID, pickemerr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to load game lock state: %w", err)
	}

	if locked {
		metrics.RecordLockViolation()
		return fmt.Errorf("game %d: %w", gameID, pickemerr.ErrSpreadLocked)
	}
	if hasSourceSpread {
		metrics.RecordLockViolation()
		return fmt.Errorf("game %d: %w", gameID, pickemerr.ErrSpreadFromSource)
	}

	_, err = tx.Exec(ctx, `
		UPDATE games SET spread = $1, favorite_team = $2, updated_at = NOW()
		WHERE id = $3
	`, spread, favoriteTeam, gameID)
	if err != nil {
		return fmt.Errorf("failed to set spread: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit spread update: %w", err)
	}

	log.Info().Int("game_id", gameID).Float64("spread", spread).Str("favorite", favoriteTeam).Msg("Spread set")
	return nil
}

// UpdateScore records an upstream-reported score and status for a game
func (r *GameRepository) UpdateScore(ctx context.Context, gameID, homeScore, awayScore int, status string) error {
	result, err := r.db.Pool.Exec(ctx, `
		UPDATE games
		SET home_score = $1, away_score = $2, status = $3, updated_at = NOW()
		WHERE id = $4
	`, homeScore, awayScore, status, gameID)
	if err != nil {
		return fmt.Errorf("failed to update game score: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("game %d: %w", gameID, pickemerr.ErrNotFound)
	}
	return nil
}

// ListScoreable retrieves games that still need upstream score updates:
// scheduled or live games whose kickoff has passed
func (r *GameRepository) ListScoreable(ctx context.Context) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + `
		FROM games
		WHERE status <> $1 AND start_time <= NOW()
		ORDER BY start_time, id`
	return r.queryGames(ctx, query, models.GameCompleted)
}

// ListCompletedUngraded retrieves completed games with a spread whose
// ATS winner has not been computed yet
func (r *GameRepository) ListCompletedUngraded(ctx context.Context) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + `
		FROM games
		WHERE status = $1
		  AND spread IS NOT NULL
		  AND favorite_team IS NOT NULL
		  AND home_score IS NOT NULL
		  AND away_score IS NOT NULL
		  AND spread_winner IS NULL
		ORDER BY start_time, id`
	return r.queryGames(ctx, query, models.GameCompleted)
}
