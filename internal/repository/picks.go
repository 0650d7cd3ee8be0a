package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"pickem/engine/internal/models"
	"pickem/engine/internal/pickemerr"
)

// PickRepository handles pick database operations
type PickRepository struct {
	db *Database
}

const pickColumns = `id, user_id, game_id, selected_team, result, is_correct, created_at, updated_at`

func scanPick(row pgx.Row) (*models.Pick, error) {
	var p models.Pick
	err := row.Scan(
		&p.ID, &p.UserID, &p.GameID, &p.SelectedTeam,
		&p.Result, &p.IsCorrect, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, pickemerr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan pick: %w", err)
	}
	return &p, nil
}

// Upsert creates or updates a user's pick for a game. Unique per
// (user, game); grading fields are never written here.
func (r *PickRepository) Upsert(ctx context.Context, pick *models.Pick) error {
	query := `
		INSERT INTO picks (user_id, game_id, selected_team)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, game_id) DO UPDATE SET
			selected_team = EXCLUDED.selected_team,
			updated_at = NOW()
		RETURNING id, result, is_correct, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query, pick.UserID, pick.GameID, pick.SelectedTeam).
		Scan(&pick.ID, &pick.Result, &pick.IsCorrect, &pick.CreatedAt, &pick.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert pick: %w", err)
	}

	return nil
}

// ListByGame retrieves all picks for one game
func (r *PickRepository) ListByGame(ctx context.Context, gameID int) ([]*models.Pick, error) {
	query := `SELECT ` + pickColumns + ` FROM picks WHERE game_id = $1 ORDER BY user_id`

	rows, err := r.db.Pool.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", err)
	}
	defer rows.Close()

	var picks []*models.Pick
	for rows.Next() {
		p, err := scanPick(rows)
		if err != nil {
			return nil, err
		}
		picks = append(picks, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating picks: %w", err)
	}

	return picks, nil
}

// ListByUserWeek retrieves one user's picks for a week's games
func (r *PickRepository) ListByUserWeek(ctx context.Context, userID, weekID int) ([]*models.Pick, error) {
	query := `
		SELECT p.id, p.user_id, p.game_id, p.selected_team, p.result, p.is_correct, p.created_at, p.updated_at
		FROM picks p
		JOIN games g ON g.id = p.game_id
		WHERE p.user_id = $1 AND g.week_id = $2
		ORDER BY g.start_time, g.id
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, weekID)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", err)
	}
	defer rows.Close()

	var picks []*models.Pick
	for rows.Next() {
		p, err := scanPick(rows)
		if err != nil {
			return nil, err
		}
		picks = append(picks, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating picks: %w", err)
	}

	return picks, nil
}

// GradeGame writes the game's ATS winner and grades its picks in one
// transaction. Only ungraded picks (result IS NULL) are touched, which is
// what makes re-running grading a no-op: an already-graded pick is never
// revisited. Returns wins, losses, pushes written this call.
func (r *PickRepository) GradeGame(ctx context.Context, gameID int, spreadWinner string) (wins, losses, pushes int, err error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE games SET spread_winner = $1, updated_at = NOW()
		WHERE id = $2 AND spread_winner IS NULL
	`, spreadWinner, gameID)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to set spread winner: %w", err)
	}
	if result.RowsAffected() == 0 {
		// Already graded by an earlier pass; leave everything untouched.
		return 0, 0, 0, nil
	}

	if spreadWinner == models.SpreadWinnerPush {
		pushResult, err := tx.Exec(ctx, `
			UPDATE picks SET result = $1, is_correct = FALSE, updated_at = NOW()
			WHERE game_id = $2 AND result IS NULL
		`, models.PickPush, gameID)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("failed to grade pushed picks: %w", err)
		}
		pushes = int(pushResult.RowsAffected())
	} else {
		winResult, err := tx.Exec(ctx, `
			UPDATE picks SET result = $1, is_correct = TRUE, updated_at = NOW()
			WHERE game_id = $2 AND result IS NULL AND selected_team = $3
		`, models.PickWin, gameID, spreadWinner)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("failed to grade winning picks: %w", err)
		}
		lossResult, err := tx.Exec(ctx, `
			UPDATE picks SET result = $1, is_correct = FALSE, updated_at = NOW()
			WHERE game_id = $2 AND result IS NULL AND selected_team <> $3
		`, models.PickLoss, gameID, spreadWinner)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("failed to grade losing picks: %w", err)
		}
		wins = int(winResult.RowsAffected())
		losses = int(lossResult.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to commit grading: %w", err)
	}

	log.Debug().
		Int("game_id", gameID).
		Str("spread_winner", spreadWinner).
		Int("wins", wins).
		Int("losses", losses).
		Int("pushes", pushes).
		Msg("Game graded")

	return wins, losses, pushes, nil
}
