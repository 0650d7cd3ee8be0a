package grading

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"pickem/engine/internal/lifecycle"
	"pickem/engine/internal/metrics"
	"pickem/engine/internal/models"
	"pickem/engine/internal/names"
	"pickem/engine/internal/pickemerr"
	"pickem/engine/internal/repository"
	"pickem/engine/internal/sources"
)

// Grader updates scores from upstream and grades completed games
// against the spread. Grading is idempotent down to the SQL layer, so
// the grader can run on any schedule without double-counting.
type Grader struct {
	db        *repository.Database
	weeks     *lifecycle.Manager
	names     *names.Normalizer
	tracker   *sources.Tracker
	scores    []sources.ScoresSource
	callDelay time.Duration
}

func NewGrader(db *repository.Database, weeks *lifecycle.Manager, normalizer *names.Normalizer, tracker *sources.Tracker, scores []sources.ScoresSource, callDelay time.Duration) *Grader {
	return &Grader{
		db:        db,
		weeks:     weeks,
		names:     normalizer,
		tracker:   tracker,
		scores:    scores,
		callDelay: callDelay,
	}
}

// UpdateScores pulls final scores for every week that still has games
// awaiting results and writes them to the game rows. Sources are tried
// in order per week; the first that returns results wins.
func (g *Grader) UpdateScores(ctx context.Context) error {
	games, err := g.db.Games.ListScoreable(ctx)
	if err != nil {
		return fmt.Errorf("update scores: %w", err)
	}
	if len(games) == 0 {
		return nil
	}

	byWeek := make(map[int][]*models.Game)
	for _, game := range games {
		byWeek[game.WeekID] = append(byWeek[game.WeekID], game)
	}

	for weekID, weekGames := range byWeek {
		week, err := g.db.Weeks.GetByID(ctx, weekID)
		if err != nil {
			log.Error().Err(err).Int("week_id", weekID).Msg("Failed to load week for score update")
			metrics.RecordError("grading", "week_load")
			continue
		}

		finals, err := g.fetchFinals(ctx, week.SeasonYear, week.WeekNumber)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).
				Int("season", week.SeasonYear).
				Int("week", week.WeekNumber).
				Msg("All score sources failed")
			metrics.RecordError("grading", "scores_unavailable")
			continue
		}

		updated := 0
		for _, game := range weekGames {
			final := g.matchFinal(game, finals)
			if final == nil {
				continue
			}
			status := models.GameLive
			if final.Completed {
				status = models.GameCompleted
			}
			err := g.db.Games.UpdateScore(ctx, game.ID, final.HomeScore, final.AwayScore, status)
			if err != nil {
				log.Error().Err(err).Int("game_id", game.ID).Msg("Failed to write score")
				metrics.RecordError("grading", "score_write")
				continue
			}
			updated++
		}

		log.Info().
			Int("week_id", weekID).
			Int("pending", len(weekGames)).
			Int("updated", updated).
			Msg("Scores updated")
	}

	return nil
}

// fetchFinals walks the score source chain in order. The health tracker
// can veto a source before any call is made; a source that errors or
// returns nothing yields to the next after a politeness delay.
func (g *Grader) fetchFinals(ctx context.Context, year, week int) ([]models.FinalScore, error) {
	var lastErr error
	attempted := false

	for _, src := range g.scores {
		if g.tracker.ShouldSkip(ctx, src.ID()) {
			log.Debug().Str("source", src.ID()).Msg("Score source skipped by health tracker")
			lastErr = fmt.Errorf("%s: %w", src.ID(), pickemerr.ErrSourceSkipped)
			continue
		}

		if attempted && g.callDelay > 0 {
			select {
			case <-time.After(g.callDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		attempted = true

		finals, err := src.FetchFinalScores(ctx, year, week)
		if err != nil {
			log.Warn().Err(err).Str("source", src.ID()).Msg("Score source failed")
			lastErr = err
			continue
		}
		if len(finals) == 0 {
			log.Debug().Str("source", src.ID()).Msg("Score source returned no results")
			continue
		}
		return finals, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("no score source returned results for %d week %d", year, week)
}

// matchFinal pairs a stored game with an upstream final score, first by
// external ID when the source matches, then by team names in either
// orientation.
func (g *Grader) matchFinal(game *models.Game, finals []models.FinalScore) *models.FinalScore {
	for i := range finals {
		f := &finals[i]
		if game.ExternalID.Valid && f.ExternalID != "" && f.ExternalID == game.ExternalID.String {
			return f
		}
	}
	for i := range finals {
		f := &finals[i]
		if g.names.SameTeam(f.HomeTeam, game.HomeTeam) && g.names.SameTeam(f.AwayTeam, game.AwayTeam) {
			return f
		}
		// Some sources disagree on which side is home.
		if g.names.SameTeam(f.HomeTeam, game.AwayTeam) && g.names.SameTeam(f.AwayTeam, game.HomeTeam) {
			swapped := *f
			swapped.HomeScore, swapped.AwayScore = f.AwayScore, f.HomeScore
			return &swapped
		}
	}
	return nil
}

// GradeCompletedGames runs the kickoff auto-lock sweep, grades every
// completed ungraded game, completes finished weeks, and recomputes
// standings. A single game failing is logged and skipped; a context
// timeout aborts the whole pass.
func (g *Grader) GradeCompletedGames(ctx context.Context) error {
	start := time.Now()

	// The grading poll is the frequent one, so the sweep here is what
	// actually locks a week near kickoff; acquisition only runs weekly.
	if err := g.weeks.AutoLockStartedWeeks(ctx, start); err != nil {
		return err
	}

	games, err := g.db.Games.ListCompletedUngraded(ctx)
	if err != nil {
		return fmt.Errorf("grading pass: %w", err)
	}

	graded := 0
	for _, game := range games {
		if ctx.Err() != nil {
			return fmt.Errorf("grading pass aborted: %w", ctx.Err())
		}

		winner, err := g.spreadWinner(game)
		if err != nil {
			log.Error().Err(err).Int("game_id", game.ID).Msg("Cannot determine spread winner")
			metrics.RecordError("grading", "winner_indeterminate")
			continue
		}

		wins, losses, pushes, err := g.db.Picks.GradeGame(ctx, game.ID, winner)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("grading pass aborted: %w", ctx.Err())
			}
			log.Error().Err(err).Int("game_id", game.ID).Msg("Failed to grade game")
			metrics.RecordError("grading", "grade_write")
			continue
		}

		metrics.RecordGradedPicks(models.PickWin, wins)
		metrics.RecordGradedPicks(models.PickLoss, losses)
		metrics.RecordGradedPicks(models.PickPush, pushes)
		graded++

		log.Info().
			Int("game_id", game.ID).
			Str("matchup", fmt.Sprintf("%s at %s", game.AwayTeam, game.HomeTeam)).
			Str("spread_winner", winner).
			Msg("Game graded against the spread")
	}

	completed, err := g.weeks.CompleteFinishedWeeks(ctx)
	if err != nil {
		return fmt.Errorf("grading pass: %w", err)
	}

	if graded > 0 || len(completed) > 0 {
		if err := g.RecomputeStandings(ctx); err != nil {
			return err
		}
	}

	metrics.GradingDuration.Observe(time.Since(start).Seconds())
	log.Info().
		Int("games_graded", graded).
		Int("weeks_completed", len(completed)).
		Dur("duration", time.Since(start)).
		Msg("Grading pass finished")

	return nil
}

// RecomputeStandings rebuilds the weekly and season aggregates from the
// picks table.
func (g *Grader) RecomputeStandings(ctx context.Context) error {
	if err := g.db.Standings.RecomputeAll(ctx); err != nil {
		return fmt.Errorf("recompute standings: %w", err)
	}
	return nil
}

// spreadWinner orients the stored favorite against home/away and
// applies the spread to the final score.
func (g *Grader) spreadWinner(game *models.Game) (string, error) {
	if !game.Gradeable() {
		return "", fmt.Errorf("game %d is not gradeable", game.ID)
	}

	favorite := game.FavoriteTeam.String
	spread := game.Spread.Float64
	home := int(game.HomeScore.Int32)
	away := int(game.AwayScore.Int32)

	switch {
	case g.names.SameTeam(favorite, game.HomeTeam):
		return CoveringTeam(game.HomeTeam, game.AwayTeam, spread, home, away), nil
	case g.names.SameTeam(favorite, game.AwayTeam):
		return CoveringTeam(game.AwayTeam, game.HomeTeam, spread, away, home), nil
	default:
		return "", fmt.Errorf("favorite %q matches neither %q nor %q", favorite, game.HomeTeam, game.AwayTeam)
	}
}
