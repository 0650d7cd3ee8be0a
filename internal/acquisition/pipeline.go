// Package acquisition orchestrates one matchup-acquisition cycle:
// candidates from unreliable upstreams, scoring, odds reconciliation,
// and persistence of the week's game set.
package acquisition

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"pickem/engine/internal/lifecycle"
	"pickem/engine/internal/metrics"
	"pickem/engine/internal/models"
	"pickem/engine/internal/pickemerr"
	"pickem/engine/internal/repository"
	"pickem/engine/internal/selection"
	"pickem/engine/internal/sources"
)

// Pipeline runs the acquisition cycle. Sources are tried strictly in
// order with a politeness delay between attempts; the health tracker
// can veto a source for the cycle before any call is made.
type Pipeline struct {
	db         *repository.Database
	weeks      *lifecycle.Manager
	tracker    *sources.Tracker
	games      []sources.GamesSource
	rankings   sources.RankingsSource
	odds       []sources.OddsSource
	scorer     *selection.Scorer
	reconciler *selection.Reconciler
	callDelay  time.Duration
	now        func() time.Time
}

// Deps bundles the pipeline's collaborators.
type Deps struct {
	DB         *repository.Database
	Weeks      *lifecycle.Manager
	Tracker    *sources.Tracker
	Games      []sources.GamesSource
	Rankings   sources.RankingsSource
	Odds       []sources.OddsSource
	Scorer     *selection.Scorer
	Reconciler *selection.Reconciler
	CallDelay  time.Duration
}

func NewPipeline(d Deps) *Pipeline {
	return &Pipeline{
		db:         d.DB,
		weeks:      d.Weeks,
		tracker:    d.Tracker,
		games:      d.Games,
		rankings:   d.Rankings,
		odds:       d.Odds,
		scorer:     d.Scorer,
		reconciler: d.Reconciler,
		callDelay:  d.CallDelay,
		now:        time.Now,
	}
}

// FetchWeeklyGames runs the full cycle for the current calendar week
// and replaces the week's game set with the top selections. A locked
// week is never touched; an existing unlocked game set is only replaced
// when forceRefresh is set.
func (p *Pipeline) FetchWeeklyGames(ctx context.Context, forceRefresh bool) error {
	start := p.now()

	if err := p.weeks.AutoLockStartedWeeks(ctx, start); err != nil {
		return err
	}

	weekNumber := p.weeks.CurrentWeekNumber(start)
	week, err := p.weeks.EnsureWeek(ctx, weekNumber)
	if err != nil {
		return fmt.Errorf("acquisition: %w", err)
	}

	if week.SpreadsLocked {
		log.Info().
			Int("week_id", week.ID).
			Int("week", week.WeekNumber).
			Msg("Week spreads locked, acquisition skipped")
		return fmt.Errorf("week %d: %w", week.ID, pickemerr.ErrSpreadLocked)
	}

	if !forceRefresh {
		count, err := p.db.Games.CountByWeek(ctx, week.ID)
		if err != nil {
			return fmt.Errorf("acquisition: %w", err)
		}
		if count > 0 {
			log.Info().
				Int("week_id", week.ID).
				Int("games", count).
				Msg("Week already has games, acquisition skipped")
			return nil
		}
	}

	selected, candidateCount, err := p.selectGames(ctx, week.SeasonYear, week.WeekNumber, selection.GameLimit)
	if err != nil {
		return err
	}

	rows := make([]*models.Game, 0, len(selected))
	matched := 0
	for i := range selected {
		g := p.buildGame(&selected[i])
		if g.Spread.Valid {
			matched++
		}
		rows = append(rows, g)
	}

	if err := p.db.Games.ReplaceWeekGames(ctx, week.ID, rows); err != nil {
		return fmt.Errorf("acquisition: %w", err)
	}

	metrics.RecordAcquisition(p.now().Sub(start).Seconds(), candidateCount, matched, len(rows))
	log.Info().
		Int("week_id", week.ID).
		Int("week", week.WeekNumber).
		Int("selected", len(rows)).
		Int("with_spread", matched).
		Dur("duration", p.now().Sub(start)).
		Msg("Weekly games acquired")

	return nil
}

// TopGamesForWeek runs acquisition and scoring for an arbitrary week
// and returns the top candidates with reconciled lines. Nothing is
// persisted; this is the preview surface.
func (p *Pipeline) TopGamesForWeek(ctx context.Context, year, week int) ([]selection.SelectedGame, error) {
	selected, _, err := p.selectGames(ctx, year, week, selection.AvailableLimit)
	return selected, err
}

// selectGames fetches candidates, scores them, and reconciles odds onto
// the top limit of them. The second return is how many FBS candidates
// were scored, before truncation to the limit. Rankings and odds are
// best-effort: their failure degrades the result (unranked scoring,
// missing spreads) rather than failing the cycle.
func (p *Pipeline) selectGames(ctx context.Context, year, week, limit int) ([]selection.SelectedGame, int, error) {
	candidates, err := p.fetchCandidates(ctx, year, week)
	if err != nil {
		return nil, 0, fmt.Errorf("acquisition: %w", err)
	}
	if len(candidates) == 0 {
		return nil, 0, fmt.Errorf("acquisition: no source returned games for %d week %d", year, week)
	}

	rankings := p.fetchRankings(ctx, year, week)

	scored := 0
	for i := range candidates {
		if candidates[i].FBS {
			scored++
		}
	}

	ranked := p.scorer.RankCandidates(candidates, rankings, limit)

	selected := make([]selection.SelectedGame, len(ranked))
	for i := range ranked {
		selected[i] = selection.SelectedGame{Candidate: ranked[i]}
	}

	quotes := p.fetchQuotes(ctx, year, week)
	selected = p.reconciler.Reconcile(selected, quotes)

	return selected, scored, nil
}

// fetchCandidates walks the games-source chain in order. The health
// tracker can veto a source before any call; a failing or empty source
// yields to the next after the politeness delay.
func (p *Pipeline) fetchCandidates(ctx context.Context, year, week int) ([]models.CandidateGame, error) {
	var lastErr error
	attempted := false

	for _, src := range p.games {
		if p.tracker.ShouldSkip(ctx, src.ID()) {
			continue
		}

		if attempted {
			select {
			case <-time.After(p.callDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		attempted = true

		candidates, err := src.FetchGames(ctx, year, week)
		if err != nil {
			log.Warn().Err(err).Str("source", src.ID()).Msg("Games source failed, falling back")
			metrics.RecordError("acquisition", "games_source")
			lastErr = err
			continue
		}
		if len(candidates) == 0 {
			log.Warn().Str("source", src.ID()).Msg("Games source returned no games, falling back")
			continue
		}

		log.Info().
			Str("source", src.ID()).
			Int("games", len(candidates)).
			Msg("Candidate games fetched")
		return candidates, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

// fetchRankings is best-effort: scoring falls back to the unranked
// tiers when no poll is available.
func (p *Pipeline) fetchRankings(ctx context.Context, year, week int) models.RankingSet {
	if p.rankings == nil {
		return models.RankingSet{}
	}
	rankings, err := p.rankings.FetchRankings(ctx, year, week)
	if err != nil {
		log.Warn().Err(err).Msg("Rankings unavailable, scoring without poll")
		metrics.RecordError("acquisition", "rankings")
		return models.RankingSet{}
	}
	return rankings
}

// fetchQuotes gathers spread quotes from every healthy odds provider.
// Failures leave games without a line rather than failing the cycle.
func (p *Pipeline) fetchQuotes(ctx context.Context, year, week int) []models.SpreadQuote {
	var quotes []models.SpreadQuote
	for _, src := range p.odds {
		if p.tracker.ShouldSkip(ctx, src.ID()) {
			continue
		}
		qs, err := src.FetchQuotes(ctx, year, week)
		if err != nil {
			log.Warn().Err(err).Str("source", src.ID()).Msg("Odds provider failed")
			metrics.RecordError("acquisition", "odds_source")
			continue
		}
		quotes = append(quotes, qs...)
	}
	return quotes
}

// buildGame converts a reconciled selection to a persistable game row.
func (p *Pipeline) buildGame(s *selection.SelectedGame) *models.Game {
	c := &s.Candidate
	g := &models.Game{
		ExternalID:         sql.NullString{String: c.ExternalID, Valid: c.ExternalID != ""},
		HomeTeam:           c.HomeTeam,
		AwayTeam:           c.AwayTeam,
		StartTime:          c.StartTime,
		Status:             models.GameScheduled,
		IsFavoriteTeamGame: p.scorer.IsFavoriteTeamGame(c),
	}
	if s.Spread != nil {
		g.Spread = sql.NullFloat64{Float64: *s.Spread, Valid: true}
		g.FavoriteTeam = sql.NullString{String: s.FavoriteTeam, Valid: true}
		g.SpreadSource = sql.NullString{String: s.QuoteSource, Valid: true}
	}
	return g
}
