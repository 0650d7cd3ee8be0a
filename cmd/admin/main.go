// Command admin provides manual operations for the pick'em engine:
// forced acquisition, previews, grading passes, spread locks, and
// season setup.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"pickem/engine/internal/acquisition"
	"pickem/engine/internal/config"
	"pickem/engine/internal/grading"
	"pickem/engine/internal/lifecycle"
	"pickem/engine/internal/names"
	"pickem/engine/internal/repository"
	"pickem/engine/internal/selection"
	"pickem/engine/internal/sources"

	"github.com/rs/zerolog/log"
)

func main() {
	var (
		refresh = flag.Bool("refresh", false, "force-refresh the current week's games")
		preview = flag.Bool("preview", false, "score and print the top candidates without persisting")
		grade   = flag.Bool("grade", false, "update scores and grade completed games")
		lock    = flag.Int("lock", 0, "lock spreads for the given week ID")
		unlock  = flag.Int("unlock", 0, "unlock spreads for the given week ID")
		setup   = flag.Bool("setup", false, "create the season's weeks and activate the current one")
		week    = flag.Int("week", 0, "week number for -preview (default: current)")
	)
	flag.Parse()

	ctx := context.Background()
	cfg := config.MustLoad()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	seasonStart, err := cfg.ParsedSeasonStart()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid season start")
	}
	weeks := lifecycle.NewManager(db.Weeks, cfg.SeasonYear, seasonStart)

	// Admin runs are one-shot; the in-memory health log is enough.
	tracker := sources.NewTracker(sources.NewMemoryOutcomeStore())
	normalizer := names.NewNormalizer(names.Config{WatchListedTeams: cfg.FavoriteTeams})

	cfbd := sources.NewCFBDClient(cfg.CFBDBaseURL, cfg.CFBDAPIKey, cfg.CFBDTimeout, tracker, normalizer)
	espn := sources.NewESPNClient(cfg.ESPNBaseURL, cfg.ESPNTimeout, tracker)
	gamesSources := []sources.GamesSource{cfbd, espn}
	if cfg.ScrapeURL != "" {
		gamesSources = append(gamesSources, sources.NewScrapeClient(cfg.ScrapeURL, cfg.ScrapeTimeout, tracker))
	}

	pipeline := acquisition.NewPipeline(acquisition.Deps{
		DB:         db,
		Weeks:      weeks,
		Tracker:    tracker,
		Games:      gamesSources,
		Rankings:   cfbd,
		Odds:       []sources.OddsSource{sources.NewOddsClient(cfg.OddsBaseURL, cfg.OddsAPIKey, cfg.OddsTimeout, tracker)},
		Scorer:     selection.NewScorer(normalizer, nil, nil),
		Reconciler: selection.NewReconciler(normalizer, cfg.OddsProviderPriority),
		CallDelay:  cfg.SourceCallDelay,
	})

	grader := grading.NewGrader(db, weeks, normalizer, tracker, []sources.ScoresSource{cfbd, espn}, cfg.SourceCallDelay)

	switch {
	case *setup:
		if err := weeks.SetupSeason(ctx, time.Now()); err != nil {
			log.Fatal().Err(err).Msg("Season setup failed")
		}
		log.Info().Msg("Season setup complete")

	case *refresh:
		ctx, cancel := context.WithTimeout(ctx, cfg.AcquisitionTimeout)
		defer cancel()
		if err := pipeline.FetchWeeklyGames(ctx, true); err != nil {
			log.Fatal().Err(err).Msg("Forced refresh failed")
		}
		log.Info().Msg("Weekly games refreshed")

	case *preview:
		weekNumber := *week
		if weekNumber == 0 {
			weekNumber = weeks.CurrentWeekNumber(time.Now())
		}
		ctx, cancel := context.WithTimeout(ctx, cfg.AcquisitionTimeout)
		defer cancel()
		selected, err := pipeline.TopGamesForWeek(ctx, cfg.SeasonYear, weekNumber)
		if err != nil {
			log.Fatal().Err(err).Msg("Preview failed")
		}
		printPreview(cfg.SeasonYear, weekNumber, selected)

	case *grade:
		ctx, cancel := context.WithTimeout(ctx, cfg.GradingTimeout)
		defer cancel()
		if err := grader.UpdateScores(ctx); err != nil {
			log.Error().Err(err).Msg("Score update failed")
		}
		if err := grader.GradeCompletedGames(ctx); err != nil {
			log.Fatal().Err(err).Msg("Grading failed")
		}
		log.Info().Msg("Grading complete")

	case *lock != 0:
		if err := weeks.LockSpreads(ctx, *lock); err != nil {
			log.Fatal().Err(err).Int("week_id", *lock).Msg("Lock failed")
		}
		log.Info().Int("week_id", *lock).Msg("Spreads locked")

	case *unlock != 0:
		if err := weeks.UnlockSpreads(ctx, *unlock); err != nil {
			log.Fatal().Err(err).Int("week_id", *unlock).Msg("Unlock failed")
		}
		log.Info().Int("week_id", *unlock).Msg("Spreads unlocked")

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func printPreview(season, week int, selected []selection.SelectedGame) {
	fmt.Printf("Top candidates, %d week %d:\n", season, week)
	for i, s := range selected {
		line := "no line"
		if s.Spread != nil {
			line = fmt.Sprintf("%s -%.1f (%s)", s.FavoriteTeam, *s.Spread, s.QuoteSource)
		}
		fmt.Printf("%2d. [%4d] %s at %s  %s  %s\n",
			i+1, s.Candidate.Score,
			s.Candidate.AwayTeam, s.Candidate.HomeTeam,
			s.Candidate.StartTime.Format("Mon Jan 2 15:04"),
			line)
	}
}
