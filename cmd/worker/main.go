package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pickem/engine/internal/acquisition"
	"pickem/engine/internal/config"
	"pickem/engine/internal/grading"
	"pickem/engine/internal/lifecycle"
	"pickem/engine/internal/metrics"
	"pickem/engine/internal/names"
	"pickem/engine/internal/repository"
	"pickem/engine/internal/scheduler"
	"pickem/engine/internal/selection"
	"pickem/engine/internal/sources"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting pick'em engine worker")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Int("season", cfg.SeasonYear).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Initialize database connection
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
	log.Info().Msg("Database connection established")

	// Source health log lives in Redis; fall back to in-memory tracking
	// when Redis is down so acquisition keeps working.
	var outcomeStore sources.OutcomeStore
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - source health will not survive restarts")
		outcomeStore = sources.NewMemoryOutcomeStore()
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis connected")
		outcomeStore = sources.NewRedisOutcomeStore(redisClient)
	}
	tracker := sources.NewTracker(outcomeStore)

	// Team name reconciliation tables plus the configured watch list
	normalizer := names.NewNormalizer(names.Config{
		WatchListedTeams: cfg.FavoriteTeams,
	})
	log.Info().Int("watch_list", normalizer.WatchListSize()).Msg("Team normalizer initialized")

	// Upstream adapters, in fallback order
	cfbd := sources.NewCFBDClient(cfg.CFBDBaseURL, cfg.CFBDAPIKey, cfg.CFBDTimeout, tracker, normalizer)
	espn := sources.NewESPNClient(cfg.ESPNBaseURL, cfg.ESPNTimeout, tracker)

	gamesSources := []sources.GamesSource{cfbd, espn}
	if cfg.ScrapeURL != "" {
		gamesSources = append(gamesSources, sources.NewScrapeClient(cfg.ScrapeURL, cfg.ScrapeTimeout, tracker))
	}

	oddsClient := sources.NewOddsClient(cfg.OddsBaseURL, cfg.OddsAPIKey, cfg.OddsTimeout, tracker)

	seasonStart, err := cfg.ParsedSeasonStart()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid season start")
	}
	weeks := lifecycle.NewManager(db.Weeks, cfg.SeasonYear, seasonStart)

	pipeline := acquisition.NewPipeline(acquisition.Deps{
		DB:         db,
		Weeks:      weeks,
		Tracker:    tracker,
		Games:      gamesSources,
		Rankings:   cfbd,
		Odds:       []sources.OddsSource{oddsClient},
		Scorer:     selection.NewScorer(normalizer, nil, nil),
		Reconciler: selection.NewReconciler(normalizer, cfg.OddsProviderPriority),
		CallDelay:  cfg.SourceCallDelay,
	})

	grader := grading.NewGrader(db, weeks, normalizer, tracker, []sources.ScoresSource{cfbd, espn}, cfg.SourceCallDelay)

	// Start metrics HTTP server
	if cfg.EnableMetrics {
		go startMetricsServer(cfg.MetricsPort, db)
	}

	// Update system uptime metric
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Create and start scheduler
	sched := scheduler.NewScheduler(scheduler.Jobs{
		FetchWeeklyGames: func(ctx context.Context) error {
			return pipeline.FetchWeeklyGames(ctx, false)
		},
		UpdateScores:   grader.UpdateScores,
		GradeCompleted: grader.GradeCompletedGames,
	}, scheduler.Options{
		AcquisitionCron:    cfg.AcquisitionCron,
		GradingInterval:    cfg.GradingPollInterval,
		AcquisitionTimeout: cfg.AcquisitionTimeout,
		GradingTimeout:     cfg.GradingTimeout,
	})

	if cfg.EnableScheduler {
		log.Info().Msg("Starting scheduler...")
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(port int, db *repository.Database) {
	http.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Health(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	addr := fmt.Sprintf(":%d", port)
	log.Info().Int("port", port).Msg("Starting metrics server")

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Error().Err(err).Msg("Metrics server failed")
	}
}
