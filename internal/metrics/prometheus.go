package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the pick'em engine

var (
	// Upstream source metrics
	SourceCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickem_source_calls_total",
			Help: "Total number of upstream source calls",
		},
		[]string{"source", "status"},
	)

	SourceSkipsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickem_source_skips_total",
			Help: "Total number of sources skipped by the health tracker",
		},
		[]string{"source", "reason"},
	)

	ScrapeParseErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pickem_scrape_parse_errors_total",
			Help: "Total number of scoreboard rows the scraper failed to parse",
		},
	)

	// Acquisition metrics
	AcquisitionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pickem_acquisition_duration_seconds",
			Help:    "Duration of acquisition pipeline runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	CandidatesScored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pickem_candidates_scored",
			Help: "Number of FBS candidates scored in the last acquisition run",
		},
	)

	QuotesMatched = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pickem_quotes_matched",
			Help: "Number of selected games with a reconciled spread in the last run",
		},
	)

	GamesSelected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pickem_games_selected",
			Help: "Number of games persisted for the current week",
		},
	)

	// Grading metrics
	GradedPicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickem_graded_picks_total",
			Help: "Total number of picks graded",
		},
		[]string{"result"},
	)

	GradingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pickem_grading_duration_seconds",
			Help:    "Duration of grading passes in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120},
		},
	)

	StandingsRecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pickem_standings_recompute_duration_seconds",
			Help:    "Duration of full standings recomputes in seconds",
			Buckets: []float64{.1, .5, 1, 5, 10, 30},
		},
	)

	// Lifecycle metrics
	LockViolationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pickem_lock_violations_total",
			Help: "Total number of rejected spread mutations on locked data",
		},
	)

	WeeksLocked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pickem_weeks_locked_total",
			Help: "Total number of weeks whose spreads were locked",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pickem_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pickem_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulAcquisition = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pickem_last_successful_acquisition_timestamp",
			Help: "Timestamp of the last successful acquisition run",
		},
	)
)

// RecordSourceCall records one upstream call outcome.
func RecordSourceCall(source, status string) {
	SourceCallsTotal.WithLabelValues(source, status).Inc()
}

// RecordSourceSkip records a health-tracker veto.
func RecordSourceSkip(source, reason string) {
	SourceSkipsTotal.WithLabelValues(source, reason).Inc()
}

// RecordScrapeParseErrors records skipped scoreboard rows.
func RecordScrapeParseErrors(count int) {
	ScrapeParseErrorsTotal.Add(float64(count))
}

// RecordAcquisition records a completed acquisition run.
func RecordAcquisition(durationSeconds float64, candidates, matched, selected int) {
	AcquisitionDuration.Observe(durationSeconds)
	CandidatesScored.Set(float64(candidates))
	QuotesMatched.Set(float64(matched))
	GamesSelected.Set(float64(selected))
	LastSuccessfulAcquisition.SetToCurrentTime()
}

// RecordGradedPicks records graded pick counts by result.
func RecordGradedPicks(result string, count int) {
	GradedPicksTotal.WithLabelValues(result).Add(float64(count))
}

// RecordError records an error.
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// RecordLockViolation records a rejected spread mutation.
func RecordLockViolation() {
	LockViolationsTotal.Inc()
}
