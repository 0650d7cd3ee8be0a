package sources

import (
	"context"

	"pickem/engine/internal/models"
)

// Source IDs recorded as game provenance and used by the health tracker.
const (
	SourceCFBD    = "cfbd"
	SourceESPN    = "espn"
	SourceOddsAPI = "oddsapi"
	SourceScraper = "scraper"
)

// GamesSource fetches candidate games for a season week. Every adapter
// returns the common CandidateGame shape; source-specific field naming
// never leaks past this boundary.
type GamesSource interface {
	ID() string
	FetchGames(ctx context.Context, year, week int) ([]models.CandidateGame, error)
}

// RankingsSource fetches the current top-25 poll keyed by canonical
// team token.
type RankingsSource interface {
	FetchRankings(ctx context.Context, year, week int) (models.RankingSet, error)
}

// ScoresSource fetches final scores for a season week.
type ScoresSource interface {
	ID() string
	FetchFinalScores(ctx context.Context, year, week int) ([]models.FinalScore, error)
}

// OddsSource fetches bookmaker spread quotes for a season week.
type OddsSource interface {
	ID() string
	FetchQuotes(ctx context.Context, year, week int) ([]models.SpreadQuote, error)
}
