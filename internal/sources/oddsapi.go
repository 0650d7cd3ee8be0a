package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"pickem/engine/internal/models"
	"pickem/engine/internal/pickemerr"
)

// OddsClient fetches bookmaker spread quotes. It requires an API
// credential and treats HTTP 429 as an empty result rather than an
// error: a rate-limited cycle just runs without lines.
type OddsClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	tracker    *Tracker
}

// NewOddsClient builds the odds adapter.
func NewOddsClient(baseURL, apiKey string, timeout time.Duration, tracker *Tracker) *OddsClient {
	return &OddsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: newHTTPClient(timeout),
		tracker:    tracker,
	}
}

// ID returns the source identifier.
func (c *OddsClient) ID() string { return SourceOddsAPI }

// oddsEvent mirrors the provider's bookmaker-keyed market shape.
type oddsEvent struct {
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	Bookmakers []struct {
		Key     string `json:"key"`
		Markets []struct {
			Key      string `json:"key"`
			Outcomes []struct {
				Name  string  `json:"name"`
				Point float64 `json:"point"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

// FetchQuotes returns one spread quote per (event, bookmaker) pair.
func (c *OddsClient) FetchQuotes(ctx context.Context, year, week int) ([]models.SpreadQuote, error) {
	if c.apiKey == "" {
		return nil, &pickemerr.ConfigError{Source: SourceOddsAPI, Detail: "API key not configured"}
	}

	endpoint := fmt.Sprintf("%s/sports/americanfootball_ncaaf/odds?apiKey=%s&regions=us&markets=spreads",
		c.baseURL, url.QueryEscape(c.apiKey))

	res, err := getJSON(ctx, c.httpClient, SourceOddsAPI, endpoint, nil, "X-Requests-Remaining")

	quota := unknownQuota
	rateLimited := res != nil && res.status == http.StatusTooManyRequests
	if res != nil {
		quota = res.quotaRemaining
	}
	// A 429 still counts as a successful contact for health purposes; the
	// quota signal it carries is what should throttle us, not the breaker.
	c.tracker.Record(ctx, SourceOddsAPI, err == nil || rateLimited, quota)

	if rateLimited {
		log.Warn().Int("year", year).Int("week", week).Msg("Odds source rate limited, continuing without lines")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var events []oddsEvent
	if err := json.Unmarshal(res.body, &events); err != nil {
		return nil, &pickemerr.UpstreamError{Source: SourceOddsAPI, Err: fmt.Errorf("failed to unmarshal odds: %w", err)}
	}

	var quotes []models.SpreadQuote
	for _, ev := range events {
		for _, book := range ev.Bookmakers {
			quote, ok := spreadQuoteFromMarkets(ev, book.Key)
			if !ok {
				continue
			}
			quotes = append(quotes, quote)
		}
	}

	log.Debug().Int("events", len(events)).Int("quotes", len(quotes)).Msg("Odds quotes fetched")
	return quotes, nil
}

// spreadQuoteFromMarkets extracts the favorite and line from one
// bookmaker's spreads market. The favorite is the side with the negative
// point; the line is its magnitude.
func spreadQuoteFromMarkets(ev oddsEvent, bookKey string) (models.SpreadQuote, bool) {
	for _, book := range ev.Bookmakers {
		if book.Key != bookKey {
			continue
		}
		for _, market := range book.Markets {
			if market.Key != "spreads" {
				continue
			}
			for _, outcome := range market.Outcomes {
				if outcome.Point < 0 {
					return models.SpreadQuote{
						HomeTeam:     ev.HomeTeam,
						AwayTeam:     ev.AwayTeam,
						FavoriteTeam: outcome.Name,
						Line:         -outcome.Point,
						Source:       bookKey,
					}, true
				}
			}
		}
	}
	return models.SpreadQuote{}, false
}
