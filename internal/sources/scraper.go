package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"pickem/engine/internal/metrics"
	"pickem/engine/internal/models"
	"pickem/engine/internal/pickemerr"
)

// ScrapeClient is the last-resort games source: an HTML scoreboard page
// with no contract guarantee. Parsing is defensive per element; a row
// that fails to parse is counted and skipped, never fatal, and the
// adapter returns whatever subset it could read.
type ScrapeClient struct {
	pageURL    string
	httpClient *http.Client
	tracker    *Tracker
	now        func() time.Time
}

// NewScrapeClient builds the scraping adapter for the given page URL.
func NewScrapeClient(pageURL string, timeout time.Duration, tracker *Tracker) *ScrapeClient {
	return &ScrapeClient{
		pageURL:    pageURL,
		httpClient: newHTTPClient(timeout),
		tracker:    tracker,
		now:        time.Now,
	}
}

// ID returns the source identifier.
func (c *ScrapeClient) ID() string { return SourceScraper }

// FetchGames scrapes the week's matchups from the scoreboard page.
func (c *ScrapeClient) FetchGames(ctx context.Context, year, week int) ([]models.CandidateGame, error) {
	url := fmt.Sprintf("%s?year=%d&week=%d", c.pageURL, year, week)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "pickem-engine/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.tracker.Record(ctx, SourceScraper, false, unknownQuota)
		return nil, &pickemerr.UpstreamError{Source: SourceScraper, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.tracker.Record(ctx, SourceScraper, false, unknownQuota)
		return nil, &pickemerr.UpstreamError{
			Source: SourceScraper,
			Err:    fmt.Errorf("scrape target returned status %d", resp.StatusCode),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		c.tracker.Record(ctx, SourceScraper, false, unknownQuota)
		return nil, &pickemerr.UpstreamError{Source: SourceScraper, Err: fmt.Errorf("failed to parse page: %w", err)}
	}

	games := c.ParseDocument(doc, year, week)
	c.tracker.Record(ctx, SourceScraper, true, unknownQuota)
	return games, nil
}

// ParseGamesHTML parses raw scoreboard HTML. Split out of FetchGames so
// fixture pages can be parsed without a network round trip.
func (c *ScrapeClient) ParseGamesHTML(html []byte, year, week int) ([]models.CandidateGame, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, &pickemerr.UpstreamError{Source: SourceScraper, Err: fmt.Errorf("failed to parse page: %w", err)}
	}
	return c.ParseDocument(doc, year, week), nil
}

// ParseDocument walks the matchup rows. Expected shape per row:
//
//	<div class="matchup" data-kickoff="2006-01-02T15:04:05Z">
//	  <span class="away-team">Away Name</span>
//	  <span class="home-team">Home Name</span>
//	  <span class="conference">SEC</span>   (optional)
//	</div>
func (c *ScrapeClient) ParseDocument(doc *goquery.Document, year, week int) []models.CandidateGame {
	var games []models.CandidateGame
	parseErrors := 0

	doc.Find("div.matchup").Each(func(i int, sel *goquery.Selection) {
		game, err := parseMatchupRow(sel, year, week, c.now())
		if err != nil {
			parseErrors++
			log.Debug().Err(err).Int("row", i).Msg("Skipping unparseable matchup row")
			return
		}
		games = append(games, game)
	})

	if parseErrors > 0 {
		metrics.RecordScrapeParseErrors(parseErrors)
		log.Warn().
			Int("parsed", len(games)).
			Int("errors", parseErrors).
			Msg("Scrape completed with partial results")
	}
	return games
}

func parseMatchupRow(sel *goquery.Selection, year, week int, now time.Time) (models.CandidateGame, error) {
	home := strings.TrimSpace(sel.Find("span.home-team").First().Text())
	away := strings.TrimSpace(sel.Find("span.away-team").First().Text())
	if home == "" || away == "" {
		return models.CandidateGame{}, fmt.Errorf("matchup row missing team names")
	}

	// Kickoff time is best effort: a missing or malformed attribute falls
	// back to "sometime this week" so the game is still usable.
	start := now
	if kickoff, ok := sel.Attr("data-kickoff"); ok {
		parsed, err := time.Parse(time.RFC3339, kickoff)
		if err != nil {
			return models.CandidateGame{}, fmt.Errorf("bad kickoff %q: %w", kickoff, err)
		}
		start = parsed
	}

	conference := strings.TrimSpace(sel.Find("span.conference").First().Text())

	return models.CandidateGame{
		ExternalID:     fmt.Sprintf("scrape-%d-%d-%s-%s", year, week, slug(away), slug(home)),
		HomeTeam:       home,
		AwayTeam:       away,
		StartTime:      start,
		HomeConference: conference,
		AwayConference: conference,
		ConferenceGame: conference != "",
		FBS:            true,
		SourceID:       SourceScraper,
	}, nil
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}
