package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"pickem/engine/internal/models"
	"pickem/engine/internal/names"
	"pickem/engine/internal/pickemerr"
)

// CFBDClient is the primary structured games/rankings source. It requires
// an API credential; a missing credential is a configuration error raised
// before any network call.
type CFBDClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	tracker    *Tracker
	names      *names.Normalizer
}

// NewCFBDClient builds the primary adapter. apiKey may be empty; every
// fetch then fails fast with a ConfigError.
func NewCFBDClient(baseURL, apiKey string, timeout time.Duration, tracker *Tracker, n *names.Normalizer) *CFBDClient {
	return &CFBDClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: newHTTPClient(timeout),
		tracker:    tracker,
		names:      n,
	}
}

// ID returns the source identifier.
func (c *CFBDClient) ID() string { return SourceCFBD }

func (c *CFBDClient) checkCredential() error {
	if c.apiKey == "" {
		return &pickemerr.ConfigError{Source: SourceCFBD, Detail: "API key not configured"}
	}
	return nil
}

func (c *CFBDClient) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.checkCredential(); err != nil {
		return nil, err
	}

	url := c.baseURL + path
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	res, err := getJSON(ctx, c.httpClient, SourceCFBD, url, headers, "X-RateLimit-Remaining")

	quota := unknownQuota
	if res != nil {
		quota = res.quotaRemaining
	}
	c.tracker.Record(ctx, SourceCFBD, err == nil, quota)

	if err != nil {
		return nil, err
	}
	return res.body, nil
}

// cfbdGame mirrors the source's snake_case game shape. Nothing outside
// this file sees it.
type cfbdGame struct {
	ID             int64  `json:"id"`
	StartDate      string `json:"start_date"`
	HomeTeam       string `json:"home_team"`
	AwayTeam       string `json:"away_team"`
	HomeConference string `json:"home_conference"`
	AwayConference string `json:"away_conference"`
	HomeDivision   string `json:"home_division"`
	AwayDivision   string `json:"away_division"`
	ConferenceGame bool   `json:"conference_game"`
	Completed      bool   `json:"completed"`
	HomePoints     *int   `json:"home_points"`
	AwayPoints     *int   `json:"away_points"`
}

// FetchGames returns the week's schedule as candidate games.
func (c *CFBDClient) FetchGames(ctx context.Context, year, week int) ([]models.CandidateGame, error) {
	body, err := c.get(ctx, fmt.Sprintf("/games?year=%d&week=%d&seasonType=regular", year, week))
	if err != nil {
		return nil, err
	}

	var raw []cfbdGame
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &pickemerr.UpstreamError{Source: SourceCFBD, Err: fmt.Errorf("failed to unmarshal games: %w", err)}
	}

	games := make([]models.CandidateGame, 0, len(raw))
	for _, g := range raw {
		start, err := time.Parse(time.RFC3339, g.StartDate)
		if err != nil {
			log.Warn().Int64("game_id", g.ID).Str("start", g.StartDate).Msg("Skipping game with unparseable start date")
			continue
		}
		games = append(games, models.CandidateGame{
			ExternalID:     fmt.Sprintf("%d", g.ID),
			HomeTeam:       g.HomeTeam,
			AwayTeam:       g.AwayTeam,
			StartTime:      start,
			HomeConference: g.HomeConference,
			AwayConference: g.AwayConference,
			ConferenceGame: g.ConferenceGame,
			FBS:            strings.EqualFold(g.HomeDivision, "fbs") && strings.EqualFold(g.AwayDivision, "fbs"),
			SourceID:       SourceCFBD,
		})
	}

	log.Debug().Int("count", len(games)).Int("year", year).Int("week", week).Msg("CFBD games fetched")
	return games, nil
}

type cfbdRankingWeek struct {
	Polls []struct {
		Poll  string `json:"poll"`
		Ranks []struct {
			Rank   int    `json:"rank"`
			School string `json:"school"`
		} `json:"ranks"`
	} `json:"polls"`
}

// FetchRankings returns the AP top-25 keyed by canonical team token.
func (c *CFBDClient) FetchRankings(ctx context.Context, year, week int) (models.RankingSet, error) {
	body, err := c.get(ctx, fmt.Sprintf("/rankings?year=%d&week=%d&seasonType=regular", year, week))
	if err != nil {
		return nil, err
	}

	var weeks []cfbdRankingWeek
	if err := json.Unmarshal(body, &weeks); err != nil {
		return nil, &pickemerr.UpstreamError{Source: SourceCFBD, Err: fmt.Errorf("failed to unmarshal rankings: %w", err)}
	}

	rankings := make(models.RankingSet)
	for _, w := range weeks {
		for _, poll := range w.Polls {
			if !strings.Contains(poll.Poll, "AP") {
				continue
			}
			for _, r := range poll.Ranks {
				rankings[c.names.Normalize(r.School)] = r.Rank
			}
		}
	}

	log.Debug().Int("ranked", len(rankings)).Msg("CFBD rankings fetched")
	return rankings, nil
}

// FetchFinalScores returns completed games with their final scores.
func (c *CFBDClient) FetchFinalScores(ctx context.Context, year, week int) ([]models.FinalScore, error) {
	body, err := c.get(ctx, fmt.Sprintf("/games?year=%d&week=%d&seasonType=regular", year, week))
	if err != nil {
		return nil, err
	}

	var raw []cfbdGame
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &pickemerr.UpstreamError{Source: SourceCFBD, Err: fmt.Errorf("failed to unmarshal games: %w", err)}
	}

	scores := make([]models.FinalScore, 0, len(raw))
	for _, g := range raw {
		if !g.Completed || g.HomePoints == nil || g.AwayPoints == nil {
			continue
		}
		scores = append(scores, models.FinalScore{
			ExternalID: fmt.Sprintf("%d", g.ID),
			HomeTeam:   g.HomeTeam,
			AwayTeam:   g.AwayTeam,
			HomeScore:  *g.HomePoints,
			AwayScore:  *g.AwayPoints,
			Completed:  true,
			SourceID:   SourceCFBD,
		})
	}
	return scores, nil
}
