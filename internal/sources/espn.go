package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"pickem/engine/internal/models"
	"pickem/engine/internal/pickemerr"
)

// ESPNClient is the secondary structured source: a free scoreboard API,
// best effort, no credential required.
type ESPNClient struct {
	baseURL    string
	httpClient *http.Client
	tracker    *Tracker
}

// NewESPNClient builds the secondary adapter.
func NewESPNClient(baseURL string, timeout time.Duration, tracker *Tracker) *ESPNClient {
	return &ESPNClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(timeout),
		tracker:    tracker,
	}
}

// ID returns the source identifier.
func (c *ESPNClient) ID() string { return SourceESPN }

func (c *ESPNClient) get(ctx context.Context, path string) ([]byte, error) {
	res, err := getJSON(ctx, c.httpClient, SourceESPN, c.baseURL+path, nil, "")
	c.tracker.Record(ctx, SourceESPN, err == nil, unknownQuota)
	if err != nil {
		return nil, err
	}
	return res.body, nil
}

// espnScoreboard mirrors the source's nested event shape.
type espnScoreboard struct {
	Events []struct {
		ID           string `json:"id"`
		Date         string `json:"date"`
		Competitions []struct {
			ConferenceCompetition bool `json:"conferenceCompetition"`
			Competitors           []struct {
				HomeAway string `json:"homeAway"`
				Score    string `json:"score"`
				Team     struct {
					DisplayName  string `json:"displayName"`
					Location     string `json:"location"`
					ConferenceID string `json:"conferenceId"`
				} `json:"team"`
			} `json:"competitors"`
			Status struct {
				Type struct {
					Completed bool `json:"completed"`
				} `json:"type"`
			} `json:"status"`
		} `json:"competitions"`
	} `json:"events"`
}

// espnDateLayout is the timestamp format the scoreboard uses.
const espnDateLayout = "2006-01-02T15:04Z"

// FetchGames returns the week's scoreboard as candidate games. The
// scoreboard endpoint serves the FBS group, so candidates are marked FBS.
func (c *ESPNClient) FetchGames(ctx context.Context, year, week int) ([]models.CandidateGame, error) {
	body, err := c.get(ctx, fmt.Sprintf("/scoreboard?year=%d&week=%d", year, week))
	if err != nil {
		return nil, err
	}

	var sb espnScoreboard
	if err := json.Unmarshal(body, &sb); err != nil {
		return nil, &pickemerr.UpstreamError{Source: SourceESPN, Err: fmt.Errorf("failed to unmarshal scoreboard: %w", err)}
	}

	games := make([]models.CandidateGame, 0, len(sb.Events))
	for _, ev := range sb.Events {
		if len(ev.Competitions) == 0 {
			continue
		}
		comp := ev.Competitions[0]

		var home, away string
		for _, team := range comp.Competitors {
			switch team.HomeAway {
			case "home":
				home = team.Team.DisplayName
			case "away":
				away = team.Team.DisplayName
			}
		}
		if home == "" || away == "" {
			log.Warn().Str("event", ev.ID).Msg("Skipping event without both competitors")
			continue
		}

		start, err := time.Parse(espnDateLayout, ev.Date)
		if err != nil {
			if start, err = time.Parse(time.RFC3339, ev.Date); err != nil {
				log.Warn().Str("event", ev.ID).Str("date", ev.Date).Msg("Skipping event with unparseable date")
				continue
			}
		}

		games = append(games, models.CandidateGame{
			ExternalID:     ev.ID,
			HomeTeam:       home,
			AwayTeam:       away,
			StartTime:      start,
			ConferenceGame: comp.ConferenceCompetition,
			FBS:            true,
			SourceID:       SourceESPN,
		})
	}

	log.Debug().Int("count", len(games)).Int("year", year).Int("week", week).Msg("ESPN games fetched")
	return games, nil
}

// FetchFinalScores returns completed scoreboard games.
func (c *ESPNClient) FetchFinalScores(ctx context.Context, year, week int) ([]models.FinalScore, error) {
	body, err := c.get(ctx, fmt.Sprintf("/scoreboard?year=%d&week=%d", year, week))
	if err != nil {
		return nil, err
	}

	var sb espnScoreboard
	if err := json.Unmarshal(body, &sb); err != nil {
		return nil, &pickemerr.UpstreamError{Source: SourceESPN, Err: fmt.Errorf("failed to unmarshal scoreboard: %w", err)}
	}

	var scores []models.FinalScore
	for _, ev := range sb.Events {
		if len(ev.Competitions) == 0 {
			continue
		}
		comp := ev.Competitions[0]
		if !comp.Status.Type.Completed {
			continue
		}

		var home, away string
		var homeScore, awayScore int
		ok := true
		for _, team := range comp.Competitors {
			pts, err := strconv.Atoi(team.Score)
			if err != nil {
				ok = false
				break
			}
			switch team.HomeAway {
			case "home":
				home, homeScore = team.Team.DisplayName, pts
			case "away":
				away, awayScore = team.Team.DisplayName, pts
			}
		}
		if !ok || home == "" || away == "" {
			continue
		}

		scores = append(scores, models.FinalScore{
			ExternalID: ev.ID,
			HomeTeam:   home,
			AwayTeam:   away,
			HomeScore:  homeScore,
			AwayScore:  awayScore,
			Completed:  true,
			SourceID:   SourceESPN,
		})
	}
	return scores, nil
}
