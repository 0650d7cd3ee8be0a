package sources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scoreboardFixture = `
<html><body>
  <div class="matchup" data-kickoff="2025-10-04T19:30:00Z">
    <span class="away-team">Ohio State</span>
    <span class="home-team">Michigan</span>
    <span class="conference">Big Ten</span>
  </div>
  <div class="matchup" data-kickoff="2025-10-04T23:00:00Z">
    <span class="away-team">Auburn</span>
    <span class="home-team">Georgia</span>
  </div>
  <div class="matchup" data-kickoff="not-a-timestamp">
    <span class="away-team">Broken</span>
    <span class="home-team">Row</span>
  </div>
  <div class="matchup">
    <span class="home-team">Missing Away Side</span>
  </div>
</body></html>`

func TestParseGamesHTMLPartialResults(t *testing.T) {
	c := NewScrapeClient("http://example.test/scoreboard", time.Second, NewTracker(NewMemoryOutcomeStore()))

	games, err := c.ParseGamesHTML([]byte(scoreboardFixture), 2025, 6)
	require.NoError(t, err)
	require.Len(t, games, 2, "unparseable rows are skipped, not fatal")

	first := games[0]
	assert.Equal(t, "Michigan", first.HomeTeam)
	assert.Equal(t, "Ohio State", first.AwayTeam)
	assert.Equal(t, time.Date(2025, 10, 4, 19, 30, 0, 0, time.UTC), first.StartTime)
	assert.Equal(t, "Big Ten", first.HomeConference)
	assert.True(t, first.ConferenceGame)
	assert.True(t, first.FBS)
	assert.Equal(t, SourceScraper, first.SourceID)
	assert.Equal(t, "scrape-2025-6-ohio-state-michigan", first.ExternalID)

	second := games[1]
	assert.Equal(t, "Georgia", second.HomeTeam)
	assert.Empty(t, second.HomeConference)
	assert.False(t, second.ConferenceGame)
}

func TestParseGamesHTMLMissingKickoffFallsBack(t *testing.T) {
	c := NewScrapeClient("http://example.test/scoreboard", time.Second, NewTracker(NewMemoryOutcomeStore()))
	fixed := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	html := `<div class="matchup">
		<span class="away-team">Auburn</span>
		<span class="home-team">Georgia</span>
	</div>`

	games, err := c.ParseGamesHTML([]byte(html), 2025, 6)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, fixed, games[0].StartTime, "a row without a kickoff attribute still parses")
}

func TestParseGamesHTMLEmptyPage(t *testing.T) {
	c := NewScrapeClient("http://example.test/scoreboard", time.Second, NewTracker(NewMemoryOutcomeStore()))

	games, err := c.ParseGamesHTML([]byte("<html><body><p>offseason</p></body></html>"), 2025, 1)
	require.NoError(t, err)
	assert.Empty(t, games)
}
