package selection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickem/engine/internal/models"
	"pickem/engine/internal/names"
)

func newTestScorer(watchList ...string) *Scorer {
	n := names.NewNormalizer(names.Config{WatchListedTeams: watchList})
	return NewScorer(n, nil, nil)
}

func candidate(home, away string) models.CandidateGame {
	return models.CandidateGame{
		HomeTeam:  home,
		AwayTeam:  away,
		StartTime: time.Date(2025, 10, 4, 19, 30, 0, 0, time.UTC),
		FBS:       true,
	}
}

func TestScoreTiers(t *testing.T) {
	s := newTestScorer()
	rankings := models.RankingSet{
		"georgia":    3,
		"alabama":    4,
		"ohio state": 1,
	}

	tests := []struct {
		name string
		game models.CandidateGame
		want int
	}{
		{
			name: "both ranked",
			game: candidate("Georgia", "Alabama"),
			want: 500,
		},
		{
			name: "one ranked scales with rank",
			game: candidate("Ohio State", "Rutgers"),
			want: 200 + (26 - 1),
		},
		{
			name: "one ranked with popular opponent",
			game: candidate("Ohio State", "Notre Dame Fighting Irish"),
			want: 200 + (26 - 1) + 50,
		},
		{
			name: "both popular unranked",
			game: candidate("Clemson", "Auburn"),
			want: 150,
		},
		{
			name: "one popular unranked",
			game: candidate("Clemson", "Akron"),
			want: 75,
		},
		{
			name: "nobody notable",
			game: candidate("Akron", "Toledo"),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Score(&tt.game, rankings))
		})
	}
}

func TestScoreConferenceBonuses(t *testing.T) {
	s := newTestScorer()

	game := candidate("Akron", "Toledo")
	game.ConferenceGame = true
	assert.Equal(t, 25, s.Score(&game, models.RankingSet{}))

	game.HomeConference = "SEC"
	assert.Equal(t, 50, s.Score(&game, models.RankingSet{}), "conference game in a major conference stacks both bonuses")

	game.ConferenceGame = false
	assert.Equal(t, 25, s.Score(&game, models.RankingSet{}))
}

func TestScoreFavoriteTeamDominates(t *testing.T) {
	s := newTestScorer("Michigan")
	rankings := models.RankingSet{"georgia": 1, "alabama": 2}

	watched := candidate("Michigan", "Rutgers")
	marquee := candidate("Georgia", "Alabama")
	marquee.ConferenceGame = true
	marquee.HomeConference = "SEC"

	watchedScore := s.Score(&watched, rankings)
	marqueeScore := s.Score(&marquee, rankings)

	assert.Greater(t, watchedScore, marqueeScore,
		"a watch-list game must outrank even a maxed-out marquee matchup")
}

func TestIsFavoriteTeamGame(t *testing.T) {
	s := newTestScorer("Michigan")

	home := candidate("Michigan Wolverines", "Rutgers")
	away := candidate("Rutgers", "Michigan")
	neither := candidate("Central Michigan", "Michigan State")

	assert.True(t, s.IsFavoriteTeamGame(&home))
	assert.True(t, s.IsFavoriteTeamGame(&away))
	assert.False(t, s.IsFavoriteTeamGame(&neither))
}

func TestRankCandidates(t *testing.T) {
	s := newTestScorer()
	rankings := models.RankingSet{"georgia": 3, "alabama": 4}

	fcs := candidate("Montana", "Montana State")
	fcs.FBS = false

	candidates := []models.CandidateGame{
		candidate("Akron", "Toledo"),
		fcs,
		candidate("Georgia", "Alabama"),
		candidate("Clemson", "Auburn"),
	}

	ranked := s.RankCandidates(candidates, rankings, 10)
	require.Len(t, ranked, 3, "non-FBS candidates are dropped before scoring")

	assert.Equal(t, "Georgia", ranked[0].HomeTeam)
	assert.Equal(t, "Clemson", ranked[1].HomeTeam)
	assert.Equal(t, "Akron", ranked[2].HomeTeam)
	assert.Equal(t, 500, ranked[0].Score)
}

func TestRankCandidatesLimitAndStability(t *testing.T) {
	s := newTestScorer()

	// Four zero-score games: order in means order out.
	candidates := []models.CandidateGame{
		candidate("Akron", "Toledo"),
		candidate("Kent State", "Buffalo"),
		candidate("Ball State", "Ohio University"),
		candidate("Tulane", "Rice"),
	}

	ranked := s.RankCandidates(candidates, models.RankingSet{}, 3)
	require.Len(t, ranked, 3)
	assert.Equal(t, "Akron", ranked[0].HomeTeam)
	assert.Equal(t, "Kent State", ranked[1].HomeTeam)
	assert.Equal(t, "Ball State", ranked[2].HomeTeam)
}
