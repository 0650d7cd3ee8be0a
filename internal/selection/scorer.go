// Package selection scores candidate games and attaches betting lines to
// the ones chosen for a week.
package selection

import (
	"sort"
	"strings"

	"pickem/engine/internal/models"
	"pickem/engine/internal/names"
)

// Selection sizes: the top 20 scored candidates are offered to the
// operator, and the top 8 become the week's game set by default.
const (
	AvailableLimit = 20
	GameLimit      = 8
)

// Scoring weights. The tiers are exclusive on the ranked/popular axis and
// sized so a higher tier always outscores a maxed-out lower tier:
// favorite-team games beat everything, both-ranked beats any one-ranked
// total, and so on down.
const (
	weightFavoriteTeam    = 1000
	weightBothRanked      = 500
	weightOneRankedBase   = 200 // + (26 - rank), better rank scores higher
	weightPopularOpponent = 50
	weightBothPopular     = 150
	weightOnePopular      = 75
	weightConferenceGame  = 25
	weightMajorConference = 25
)

// Scorer assigns selection scores to candidate games.
type Scorer struct {
	names      *names.Normalizer
	popular    map[string]struct{}
	majorConfs map[string]struct{}
}

// NewScorer builds a Scorer. Nil slices fall back to the default tables.
func NewScorer(n *names.Normalizer, popularPrograms, majorConferences []string) *Scorer {
	if popularPrograms == nil {
		popularPrograms = names.DefaultPopularPrograms
	}
	if majorConferences == nil {
		majorConferences = names.DefaultMajorConferences
	}
	s := &Scorer{
		names:      n,
		popular:    make(map[string]struct{}, len(popularPrograms)),
		majorConfs: make(map[string]struct{}, len(majorConferences)),
	}
	for _, p := range popularPrograms {
		s.popular[n.Normalize(p)] = struct{}{}
	}
	for _, c := range majorConferences {
		s.majorConfs[strings.ToLower(c)] = struct{}{}
	}
	return s
}

// Score computes the selection score for one candidate against the
// current poll. Deterministic; higher is more interesting.
func (s *Scorer) Score(c *models.CandidateGame, rankings models.RankingSet) int {
	home := s.names.Normalize(c.HomeTeam)
	away := s.names.Normalize(c.AwayTeam)

	score := 0

	if s.names.IsFavoriteTeam(c.HomeTeam) || s.names.IsFavoriteTeam(c.AwayTeam) {
		score += weightFavoriteTeam
	}

	homeRank, homeRanked := rankings.Rank(home)
	awayRank, awayRanked := rankings.Rank(away)
	_, homePopular := s.popular[home]
	_, awayPopular := s.popular[away]

	switch {
	case homeRanked && awayRanked:
		score += weightBothRanked
	case homeRanked:
		score += weightOneRankedBase + (26 - homeRank)
		if awayPopular {
			score += weightPopularOpponent
		}
	case awayRanked:
		score += weightOneRankedBase + (26 - awayRank)
		if homePopular {
			score += weightPopularOpponent
		}
	case homePopular && awayPopular:
		score += weightBothPopular
	case homePopular || awayPopular:
		score += weightOnePopular
	}

	if c.ConferenceGame {
		score += weightConferenceGame
	}
	if s.inMajorConference(c.HomeConference) || s.inMajorConference(c.AwayConference) {
		score += weightMajorConference
	}

	return score
}

func (s *Scorer) inMajorConference(conference string) bool {
	_, ok := s.majorConfs[strings.ToLower(conference)]
	return ok
}

// IsFavoriteTeamGame reports whether either side is on the watch list.
func (s *Scorer) IsFavoriteTeamGame(c *models.CandidateGame) bool {
	return s.names.IsFavoriteTeam(c.HomeTeam) || s.names.IsFavoriteTeam(c.AwayTeam)
}

// RankCandidates filters to FBS, scores every candidate, and returns up
// to limit of them ordered by descending score. Equal scores keep their
// input order.
func (s *Scorer) RankCandidates(candidates []models.CandidateGame, rankings models.RankingSet, limit int) []models.CandidateGame {
	scored := make([]models.CandidateGame, 0, len(candidates))
	for _, c := range candidates {
		if !c.FBS {
			continue
		}
		c.Score = s.Score(&c, rankings)
		scored = append(scored, c)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
