package models

import "time"

// CandidateGame is a matchup offered by an upstream source during one
// acquisition cycle. It is never persisted directly; the top selections
// become Game rows.
type CandidateGame struct {
	ExternalID     string
	HomeTeam       string
	AwayTeam       string
	StartTime      time.Time
	HomeConference string
	AwayConference string
	ConferenceGame bool
	FBS            bool
	SourceID       string

	// Score is the transient selection score assigned by the scorer.
	Score int
}

// RankingSet holds one poll's top-25, keyed by canonical team token.
type RankingSet map[string]int

// Rank returns a team's poll position and whether the team is ranked.
func (rs RankingSet) Rank(canonical string) (int, bool) {
	r, ok := rs[canonical]
	return r, ok
}

// FinalScore is a completed game result reported by an upstream source.
type FinalScore struct {
	ExternalID string
	HomeTeam   string
	AwayTeam   string
	HomeScore  int
	AwayScore  int
	Completed  bool
	SourceID   string
}
