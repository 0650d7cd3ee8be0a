package selection

import (
	"github.com/rs/zerolog/log"

	"pickem/engine/internal/models"
	"pickem/engine/internal/names"
)

// SelectedGame is a scored candidate with its reconciled betting line.
// Spread is nil when no provider quoted the matchup: "no online line
// yet", which is distinct from an administratively cleared spread.
type SelectedGame struct {
	Candidate    models.CandidateGame
	Spread       *float64
	FavoriteTeam string
	QuoteSource  string
}

// Reconciler matches odds quotes to selected games by normalized team
// pair. Quotes and schedule data may disagree on which side is home, so
// matching is orientation-symmetric.
type Reconciler struct {
	names    *names.Normalizer
	priority []string
}

// NewReconciler builds a Reconciler. priority is the preferred provider
// order; the first matching quote from the highest-priority provider
// wins. Providers not listed rank last, in input order.
func NewReconciler(n *names.Normalizer, priority []string) *Reconciler {
	return &Reconciler{names: n, priority: priority}
}

// Reconcile attaches one spread quote to each game that has a match.
// Games with no matching quote keep a nil spread.
func (r *Reconciler) Reconcile(games []SelectedGame, quotes []models.SpreadQuote) []SelectedGame {
	matched := 0
	for i := range games {
		quote := r.bestQuote(&games[i].Candidate, quotes)
		if quote == nil {
			continue
		}
		line := quote.Line
		games[i].Spread = &line
		games[i].FavoriteTeam = quote.FavoriteTeam
		games[i].QuoteSource = quote.Source
		matched++
	}

	log.Debug().
		Int("games", len(games)).
		Int("quotes", len(quotes)).
		Int("matched", matched).
		Msg("Odds reconciled")

	return games
}

// bestQuote returns the highest-priority quote matching the game, or nil.
func (r *Reconciler) bestQuote(game *models.CandidateGame, quotes []models.SpreadQuote) *models.SpreadQuote {
	var best *models.SpreadQuote
	bestRank := len(r.priority) + 1

	for i := range quotes {
		q := &quotes[i]
		if !r.Matches(game, q) {
			continue
		}
		rank := r.providerRank(q.Source)
		if best == nil || rank < bestRank {
			best = q
			bestRank = rank
		}
	}
	return best
}

// Matches reports whether a quote refers to the same matchup as the game,
// in either home/away orientation.
func (r *Reconciler) Matches(game *models.CandidateGame, quote *models.SpreadQuote) bool {
	straight := r.names.SameTeam(game.HomeTeam, quote.HomeTeam) &&
		r.names.SameTeam(game.AwayTeam, quote.AwayTeam)
	flipped := r.names.SameTeam(game.HomeTeam, quote.AwayTeam) &&
		r.names.SameTeam(game.AwayTeam, quote.HomeTeam)
	return straight || flipped
}

func (r *Reconciler) providerRank(source string) int {
	for i, p := range r.priority {
		if p == source {
			return i
		}
	}
	return len(r.priority)
}
