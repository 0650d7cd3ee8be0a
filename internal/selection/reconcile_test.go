package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickem/engine/internal/models"
	"pickem/engine/internal/names"
)

func newTestReconciler(priority ...string) *Reconciler {
	n := names.NewNormalizer(names.Config{})
	return NewReconciler(n, priority)
}

func TestMatchesOrientationSymmetric(t *testing.T) {
	r := newTestReconciler()

	game := candidate("Michigan", "Ohio State")

	straight := models.SpreadQuote{HomeTeam: "Michigan Wolverines", AwayTeam: "Ohio State Buckeyes"}
	flipped := models.SpreadQuote{HomeTeam: "Ohio State Buckeyes", AwayTeam: "Michigan Wolverines"}
	other := models.SpreadQuote{HomeTeam: "Michigan State", AwayTeam: "Ohio State"}

	assert.True(t, r.Matches(&game, &straight))
	assert.True(t, r.Matches(&game, &flipped), "providers disagree on home/away; both orientations must match")
	assert.False(t, r.Matches(&game, &other), "collision-listed names must not cross-match")
}

func TestReconcileAttachesQuotes(t *testing.T) {
	r := newTestReconciler()

	games := []SelectedGame{
		{Candidate: candidate("Georgia", "Alabama")},
		{Candidate: candidate("Akron", "Toledo")},
	}
	quotes := []models.SpreadQuote{
		{HomeTeam: "Georgia Bulldogs", AwayTeam: "Alabama Crimson Tide", FavoriteTeam: "Georgia Bulldogs", Line: 3.5, Source: "draftkings"},
	}

	out := r.Reconcile(games, quotes)
	require.Len(t, out, 2)

	require.NotNil(t, out[0].Spread)
	assert.Equal(t, 3.5, *out[0].Spread)
	assert.Equal(t, "Georgia Bulldogs", out[0].FavoriteTeam)
	assert.Equal(t, "draftkings", out[0].QuoteSource)

	assert.Nil(t, out[1].Spread, "a game no provider quoted keeps a nil spread")
	assert.Empty(t, out[1].QuoteSource)
}

func TestReconcileProviderPriority(t *testing.T) {
	r := newTestReconciler("draftkings", "fanduel")

	games := []SelectedGame{{Candidate: candidate("Georgia", "Alabama")}}
	quotes := []models.SpreadQuote{
		{HomeTeam: "Georgia", AwayTeam: "Alabama", FavoriteTeam: "Georgia", Line: 4.0, Source: "fanduel"},
		{HomeTeam: "Georgia", AwayTeam: "Alabama", FavoriteTeam: "Georgia", Line: 3.5, Source: "draftkings"},
		{HomeTeam: "Georgia", AwayTeam: "Alabama", FavoriteTeam: "Georgia", Line: 5.0, Source: "bovada"},
	}

	out := r.Reconcile(games, quotes)
	require.NotNil(t, out[0].Spread)
	assert.Equal(t, "draftkings", out[0].QuoteSource, "highest-priority provider wins regardless of quote order")
	assert.Equal(t, 3.5, *out[0].Spread)
}

func TestReconcileUnlistedProviderStillUsable(t *testing.T) {
	r := newTestReconciler("draftkings")

	games := []SelectedGame{{Candidate: candidate("Georgia", "Alabama")}}
	quotes := []models.SpreadQuote{
		{HomeTeam: "Georgia", AwayTeam: "Alabama", FavoriteTeam: "Georgia", Line: 6.0, Source: "someblog"},
	}

	out := r.Reconcile(games, quotes)
	require.NotNil(t, out[0].Spread, "an unlisted provider is last priority, not excluded")
	assert.Equal(t, "someblog", out[0].QuoteSource)
}
