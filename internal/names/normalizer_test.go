package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer(Config{})

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"mascot stripped", "Michigan Wolverines", "michigan"},
		{"multi-word mascot stripped", "Alabama Crimson Tide", "alabama"},
		{"whitespace collapsed", "  Ohio   State  Buckeyes ", "ohio state"},
		{"alias resolved", "Ole Miss", "mississippi"},
		{"alias resolved after mascot strip", "Mississippi Rebels", "mississippi"},
		{"short form alias", "Pitt", "pittsburgh"},
		{"abbreviation alias", "LSU", "louisiana state"},
		{"plain name unchanged", "Toledo", "toledo"},
		{"all-mascot name kept", "Tigers", "tigers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.raw))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer(Config{})

	inputs := []string{
		"Michigan Wolverines", "Ole Miss", "Pitt", "Ohio State Buckeyes",
		"LSU", "Miami (FL)", "NC State", "Georgia Bulldogs", "Toledo",
	}
	for _, raw := range inputs {
		once := n.Normalize(raw)
		assert.Equal(t, once, n.Normalize(once), "normalize must be a fixed point for %q", raw)
	}
}

func TestSameTeam(t *testing.T) {
	n := NewNormalizer(Config{})

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", "Georgia", "Georgia", true},
		{"mascot form", "Michigan", "Michigan Wolverines", true},
		{"alias both sides", "Ole Miss", "Mississippi Rebels", true},
		{"prefix of first word", "Pittsburgh", "Pittsburgh Panthers", true},
		{"orientation of prefix rule", "Wisconsin Badgers", "Wisconsin", true},
		{"fuzzy prefix across forms", "Clemson", "Clemson University", true},
		{"different teams", "Georgia", "Auburn", false},
		{"collision guard", "Michigan", "Central Michigan", false},
		{"collision guard state school", "Michigan", "Michigan State", false},
		{"collision guard miami", "Miami", "Miami (OH)", false},
		{"miami fl forms match", "Miami", "Miami (FL)", true},
		{"short token never fuzzy", "Io", "Iowa", false},
		{"empty never matches", "", "Georgia", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.SameTeam(tt.a, tt.b))
			assert.Equal(t, tt.want, n.SameTeam(tt.b, tt.a), "SameTeam must be symmetric")
		})
	}
}

func TestIsFavoriteTeam(t *testing.T) {
	n := NewNormalizer(Config{WatchListedTeams: []string{"Michigan"}})

	assert.True(t, n.IsFavoriteTeam("Michigan"))
	assert.True(t, n.IsFavoriteTeam("Michigan Wolverines"))
	assert.False(t, n.IsFavoriteTeam("Central Michigan"), "watch list match is exact canonical only")
	assert.False(t, n.IsFavoriteTeam("Michigan State"))
	assert.False(t, n.IsFavoriteTeam("Ohio State"))

	assert.Equal(t, 1, n.WatchListSize())
}

func TestWatchListEntriesNormalized(t *testing.T) {
	// Watch list entries pass through aliases so quotes and schedules
	// land on the same canonical token.
	n := NewNormalizer(Config{WatchListedTeams: []string{"Ole Miss"}})
	assert.True(t, n.IsFavoriteTeam("Mississippi Rebels"))
}
