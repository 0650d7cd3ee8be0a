package grading

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickem/engine/internal/models"
	"pickem/engine/internal/names"
)

func TestCoveringTeam(t *testing.T) {
	tests := []struct {
		name     string
		spread   float64
		favScore int
		dogScore int
		want     string
	}{
		{"favorite covers", 6.5, 31, 24, "fav"},
		{"favorite wins but fails to cover", 7.5, 31, 24, "dog"},
		{"favorite loses outright", 3.0, 20, 24, "dog"},
		{"exact margin is a push", 7.0, 31, 24, models.SpreadWinnerPush},
		{"half-point line cannot push", 6.5, 30, 24, "dog"},
		{"tie game favorite never covers", 3.0, 21, 21, "dog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoveringTeam("fav", "dog", tt.spread, tt.favScore, tt.dogScore)
			assert.Equal(t, tt.want, got)
		})
	}
}

func gradeableGame(home, away, favorite string, spread float64, homeScore, awayScore int) *models.Game {
	return &models.Game{
		ID:           1,
		HomeTeam:     home,
		AwayTeam:     away,
		StartTime:    time.Date(2025, 10, 4, 19, 30, 0, 0, time.UTC),
		Status:       models.GameCompleted,
		Spread:       sql.NullFloat64{Float64: spread, Valid: true},
		FavoriteTeam: sql.NullString{String: favorite, Valid: true},
		HomeScore:    sql.NullInt32{Int32: int32(homeScore), Valid: true},
		AwayScore:    sql.NullInt32{Int32: int32(awayScore), Valid: true},
	}
}

func TestSpreadWinnerOrientation(t *testing.T) {
	g := NewGrader(nil, nil, names.NewNormalizer(names.Config{}), nil, nil, 0)

	t.Run("home favorite covers", func(t *testing.T) {
		game := gradeableGame("Georgia", "Auburn", "Georgia", 6.0, 31, 24)
		winner, err := g.spreadWinner(game)
		require.NoError(t, err)
		assert.Equal(t, "Georgia", winner)
	})

	t.Run("away favorite covers", func(t *testing.T) {
		game := gradeableGame("Auburn", "Georgia", "Georgia", 6.0, 24, 31)
		winner, err := g.spreadWinner(game)
		require.NoError(t, err)
		assert.Equal(t, "Georgia", winner)
	})

	t.Run("favorite from odds provider in mascot form", func(t *testing.T) {
		game := gradeableGame("Georgia", "Auburn", "Georgia Bulldogs", 6.0, 31, 24)
		winner, err := g.spreadWinner(game)
		require.NoError(t, err)
		assert.Equal(t, "Georgia", winner, "winner is the stored team name, not the quote's form")
	})

	t.Run("exact spread pushes", func(t *testing.T) {
		game := gradeableGame("Georgia", "Auburn", "Georgia", 7.0, 31, 24)
		winner, err := g.spreadWinner(game)
		require.NoError(t, err)
		assert.Equal(t, models.SpreadWinnerPush, winner)
	})

	t.Run("favorite matching neither side errors", func(t *testing.T) {
		game := gradeableGame("Georgia", "Auburn", "Clemson", 7.0, 31, 24)
		_, err := g.spreadWinner(game)
		assert.Error(t, err)
	})

	t.Run("incomplete game is not gradeable", func(t *testing.T) {
		game := gradeableGame("Georgia", "Auburn", "Georgia", 7.0, 31, 24)
		game.Status = models.GameLive
		_, err := g.spreadWinner(game)
		assert.Error(t, err)
	})
}
