package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickem/engine/internal/models"
	"pickem/engine/internal/pickemerr"
)

func TestGameRepository_ReplaceWeekGames(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	const season = 9101
	defer cleanSeason(t, db, ctx, season)

	week := mustCreateWeek(t, db, ctx, season, 1)
	kickoff := time.Now().Add(48 * time.Hour)

	first := []*models.Game{
		{HomeTeam: "Georgia", AwayTeam: "Auburn", StartTime: kickoff, Status: models.GameScheduled},
		{HomeTeam: "Michigan", AwayTeam: "Ohio State", StartTime: kickoff, Status: models.GameScheduled,
			Spread:       sql.NullFloat64{Float64: 6.5, Valid: true},
			FavoriteTeam: sql.NullString{String: "Michigan", Valid: true},
			SpreadSource: sql.NullString{String: "draftkings", Valid: true}},
	}
	require.NoError(t, db.Games.ReplaceWeekGames(ctx, week.ID, first))
	assert.NotZero(t, first[0].ID, "inserted rows get their IDs back")

	count, err := db.Games.CountByWeek(ctx, week.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Replacing swaps the whole set; the old rows are gone.
	second := []*models.Game{
		{HomeTeam: "Clemson", AwayTeam: "Florida State", StartTime: kickoff, Status: models.GameScheduled},
	}
	require.NoError(t, db.Games.ReplaceWeekGames(ctx, week.ID, second))

	games, err := db.Games.GetByWeek(ctx, week.ID)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Clemson", games[0].HomeTeam)

	_, err = db.Games.GetByID(ctx, first[0].ID)
	assert.ErrorIs(t, err, pickemerr.ErrNotFound)
}

func TestGameRepository_ReplaceWeekGamesLocked(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	const season = 9102
	defer cleanSeason(t, db, ctx, season)

	week := mustCreateWeek(t, db, ctx, season, 1)
	kickoff := time.Now().Add(48 * time.Hour)

	games := []*models.Game{
		{HomeTeam: "Georgia", AwayTeam: "Auburn", StartTime: kickoff, Status: models.GameScheduled},
	}
	require.NoError(t, db.Games.ReplaceWeekGames(ctx, week.ID, games))
	require.NoError(t, db.Weeks.SetSpreadsLocked(ctx, week.ID, true))

	err := db.Games.ReplaceWeekGames(ctx, week.ID, []*models.Game{
		{HomeTeam: "Clemson", AwayTeam: "Florida State", StartTime: kickoff, Status: models.GameScheduled},
	})
	assert.ErrorIs(t, err, pickemerr.ErrSpreadLocked)

	// The locked week's games are untouched.
	got, err := db.Games.GetByWeek(ctx, week.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Georgia", got[0].HomeTeam)
}

func TestGameRepository_SetSpread(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	const season = 9103
	defer cleanSeason(t, db, ctx, season)

	week := mustCreateWeek(t, db, ctx, season, 1)
	kickoff := time.Now().Add(48 * time.Hour)

	games := []*models.Game{
		{HomeTeam: "Georgia", AwayTeam: "Auburn", StartTime: kickoff, Status: models.GameScheduled},
		{HomeTeam: "Michigan", AwayTeam: "Ohio State", StartTime: kickoff, Status: models.GameScheduled,
			Spread:       sql.NullFloat64{Float64: 6.5, Valid: true},
			FavoriteTeam: sql.NullString{String: "Michigan", Valid: true},
			SpreadSource: sql.NullString{String: "draftkings", Valid: true}},
	}
	require.NoError(t, db.Games.ReplaceWeekGames(ctx, week.ID, games))

	// Admin may set a line where no provider quoted one.
	require.NoError(t, db.Games.SetSpread(ctx, games[0].ID, 3.0, "Georgia"))
	got, err := db.Games.GetByID(ctx, games[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got.Spread.Float64)
	assert.Equal(t, "Georgia", got.FavoriteTeam.String)
	assert.False(t, got.SpreadSource.Valid, "an admin line carries no source")

	// A provider-sourced line is immutable.
	err = db.Games.SetSpread(ctx, games[1].ID, 10.0, "Ohio State")
	assert.ErrorIs(t, err, pickemerr.ErrSpreadFromSource)

	// A locked week rejects even admin lines, with the lock error.
	require.NoError(t, db.Weeks.SetSpreadsLocked(ctx, week.ID, true))
	err = db.Games.SetSpread(ctx, games[0].ID, 4.0, "Georgia")
	assert.ErrorIs(t, err, pickemerr.ErrSpreadLocked)
}

func TestGameRepository_ListScoreableAndUngraded(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)
	const season = 9104
	defer cleanSeason(t, db, ctx, season)

	week := mustCreateWeek(t, db, ctx, season, 1)
	now := time.Now()

	games := []*models.Game{
		// Started, not completed: needs scores.
		{HomeTeam: "Georgia", AwayTeam: "Auburn", StartTime: now.Add(-2 * time.Hour), Status: models.GameLive},
		// Future: nothing to do.
		{HomeTeam: "Clemson", AwayTeam: "Florida State", StartTime: now.Add(48 * time.Hour), Status: models.GameScheduled},
		// Completed with a full line: ready to grade.
		{HomeTeam: "Michigan", AwayTeam: "Ohio State", StartTime: now.Add(-6 * time.Hour), Status: models.GameCompleted,
			Spread:       sql.NullFloat64{Float64: 6.5, Valid: true},
			FavoriteTeam: sql.NullString{String: "Michigan", Valid: true},
			SpreadSource: sql.NullString{String: "draftkings", Valid: true}},
		// Completed but no line: never gradeable.
		{HomeTeam: "Akron", AwayTeam: "Toledo", StartTime: now.Add(-6 * time.Hour), Status: models.GameCompleted},
	}
	require.NoError(t, db.Games.ReplaceWeekGames(ctx, week.ID, games))
	require.NoError(t, db.Games.UpdateScore(ctx, games[2].ID, 31, 24, models.GameCompleted))
	require.NoError(t, db.Games.UpdateScore(ctx, games[3].ID, 21, 14, models.GameCompleted))

	scoreable, err := db.Games.ListScoreable(ctx)
	require.NoError(t, err)
	scoreableIDs := gameIDs(scoreable)
	assert.Contains(t, scoreableIDs, games[0].ID)
	assert.NotContains(t, scoreableIDs, games[1].ID)
	assert.NotContains(t, scoreableIDs, games[2].ID)

	ungraded, err := db.Games.ListCompletedUngraded(ctx)
	require.NoError(t, err)
	ungradedIDs := gameIDs(ungraded)
	assert.Contains(t, ungradedIDs, games[2].ID)
	assert.NotContains(t, ungradedIDs, games[3].ID, "a game without a line is never graded")
}

func gameIDs(games []*models.Game) []int {
	ids := make([]int, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.ID)
	}
	return ids
}
