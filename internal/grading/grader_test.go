package grading

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickem/engine/internal/lifecycle"
	"pickem/engine/internal/models"
	"pickem/engine/internal/names"
	"pickem/engine/internal/pickemerr"
	"pickem/engine/internal/repository"
	"pickem/engine/internal/sources"
)

type fakeScores struct {
	id     string
	finals []models.FinalScore
	err    error
	calls  int
}

func (f *fakeScores) ID() string { return f.id }

func (f *fakeScores) FetchFinalScores(_ context.Context, _, _ int) ([]models.FinalScore, error) {
	f.calls++
	return f.finals, f.err
}

func TestFetchFinalsHealthTrackerVetoesSource(t *testing.T) {
	ctx := context.Background()
	tracker := sources.NewTracker(sources.NewMemoryOutcomeStore())
	for i := 0; i < 11; i++ {
		tracker.Record(ctx, sources.SourceCFBD, false, -1)
	}

	primary := &fakeScores{id: sources.SourceCFBD, finals: []models.FinalScore{
		{HomeTeam: "A", AwayTeam: "B", Completed: true},
	}}
	secondary := &fakeScores{id: sources.SourceESPN, finals: []models.FinalScore{
		{HomeTeam: "Georgia", AwayTeam: "Auburn", HomeScore: 31, AwayScore: 24, Completed: true},
	}}

	g := NewGrader(nil, nil, names.NewNormalizer(names.Config{}), tracker,
		[]sources.ScoresSource{primary, secondary}, 0)

	finals, err := g.fetchFinals(ctx, 2025, 6)
	require.NoError(t, err)
	require.Len(t, finals, 1)
	assert.Equal(t, "Georgia", finals[0].HomeTeam)
	assert.Equal(t, 0, primary.calls, "a vetoed source is never called this cycle")
	assert.Equal(t, 1, secondary.calls)
}

func TestFetchFinalsAllSourcesVetoed(t *testing.T) {
	ctx := context.Background()
	tracker := sources.NewTracker(sources.NewMemoryOutcomeStore())
	for i := 0; i < 11; i++ {
		tracker.Record(ctx, sources.SourceCFBD, false, -1)
		tracker.Record(ctx, sources.SourceESPN, false, -1)
	}

	primary := &fakeScores{id: sources.SourceCFBD}
	secondary := &fakeScores{id: sources.SourceESPN}

	g := NewGrader(nil, nil, names.NewNormalizer(names.Config{}), tracker,
		[]sources.ScoresSource{primary, secondary}, 0)

	_, err := g.fetchFinals(ctx, 2025, 6)
	assert.ErrorIs(t, err, pickemerr.ErrSourceSkipped)
	assert.Equal(t, 0, primary.calls)
	assert.Equal(t, 0, secondary.calls)
}

func setupTestDB(t *testing.T) (*repository.Database, context.Context) {
	ctx := context.Background()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     "localhost",
		Port:     "5432",
		Database: "pickem_test",
		User:     "pickem_user",
		Password: "pickem_password",
		SSLMode:  "disable",
	})
	require.NoError(t, err, "Failed to connect to test database")

	return db, ctx
}

func TestGradingPassLocksStartedWeeks(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer db.Close()
	const season = 9301
	defer func() {
		_, err := db.Pool.Exec(ctx, `DELETE FROM weeks WHERE season_year = $1`, season)
		require.NoError(t, err)
	}()

	week := &models.Week{
		WeekNumber: 1,
		SeasonYear: season,
		Deadline:   time.Now().Add(72 * time.Hour),
		Status:     models.WeekUpcoming,
	}
	require.NoError(t, db.Weeks.Create(ctx, week))

	// A game that kicked off without acquisition ever running again.
	games := []*models.Game{
		{HomeTeam: "Georgia", AwayTeam: "Auburn", StartTime: time.Now().Add(-2 * time.Hour), Status: models.GameLive},
	}
	require.NoError(t, db.Games.ReplaceWeekGames(ctx, week.ID, games))

	manager := lifecycle.NewManager(db.Weeks, season, time.Now().AddDate(0, 0, -7))
	g := NewGrader(db, manager, names.NewNormalizer(names.Config{}), nil, nil, 0)

	require.NoError(t, g.GradeCompletedGames(ctx))

	got, err := db.Weeks.GetByID(ctx, week.ID)
	require.NoError(t, err)
	assert.True(t, got.SpreadsLocked, "the grading pass locks a week with a started game")

	err = db.Games.SetSpread(ctx, games[0].ID, 3.0, "Georgia")
	assert.ErrorIs(t, err, pickemerr.ErrSpreadLocked,
		"the lock closes the spread-mutation window between kickoff and the next acquisition")
}
