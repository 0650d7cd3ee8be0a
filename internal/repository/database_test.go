package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickem/engine/internal/models"
)

// Integration tests for database operations
// Run with: go test -v ./internal/repository/... against a local test database

func setupTestDB(t *testing.T) (*Database, context.Context) {
	ctx := context.Background()

	cfg := Config{
		Host:     "localhost",
		Port:     "5432",
		Database: "pickem_test",
		User:     "pickem_user",
		Password: "pickem_password",
		SSLMode:  "disable",
	}

	db, err := NewDatabase(ctx, cfg)
	require.NoError(t, err, "Failed to connect to test database")

	return db, ctx
}

func teardownTestDB(t *testing.T, db *Database) {
	db.Close()
}

// cleanSeason removes everything a test created under one season year.
// Games, picks, and weekly scores cascade off the week rows.
func cleanSeason(t *testing.T, db *Database, ctx context.Context, seasonYear int) {
	_, err := db.Pool.Exec(ctx, `DELETE FROM weeks WHERE season_year = $1`, seasonYear)
	require.NoError(t, err)
	_, err = db.Pool.Exec(ctx, `DELETE FROM season_standings WHERE season_year = $1`, seasonYear)
	require.NoError(t, err)
}

// mustCreateWeek inserts a week row for tests.
func mustCreateWeek(t *testing.T, db *Database, ctx context.Context, seasonYear, weekNumber int) *models.Week {
	week := &models.Week{
		WeekNumber: weekNumber,
		SeasonYear: seasonYear,
		Deadline:   time.Now().Add(72 * time.Hour),
		Status:     models.WeekUpcoming,
	}
	require.NoError(t, db.Weeks.Create(ctx, week))
	return week
}

func TestDatabaseConnection(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	err := db.Health(ctx)
	assert.NoError(t, err, "Database health check should pass")

	stats := db.PoolStats()
	assert.NotNil(t, stats, "Should return connection pool stats")
	assert.GreaterOrEqual(t, stats["max_conns"].(int32), int32(1), "Should have at least 1 max connection")
}

func TestDatabasePing(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := db.Pool.Ping(ctx)
	assert.NoError(t, err, "Should successfully ping database")
}
