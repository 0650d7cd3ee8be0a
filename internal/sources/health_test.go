package sources

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(now time.Time) (*Tracker, *MemoryOutcomeStore) {
	store := NewMemoryOutcomeStore()
	tr := NewTracker(store)
	tr.now = func() time.Time { return now }
	return tr, store
}

func TestShouldSkipQuotaFloor(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 4, 12, 0, 0, 0, time.UTC)
	tr, _ := newTestTracker(now)

	tr.Record(ctx, SourceCFBD, true, 49)
	assert.True(t, tr.ShouldSkip(ctx, SourceCFBD), "quota below the floor skips the source")

	tr2, _ := newTestTracker(now)
	tr2.Record(ctx, SourceCFBD, true, 50)
	assert.False(t, tr2.ShouldSkip(ctx, SourceCFBD), "quota at the floor is still usable")

	tr3, _ := newTestTracker(now)
	tr3.Record(ctx, SourceCFBD, true, unknownQuota)
	assert.False(t, tr3.ShouldSkip(ctx, SourceCFBD), "unknown quota never skips")
}

func TestShouldSkipFailureRate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 10, 4, 12, 0, 0, 0, time.UTC)

	t.Run("too few calls never skips", func(t *testing.T) {
		tr, _ := newTestTracker(now)
		for i := 0; i < 9; i++ {
			tr.Record(ctx, SourceESPN, false, unknownQuota)
		}
		assert.False(t, tr.ShouldSkip(ctx, SourceESPN), "nine failures are below the evidence threshold")
	})

	t.Run("exactly half failures does not skip", func(t *testing.T) {
		tr, _ := newTestTracker(now)
		for i := 0; i < 5; i++ {
			tr.Record(ctx, SourceESPN, true, unknownQuota)
			tr.Record(ctx, SourceESPN, false, unknownQuota)
		}
		assert.False(t, tr.ShouldSkip(ctx, SourceESPN))
	})

	t.Run("majority failures skips", func(t *testing.T) {
		tr, _ := newTestTracker(now)
		for i := 0; i < 6; i++ {
			tr.Record(ctx, SourceESPN, false, unknownQuota)
		}
		for i := 0; i < 4; i++ {
			tr.Record(ctx, SourceESPN, true, unknownQuota)
		}
		assert.True(t, tr.ShouldSkip(ctx, SourceESPN))
	})
}

func TestShouldSkipWindowRecovery(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 10, 4, 12, 0, 0, 0, time.UTC)

	store := NewMemoryOutcomeStore()
	tr := NewTracker(store)

	// Eleven failures yesterday.
	tr.now = func() time.Time { return base.Add(-25 * time.Hour) }
	for i := 0; i < 11; i++ {
		tr.Record(ctx, SourceScraper, false, unknownQuota)
	}

	// The window has rolled past them; there is no manual reset.
	tr.now = func() time.Time { return base }
	assert.False(t, tr.ShouldSkip(ctx, SourceScraper),
		"failures outside the 24h window no longer count")
}

func TestMemoryOutcomeStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOutcomeStore()
	base := time.Date(2025, 10, 4, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(ctx, SourceCFBD, Outcome{At: base.Add(-2 * time.Hour), Success: true, Quota: 900}))
	require.NoError(t, store.Append(ctx, SourceCFBD, Outcome{At: base, Success: false, Quota: 899}))

	window, err := store.Window(ctx, SourceCFBD, base.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, window, 1, "window excludes outcomes before since")

	quota, err := store.LastQuota(ctx, SourceCFBD)
	require.NoError(t, err)
	assert.Equal(t, 899, quota)

	quota, err = store.LastQuota(ctx, SourceESPN)
	require.NoError(t, err)
	assert.Equal(t, unknownQuota, quota, "a source with no recorded quota reports unknown")
}
