package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"pickem/engine/internal/metrics"
	"pickem/engine/internal/models"
	"pickem/engine/internal/pickemerr"
	"pickem/engine/internal/repository"
)

// regularSeasonWeeks is how many week rows a season setup creates.
const regularSeasonWeeks = 15

// Manager drives week lifecycle transitions: creation, activation,
// spread locking, and completion. Locking is monotonic during normal
// operation; only an explicit admin UnlockSpreads reverses it.
type Manager struct {
	weeks       *repository.WeekRepository
	seasonYear  int
	seasonStart time.Time
}

func NewManager(weeks *repository.WeekRepository, seasonYear int, seasonStart time.Time) *Manager {
	return &Manager{
		weeks:       weeks,
		seasonYear:  seasonYear,
		seasonStart: seasonStart,
	}
}

// SeasonYear returns the season the manager operates on.
func (m *Manager) SeasonYear() int {
	return m.seasonYear
}

// CurrentWeekNumber maps a wall-clock time to the season's week number.
// Week 1 starts at seasonStart; each week is seven days. Times before
// the season map to week 1 and times past the season to the last week,
// so the pipeline always has a week to work with.
func (m *Manager) CurrentWeekNumber(now time.Time) int {
	if now.Before(m.seasonStart) {
		return 1
	}
	week := int(now.Sub(m.seasonStart)/(7*24*time.Hour)) + 1
	if week > regularSeasonWeeks {
		return regularSeasonWeeks
	}
	return week
}

// weekDeadline is the pick deadline for a week: Saturday noon of the
// week, in seasonStart's location.
func (m *Manager) weekDeadline(weekNumber int) time.Time {
	start := m.seasonStart.AddDate(0, 0, (weekNumber-1)*7)
	daysToSaturday := (int(time.Saturday) - int(start.Weekday()) + 7) % 7
	sat := start.AddDate(0, 0, daysToSaturday)
	return time.Date(sat.Year(), sat.Month(), sat.Day(), 12, 0, 0, 0, sat.Location())
}

// EnsureWeek fetches the week row for (season, weekNumber), creating it
// lazily if the first acquisition for that week arrives before any
// setup ran.
func (m *Manager) EnsureWeek(ctx context.Context, weekNumber int) (*models.Week, error) {
	week, err := m.weeks.GetBySeasonWeek(ctx, m.seasonYear, weekNumber)
	if err == nil {
		return week, nil
	}
	if !errors.Is(err, pickemerr.ErrNotFound) {
		return nil, err
	}

	week = &models.Week{
		WeekNumber: weekNumber,
		SeasonYear: m.seasonYear,
		Deadline:   m.weekDeadline(weekNumber),
		Status:     models.WeekUpcoming,
	}
	if err := m.weeks.Create(ctx, week); err != nil {
		// Lost a create race; the row exists now.
		if existing, getErr := m.weeks.GetBySeasonWeek(ctx, m.seasonYear, weekNumber); getErr == nil {
			return existing, nil
		}
		return nil, err
	}

	log.Info().
		Int("week", weekNumber).
		Int("season", m.seasonYear).
		Time("deadline", week.Deadline).
		Msg("Week created")

	return week, nil
}

// ActivateWeek makes the given week the season's single active week.
func (m *Manager) ActivateWeek(ctx context.Context, weekID int) error {
	return m.weeks.SetActiveExclusive(ctx, weekID)
}

// LockSpreads locks a week's spreads by admin action. Locking an
// already-locked week is a no-op.
func (m *Manager) LockSpreads(ctx context.Context, weekID int) error {
	week, err := m.weeks.GetByID(ctx, weekID)
	if err != nil {
		return err
	}
	if week.SpreadsLocked {
		log.Debug().Int("week_id", weekID).Msg("Spreads already locked")
		return nil
	}
	if err := m.weeks.SetSpreadsLocked(ctx, weekID, true); err != nil {
		return err
	}
	metrics.WeeksLocked.Inc()
	log.Info().Int("week_id", weekID).Msg("Spreads locked by admin")
	return nil
}

// UnlockSpreads is the only path that clears a week's spread lock.
// Nothing calls it automatically.
func (m *Manager) UnlockSpreads(ctx context.Context, weekID int) error {
	if err := m.weeks.SetSpreadsLocked(ctx, weekID, false); err != nil {
		return err
	}
	log.Warn().Int("week_id", weekID).Msg("Spreads unlocked by admin")
	return nil
}

// AutoLockStartedWeeks locks every week with a game whose kickoff has
// passed. Run at the start of acquisition and grading passes so a live
// game can never coexist with a mutable line.
func (m *Manager) AutoLockStartedWeeks(ctx context.Context, now time.Time) error {
	ids, err := m.weeks.LockStartedWeeks(ctx, now)
	if err != nil {
		return fmt.Errorf("auto-lock: %w", err)
	}
	for _, id := range ids {
		metrics.WeeksLocked.Inc()
		log.Info().Int("week_id", id).Msg("Spreads auto-locked at kickoff")
	}
	return nil
}

// CompleteFinishedWeeks marks active weeks completed once all their
// games are final. Returns the completed week IDs.
func (m *Manager) CompleteFinishedWeeks(ctx context.Context) ([]int, error) {
	ids, err := m.weeks.CompleteFinishedWeeks(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		log.Info().Int("week_id", id).Msg("Week completed")
	}
	return ids, nil
}

// SetupSeason creates the season's week rows and activates the week the
// calendar currently falls in. Existing rows are left untouched, so
// re-running setup is safe.
func (m *Manager) SetupSeason(ctx context.Context, now time.Time) error {
	for n := 1; n <= regularSeasonWeeks; n++ {
		if _, err := m.EnsureWeek(ctx, n); err != nil {
			return fmt.Errorf("season setup week %d: %w", n, err)
		}
	}

	current, err := m.weeks.GetBySeasonWeek(ctx, m.seasonYear, m.CurrentWeekNumber(now))
	if err != nil {
		return fmt.Errorf("season setup: %w", err)
	}
	if err := m.weeks.SetActiveExclusive(ctx, current.ID); err != nil {
		return fmt.Errorf("season setup: %w", err)
	}

	log.Info().
		Int("season", m.seasonYear).
		Int("active_week", current.WeekNumber).
		Msg("Season initialized")

	return nil
}
