// Package sources contains the upstream adapters and the health tracker
// that gates them.
package sources

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"pickem/engine/internal/metrics"
)

// Health policy constants. The tracker is a circuit breaker driven by
// recent evidence, not a leaky bucket: there is no reset timer, health
// recovers only as new successful calls land in the window.
const (
	healthWindow    = 24 * time.Hour
	minQuota        = 50
	minCallsForRate = 10
	maxFailureRate  = 0.5
	unknownQuota    = -1
)

// Outcome is one recorded upstream call result.
type Outcome struct {
	At      time.Time
	Success bool
	Quota   int // remaining quota reported by the source, or -1
}

// OutcomeStore durably logs call outcomes per source and reads them back
// for the skip decision.
type OutcomeStore interface {
	Append(ctx context.Context, source string, o Outcome) error
	Window(ctx context.Context, source string, since time.Time) ([]Outcome, error)
	LastQuota(ctx context.Context, source string) (int, error)
}

// Tracker decides whether a source should be skipped this cycle based on
// its rolling 24-hour call history.
type Tracker struct {
	store OutcomeStore
	now   func() time.Time
}

// NewTracker builds a Tracker over the given store.
func NewTracker(store OutcomeStore) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// Record logs one call outcome. quota is the source's self-reported
// remaining call budget, or -1 when unknown.
func (t *Tracker) Record(ctx context.Context, source string, success bool, quota int) {
	o := Outcome{At: t.now(), Success: success, Quota: quota}
	if err := t.store.Append(ctx, source, o); err != nil {
		log.Error().Err(err).Str("source", source).Msg("Failed to log source outcome")
	}

	status := "success"
	if !success {
		status = "failure"
	}
	metrics.RecordSourceCall(source, status)
}

// ShouldSkip reports whether the source should be skipped this cycle:
// last known quota below the floor, or at least ten calls in the window
// with a failure rate above one half.
func (t *Tracker) ShouldSkip(ctx context.Context, source string) bool {
	quota, err := t.store.LastQuota(ctx, source)
	if err != nil {
		log.Error().Err(err).Str("source", source).Msg("Failed to read source quota")
	} else if quota != unknownQuota && quota < minQuota {
		log.Warn().Str("source", source).Int("quota", quota).Msg("Skipping source, quota low")
		metrics.RecordSourceSkip(source, "quota")
		return true
	}

	window, err := t.store.Window(ctx, source, t.now().Add(-healthWindow))
	if err != nil {
		log.Error().Err(err).Str("source", source).Msg("Failed to read source history")
		return false
	}
	if len(window) < minCallsForRate {
		return false
	}

	failures := 0
	for _, o := range window {
		if !o.Success {
			failures++
		}
	}
	rate := float64(failures) / float64(len(window))
	if rate > maxFailureRate {
		log.Warn().
			Str("source", source).
			Int("calls", len(window)).
			Float64("failure_rate", rate).
			Msg("Skipping source, failure rate high")
		metrics.RecordSourceSkip(source, "failures")
		return true
	}
	return false
}

// RedisOutcomeStore keeps each source's outcome log in a Redis sorted set
// scored by timestamp, trimmed to the rolling window, plus a quota key.
type RedisOutcomeStore struct {
	client *redis.Client
}

// NewRedisOutcomeStore wraps an existing Redis client.
func NewRedisOutcomeStore(client *redis.Client) *RedisOutcomeStore {
	return &RedisOutcomeStore{client: client}
}

func healthKey(source string) string { return "pickem:srchealth:" + source }
func quotaKey(source string) string  { return "pickem:srcquota:" + source }

// Append logs one outcome and trims entries older than the window.
func (s *RedisOutcomeStore) Append(ctx context.Context, source string, o Outcome) error {
	member := fmt.Sprintf("%d|%t|%d", o.At.UnixNano(), o.Success, o.Quota)
	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, healthKey(source), redis.Z{
		Score:  float64(o.At.Unix()),
		Member: member,
	})
	pipe.ZRemRangeByScore(ctx, healthKey(source),
		"0", strconv.FormatInt(o.At.Add(-healthWindow).Unix(), 10))
	if o.Quota != unknownQuota {
		pipe.Set(ctx, quotaKey(source), o.Quota, healthWindow)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append outcome: %w", err)
	}
	return nil
}

// Window returns outcomes recorded at or after since.
func (s *RedisOutcomeStore) Window(ctx context.Context, source string, since time.Time) ([]Outcome, error) {
	members, err := s.client.ZRangeByScore(ctx, healthKey(source), &redis.ZRangeBy{
		Min: strconv.FormatInt(since.Unix(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read outcome window: %w", err)
	}

	outcomes := make([]Outcome, 0, len(members))
	for _, m := range members {
		o, err := parseOutcome(m)
		if err != nil {
			// A malformed member is dropped rather than poisoning the window.
			log.Warn().Str("source", source).Str("member", m).Msg("Dropping malformed outcome entry")
			continue
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

// LastQuota returns the most recently reported quota, or -1 if none.
func (s *RedisOutcomeStore) LastQuota(ctx context.Context, source string) (int, error) {
	val, err := s.client.Get(ctx, quotaKey(source)).Result()
	if err == redis.Nil {
		return unknownQuota, nil
	}
	if err != nil {
		return unknownQuota, fmt.Errorf("failed to read quota: %w", err)
	}
	quota, err := strconv.Atoi(val)
	if err != nil {
		return unknownQuota, fmt.Errorf("malformed quota value %q: %w", val, err)
	}
	return quota, nil
}

func parseOutcome(member string) (Outcome, error) {
	parts := strings.Split(member, "|")
	if len(parts) != 3 {
		return Outcome{}, fmt.Errorf("malformed outcome member %q", member)
	}
	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Outcome{}, err
	}
	success, err := strconv.ParseBool(parts[1])
	if err != nil {
		return Outcome{}, err
	}
	quota, err := strconv.Atoi(parts[2])
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{At: time.Unix(0, nanos), Success: success, Quota: quota}, nil
}

// MemoryOutcomeStore is an in-process OutcomeStore used when Redis is
// unavailable and in tests. Same semantics, no durability across restarts.
type MemoryOutcomeStore struct {
	mu       sync.Mutex
	outcomes map[string][]Outcome
	quotas   map[string]int
}

// NewMemoryOutcomeStore builds an empty in-memory store.
func NewMemoryOutcomeStore() *MemoryOutcomeStore {
	return &MemoryOutcomeStore{
		outcomes: make(map[string][]Outcome),
		quotas:   make(map[string]int),
	}
}

// Append logs one outcome.
func (s *MemoryOutcomeStore) Append(_ context.Context, source string, o Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes[source] = append(s.outcomes[source], o)
	if o.Quota != unknownQuota {
		s.quotas[source] = o.Quota
	}

	// Trim entries that have aged out of the window.
	cutoff := o.At.Add(-healthWindow)
	kept := s.outcomes[source][:0]
	for _, old := range s.outcomes[source] {
		if !old.At.Before(cutoff) {
			kept = append(kept, old)
		}
	}
	s.outcomes[source] = kept
	return nil
}

// Window returns outcomes recorded at or after since.
func (s *MemoryOutcomeStore) Window(_ context.Context, source string, since time.Time) ([]Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Outcome
	for _, o := range s.outcomes[source] {
		if !o.At.Before(since) {
			out = append(out, o)
		}
	}
	return out, nil
}

// LastQuota returns the most recently reported quota, or -1 if none.
func (s *MemoryOutcomeStore) LastQuota(_ context.Context, source string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q, ok := s.quotas[source]; ok {
		return q, nil
	}
	return unknownQuota, nil
}
