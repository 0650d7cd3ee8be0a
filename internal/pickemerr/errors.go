// Package pickemerr defines the error kinds the engine distinguishes.
// Callers match with errors.Is / errors.As; everything else is wrapped
// context via fmt.Errorf("...: %w", err).
package pickemerr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a referenced week, game, or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSpreadLocked means the owning week's spreads are locked. Distinct
	// from ErrSpreadFromSource: two invariants, two errors.
	ErrSpreadLocked = errors.New("week spreads are locked")

	// ErrSpreadFromSource means the game already carries a spread set by an
	// upstream odds source and it may not be overwritten.
	ErrSpreadFromSource = errors.New("game already has an online spread")

	// ErrSourceSkipped means the health tracker vetoed the source this cycle.
	ErrSourceSkipped = errors.New("source skipped by health tracker")
)

// ConfigError is a missing-credential (or similarly fatal) configuration
// problem for one source. It is surfaced to the operator and must
// short-circuit before any network call; the pipeline still tries the
// remaining sources.
type ConfigError struct {
	Source string
	Detail string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("source %s misconfigured: %s", e.Source, e.Detail)
}

// UpstreamError is a transient network or server failure from one source.
// The orchestrator recovers by falling through to the next source; it is
// never returned to the orchestrator's caller.
type UpstreamError struct {
	Source string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("source %s failed: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsConfig reports whether err is a ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsUpstream reports whether err is an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
