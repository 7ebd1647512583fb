// Package runctx defines the explicit RunContext value threaded through
// every worker in a scheduler run, in place of package-level singletons
// (spec.md §9 Design Notes).
package runctx

import (
	"time"

	"github.com/ridgeline/docxmit/internal/ports"
)

// RunContext carries the shared, read-only dependencies one scheduler run
// needs: the clock, logger, and the run's start time (for computing
// elapsed-time metrics and reconciliation lookback windows).
type RunContext struct {
	Clock     ports.Clock
	Logger    ports.Logger
	StartedAt time.Time
}

// New builds a RunContext starting now, by the given clock.
func New(clock ports.Clock, logger ports.Logger) RunContext {
	return RunContext{Clock: clock, Logger: logger, StartedAt: clock.Now()}
}

// Elapsed returns the duration since the run started.
func (rc RunContext) Elapsed() time.Duration {
	return rc.Clock.Now().Sub(rc.StartedAt)
}

// WithLogger returns a copy of rc with fields attached to its logger, for
// passing a per-contact or per-case scoped RunContext down into a worker.
func (rc RunContext) WithLogger(fields ...any) RunContext {
	rc.Logger = rc.Logger.With(fields...)
	return rc
}
