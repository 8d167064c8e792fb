package cancel

import "sync/atomic"

// Tracker is the Go stand-in for the RAII connection tracker spec.md §4.2
// describes: since Go has no destructors, callers must `defer tracker.Release()`
// immediately after construction. Release fires the bound Signal unless
// MarkCompleted was called first — mirroring "destruction without prior
// completion triggers cancellation".
type Tracker struct {
	signal    *Signal
	completed atomic.Bool
}

// NewTracker binds a tracker to signal. Every handler owns exactly one.
func NewTracker(signal *Signal) *Tracker {
	return &Tracker{signal: signal}
}

// MarkCompleted records that the request reached a normal success path.
// Idempotent; safe to call more than once.
func (t *Tracker) MarkCompleted() {
	t.completed.Store(true)
}

// Completed reports whether MarkCompleted has been called.
func (t *Tracker) Completed() bool {
	return t.completed.Load()
}

// Release must be deferred by the caller right after construction. If the
// request was never marked completed, it fires the cancel signal; otherwise
// it is a no-op. Idempotent, matching Signal.Trigger's idempotence.
func (t *Tracker) Release() {
	if !t.completed.Load() {
		t.signal.Trigger()
	}
}
