// Package cancel implements the cancellation fabric: a one-shot idempotent
// signal, a RAII-style connection tracker, and the race primitives every
// suspension point in the proxy is built on.
package cancel

import "sync"

// Signal is a one-shot, idempotent boolean event observable by any number of
// waiters. The zero value is not usable; construct with NewSignal.
type Signal struct {
	once sync.Once
	done chan struct{}
}

func NewSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Trigger fires the signal. Safe to call multiple times or concurrently;
// only the first call has any effect.
func (s *Signal) Trigger() {
	s.once.Do(func() { close(s.done) })
}

// IsTriggered reports whether Trigger has already run, without blocking.
func (s *Signal) IsTriggered() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed exactly once, the moment Trigger
// runs. Every cancel-aware select in this codebase reads from it.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

// Wait suspends the calling goroutine until the signal fires.
func (s *Signal) Wait() {
	<-s.done
}
