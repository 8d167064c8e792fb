package cancel

import (
	"time"

	"github.com/marrowgate/ollm/internal/apperr"
)

// Race runs op on its own goroutine and resolves to whichever of three
// outcomes happens first: op returning, signal firing, or timeout elapsing
// (timeout <= 0 disables the timeout leg). This is the "small helper" §9 of
// spec.md asks for in languages without a native select-over-futures
// primitive. The goroutine is not killed if it loses the race — Go has no
// mechanism for that — so every op passed here must itself be cancel-aware
// enough to unblock soon after the signal fires (closing the underlying
// connection, cancelling the request context, etc).
func Race[T any](op func() (T, error), signal *Signal, timeout time.Duration) (T, error) {
	type result struct {
		val T
		err error
	}

	resultCh := make(chan result, 1)
	go func() {
		v, err := op()
		resultCh <- result{v, err}
	}()

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case r := <-resultCh:
		return r.val, r.err
	case <-signal.Done():
		var zero T
		return zero, apperr.NewCancelled()
	case <-timeoutCh:
		var zero T
		return zero, apperr.NewInternal("request timeout")
	}
}

// Sleep suspends for d, cancellably. Returns apperr.NewCancelled() if signal
// fires first, nil otherwise.
func Sleep(d time.Duration, signal *Signal) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-signal.Done():
		return apperr.NewCancelled()
	}
}
