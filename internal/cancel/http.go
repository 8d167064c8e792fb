package cancel

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/marrowgate/ollm/internal/apperr"
)

// combinedContext derives a context that is done when parent is done, when
// the deadline (if any) elapses, or the moment signal fires — whichever
// comes first. Grounded on the "combine client and upstream contexts via a
// goroutine selecting on both" idiom: net/http's context model has no native
// multi-way cancellation, so a watcher goroutine bridges the Signal into it.
func combinedContext(parent context.Context, signal *Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	stop := make(chan struct{})
	go func() {
		select {
		case <-signal.Done():
			cancel()
		case <-ctx.Done():
		case <-stop:
		}
	}()

	return ctx, func() {
		close(stop)
		cancel()
	}
}

// Call issues a backend HTTP request and races three outcomes per spec.md
// §4.2: response headers arriving, the cancel signal firing, or timeout
// elapsing. On transport failure it returns an Internal error.
func Call(parent context.Context, client *http.Client, method, url string, body io.Reader, headers http.Header, signal *Signal, timeout time.Duration) (*http.Response, error) {
	deadlineCtx := parent
	var cancelDeadline context.CancelFunc
	if timeout > 0 {
		deadlineCtx, cancelDeadline = context.WithTimeout(parent, timeout)
		defer cancelDeadline()
	}

	ctx, stop := combinedContext(deadlineCtx, signal)
	defer stop()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, apperr.NewInternal("building backend request: %v", err)
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		if signal.IsTriggered() {
			return nil, apperr.NewCancelled()
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperr.NewInternal("request timeout")
		}
		return nil, apperr.NewInternal("backend request failed: %v", err)
	}
	return resp, nil
}

// ReadAll consumes body to completion, racing the read against signal. On
// cancellation any bytes read so far are discarded and the error is
// apperr.NewCancelled(); the caller remains responsible for closing body.
func ReadAll(body io.Reader, signal *Signal) ([]byte, error) {
	data, err := Race(func() ([]byte, error) {
		return io.ReadAll(body)
	}, signal, 0)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ReadAllWithTimeout is ReadAll with an additional total-duration cap,
// matching request_timeout_seconds for non-streaming backend calls.
func ReadAllWithTimeout(body io.Reader, signal *Signal, timeout time.Duration) ([]byte, error) {
	return Race(func() ([]byte, error) {
		return io.ReadAll(body)
	}, signal, timeout)
}
