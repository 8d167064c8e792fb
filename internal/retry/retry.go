// Package retry implements the single-attempt "no model loaded" recovery
// wrapper from spec.md §4.5. The translated Ollama-shaped endpoints
// (/api/chat, /api/generate, /api/embed) wrap their backend calls in it;
// the /v1/* passthrough endpoints do not: a successful backend response is
// relayed as sent, and a backend error status reaches the client as an
// Internal error carrying the backend's status code and body.
package retry

import (
	"context"
	"net/http"
	"time"

	"github.com/marrowgate/ollm/internal/apperr"
	"github.com/marrowgate/ollm/internal/cancel"
)

// Op is a restartable factory for the retried operation — per spec.md §9,
// "express the retried operation as a restartable closure, not a single
// future, since futures cannot be re-awaited".
type Op[T any] func() (T, error)

// WithRetry runs op; if it fails with an error matching
// apperr.IsNoModelsLoadedError, it calls probe, sleeps loadTimeout
// cancellably, and runs op exactly once more, returning that result
// verbatim (success or failure) rather than the original error.
func WithRetry[T any](op Op[T], signal *cancel.Signal, probe func(), loadTimeout time.Duration) (T, error) {
	v, err := op()
	if err == nil {
		return v, nil
	}
	if apperr.IsCancelled(err) {
		return v, err
	}

	pe := apperr.AsProxyError(err)
	if !apperr.IsNoModelsLoadedError(pe.Message) {
		return v, err
	}

	probe()

	if sleepErr := cancel.Sleep(loadTimeout, signal); sleepErr != nil {
		var zero T
		return zero, sleepErr
	}

	return op()
}

// TriggerModelLoading issues a cancellable GET against the backend's
// models-list endpoint and drains the body, caring only whether the probe
// completed — its response, and any error, are discarded.
func TriggerModelLoading(ctx context.Context, client *http.Client, modelsURL string, signal *cancel.Signal, timeout time.Duration) {
	resp, err := cancel.Call(ctx, client, http.MethodGet, modelsURL, nil, nil, signal, timeout)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	_, _ = cancel.ReadAll(resp.Body, signal)
}
