package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/marrowgate/ollm/internal/apperr"
	"github.com/marrowgate/ollm/internal/cancel"
)

func TestWithRetrySucceedsFirstTry(t *testing.T) {
	signal := cancel.NewSignal()
	calls := 0
	probed := false

	v, err := WithRetry(func() (string, error) {
		calls++
		return "ok", nil
	}, signal, func() { probed = true }, time.Millisecond)

	if err != nil || v != "ok" {
		t.Fatalf("unexpected result: %v %v", v, err)
	}
	if calls != 1 {
		t.Errorf("expected exactly one call, got %d", calls)
	}
	if probed {
		t.Error("probe should not fire on first-try success")
	}
}

func TestWithRetryPropagatesNonRetryableError(t *testing.T) {
	signal := cancel.NewSignal()
	probed := false

	_, err := WithRetry(func() (string, error) {
		return "", apperr.NewInternal("connection refused")
	}, signal, func() { probed = true }, time.Millisecond)

	if err == nil {
		t.Fatal("expected an error")
	}
	if probed {
		t.Error("probe must not fire for non-retryable errors")
	}
}

func TestWithRetryRecoversOnNoModelLoaded(t *testing.T) {
	signal := cancel.NewSignal()
	calls := 0
	probed := false

	v, err := WithRetry(func() (string, error) {
		calls++
		if calls == 1 {
			return "", apperr.NewInternal("No model loaded")
		}
		return "recovered", nil
	}, signal, func() { probed = true }, time.Millisecond)

	if err != nil || v != "recovered" {
		t.Fatalf("unexpected result: %v %v", v, err)
	}
	if calls != 2 {
		t.Errorf("expected exactly two calls, got %d", calls)
	}
	if !probed {
		t.Error("probe should fire before the retry")
	}
}

func TestWithRetryReturnsSecondFailureVerbatim(t *testing.T) {
	signal := cancel.NewSignal()
	calls := 0
	secondErr := apperr.NewInternal("still broken")

	_, err := WithRetry(func() (string, error) {
		calls++
		if calls == 1 {
			return "", apperr.NewInternal("no models loaded")
		}
		return "", secondErr
	}, signal, func() {}, time.Millisecond)

	if !errors.Is(err, secondErr) && err != secondErr {
		t.Errorf("expected the second call's own error verbatim, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected exactly two calls (at most one retry), got %d", calls)
	}
}

func TestWithRetryCancelledImmediately(t *testing.T) {
	signal := cancel.NewSignal()
	_, err := WithRetry(func() (string, error) {
		return "", apperr.NewCancelled()
	}, signal, func() { t.Error("probe must not fire when op returns Cancelled") }, time.Millisecond)

	if !apperr.IsCancelled(err) {
		t.Fatalf("expected cancelled error, got %v", err)
	}
}

func TestWithRetryCancelDuringSleep(t *testing.T) {
	signal := cancel.NewSignal()
	calls := 0

	signal.Trigger()
	_, err := WithRetry(func() (string, error) {
		calls++
		return "", apperr.NewInternal("no model loaded")
	}, signal, func() {}, 50*time.Millisecond)

	if !apperr.IsCancelled(err) {
		t.Fatalf("expected cancelled error from the sleep, got %v", err)
	}
	if calls != 1 {
		t.Errorf("op should not be retried once cancelled, got %d calls", calls)
	}
}
