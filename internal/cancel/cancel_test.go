package cancel

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/marrowgate/ollm/internal/apperr"
)

func TestSignalTriggerIdempotent(t *testing.T) {
	s := NewSignal()
	if s.IsTriggered() {
		t.Fatal("fresh signal should not be triggered")
	}
	s.Trigger()
	s.Trigger() // must not panic or block
	if !s.IsTriggered() {
		t.Fatal("signal should report triggered")
	}
}

func TestTrackerReleaseFiresWithoutCompletion(t *testing.T) {
	s := NewSignal()
	tr := NewTracker(s)
	tr.Release()
	if !s.IsTriggered() {
		t.Fatal("release without MarkCompleted should fire the signal")
	}
}

func TestTrackerReleaseNoopWhenCompleted(t *testing.T) {
	s := NewSignal()
	tr := NewTracker(s)
	tr.MarkCompleted()
	tr.Release()
	if s.IsTriggered() {
		t.Fatal("release after MarkCompleted must not fire the signal")
	}
}

func TestRaceReturnsResultWhenFirst(t *testing.T) {
	s := NewSignal()
	v, err := Race(func() (int, error) { return 42, nil }, s, 0)
	if err != nil || v != 42 {
		t.Fatalf("expected (42, nil), got (%d, %v)", v, err)
	}
}

func TestRaceReturnsCancelledWhenSignalFiresFirst(t *testing.T) {
	s := NewSignal()
	block := make(chan struct{})
	defer close(block)

	s.Trigger()
	_, err := Race(func() (int, error) {
		<-block
		return 1, nil
	}, s, 0)

	var pe *apperr.ProxyError
	if !errors.As(err, &pe) || pe.Kind != apperr.KindCancelled {
		t.Fatalf("expected Cancelled error, got %v", err)
	}
}

func TestRaceTimesOut(t *testing.T) {
	s := NewSignal()
	block := make(chan struct{})
	defer close(block)

	_, err := Race(func() (int, error) {
		<-block
		return 1, nil
	}, s, 10*time.Millisecond)

	var pe *apperr.ProxyError
	if !errors.As(err, &pe) || pe.Kind != apperr.KindInternal {
		t.Fatalf("expected Internal timeout error, got %v", err)
	}
}

func TestReadAllCancelled(t *testing.T) {
	s := NewSignal()
	s.Trigger()
	r := bytes.NewReader([]byte("hello"))
	_, err := ReadAll(io.MultiReader(r, blockingReader{}), s)
	if !apperr.IsCancelled(err) {
		t.Fatalf("expected cancelled error, got %v", err)
	}
}

type blockingReader struct{}

func (blockingReader) Read(p []byte) (int, error) {
	select {}
}
