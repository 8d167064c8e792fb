package stream

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/marrowgate/ollm/internal/cancel"
)

func TestFrameReaderExtractsFrames(t *testing.T) {
	body := strings.NewReader("data: {\"a\":1}\n\ndata: [DONE]\n\n")
	fr := newFrameReader(body, cancel.NewSignal(), time.Second)

	payload, err := fr.next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload != `{"a":1}` {
		t.Errorf("payload = %q", payload)
	}

	_, err = fr.next()
	if err != ErrStreamDone {
		t.Errorf("expected ErrStreamDone, got %v", err)
	}
}

func TestFrameReaderIgnoresNonDataLines(t *testing.T) {
	body := strings.NewReader("event: ping\nid: 1\n\ndata: {\"a\":1}\n\n")
	fr := newFrameReader(body, cancel.NewSignal(), time.Second)

	payload, err := fr.next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload != `{"a":1}` {
		t.Errorf("expected the data-only frame to be returned, got %q", payload)
	}
}

func TestFrameReaderEOFWithoutDone(t *testing.T) {
	body := strings.NewReader("data: {\"a\":1}\n\n")
	fr := newFrameReader(body, cancel.NewSignal(), time.Second)

	if _, err := fr.next(); err != nil {
		t.Fatalf("unexpected error on first frame: %v", err)
	}
	if _, err := fr.next(); err != io.EOF {
		t.Errorf("expected io.EOF after body exhausted, got %v", err)
	}
}
