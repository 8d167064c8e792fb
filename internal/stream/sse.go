// Package stream implements the streaming transcoder: an incremental SSE
// frame parser plus the chat/generate NDJSON chunk rewriter and its
// final/error/cancel terminators. See spec.md §4.6.
package stream

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/marrowgate/ollm/internal/cancel"
	"github.com/marrowgate/ollm/pkg/pool"
)

// ErrStreamDone is returned by frameReader.next once the backend sends the
// literal "[DONE]" sentinel frame.
var ErrStreamDone = errors.New("stream done")

const frameReadChunkSize = 4096

// chunkBufPool recycles the fixed-size read buffers every frameReader uses,
// since a busy proxy constructs one per streaming request.
var chunkBufPool, _ = pool.NewLitePool(func() *[]byte {
	b := make([]byte, frameReadChunkSize)
	return &b
})

// frameReader implements spec.md §9's "SSE parser state" design note: keep a
// bytes buffer and a split index; after each read, scan for \n\n, slice,
// process, shift. It never relies on a line-at-a-time I/O abstraction, since
// those may not honour cancellation mid-read.
type frameReader struct {
	body    io.Reader
	buf     []byte
	signal  *cancel.Signal
	timeout time.Duration
	eof     bool
}

func newFrameReader(body io.Reader, signal *cancel.Signal, timeout time.Duration) *frameReader {
	return &frameReader{body: body, signal: signal, timeout: timeout}
}

// next returns the payload of the next "data: " frame, or ErrStreamDone on
// [DONE], or a cancel/timeout/transport error. Per spec.md §4.6, frames with
// no data lines (ignorable id:/event:/comment-only frames) are skipped.
func (fr *frameReader) next() (string, error) {
	for {
		if payload, ok := fr.extractFrame(); ok {
			if payload == "[DONE]" {
				return "", ErrStreamDone
			}
			if payload == "" {
				continue
			}
			return payload, nil
		}

		if fr.eof {
			return "", io.EOF
		}

		// The read runs on its own goroutine inside cancel.Race and is not
		// killed if it loses the race against the signal or timeout, so the
		// pooled buffer must not be recycled until this goroutine is done
		// with it. Get/copy/Put all happen inside the raced closure itself,
		// after Read has actually returned, never in this outer loop — that
		// way a buffer is never back in the pool while an abandoned Read is
		// still writing into it.
		data, err := cancel.Race(func() ([]byte, error) {
			tmpPtr := chunkBufPool.Get()
			defer chunkBufPool.Put(tmpPtr)
			tmp := *tmpPtr
			n, err := fr.body.Read(tmp)
			return append([]byte(nil), tmp[:n]...), err
		}, fr.signal, fr.timeout)

		if len(data) > 0 {
			fr.buf = append(fr.buf, data...)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				fr.eof = true
				continue
			}
			return "", err
		}
	}
}

// extractFrame slices the next \n\n-delimited frame off the front of the
// buffer, if one is fully present, and parses out its "data: " payload
// (joining multiple data lines the way SSE allows, per the glossary).
func (fr *frameReader) extractFrame() (string, bool) {
	idx := bytes.Index(fr.buf, []byte("\n\n"))
	if idx == -1 {
		if fr.eof && len(fr.buf) > 0 {
			frame := string(fr.buf)
			fr.buf = nil
			return parseDataLines(frame), true
		}
		return "", false
	}

	frame := string(fr.buf[:idx])
	fr.buf = fr.buf[idx+2:]
	return parseDataLines(frame), true
}

func parseDataLines(frame string) string {
	lines := strings.Split(frame, "\n")
	var data []string
	for _, line := range lines {
		if strings.HasPrefix(line, "data:") {
			payload := strings.TrimPrefix(line, "data:")
			payload = strings.TrimPrefix(payload, " ")
			data = append(data, payload)
		}
		// id:, event:, and comment lines (starting with ':') are ignored.
	}
	return strings.Join(data, "\n")
}
