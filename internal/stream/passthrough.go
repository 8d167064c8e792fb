package stream

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/marrowgate/ollm/internal/apperr"
	"github.com/marrowgate/ollm/internal/cancel"
)

const passthroughChunkSize = 8192

// Passthrough forwards a /v1/* streaming backend body to the client
// unmodified, still racing every body read against signal per spec.md §4.6.
// On cancellation it drops the remainder and returns the cancel error; the
// caller is responsible for closing the body cleanly.
func Passthrough(w io.Writer, body io.Reader, signal *cancel.Signal, chunkTimeout time.Duration) error {
	var flusher http.Flusher
	if f, ok := w.(http.Flusher); ok {
		flusher = f
	}

	buf := make([]byte, passthroughChunkSize)
	for {
		n, err := cancel.Race(func() (int, error) {
			return body.Read(buf)
		}, signal, chunkTimeout)

		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return apperr.NewInternal("writing passthrough chunk: %v", werr)
			}
			if flusher != nil {
				flusher.Flush()
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
