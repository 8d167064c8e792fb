package proxy

import (
	"context"
	"net/http"
	"time"

	"github.com/marrowgate/ollm/internal/cancel"
	"github.com/marrowgate/ollm/internal/util"
)

// RequestScope is the per-request bundle every handler constructs first: a
// request id for log correlation, and the cancel.Signal/Tracker pair spec.md
// §4.2 describes as the request's RAII connection tracker. Grounded on the
// teacher's handler_proxy.go, which builds an equivalent ports.RequestStats
// bundle at the top of its one proxy handler.
type RequestScope struct {
	RequestID string
	Signal    *cancel.Signal
	Tracker   *cancel.Tracker
	Start     time.Time
}

// NewRequestScope builds a scope for r and starts a goroutine that bridges
// the request context's cancellation — which fires on client disconnect —
// into the returned Signal. Callers must `defer scope.Tracker.Release()`.
func NewRequestScope(r *http.Request) *RequestScope {
	signal := cancel.NewSignal()
	watchDisconnect(r.Context(), signal)

	return &RequestScope{
		RequestID: util.GenerateRequestID(),
		Signal:    signal,
		Tracker:   cancel.NewTracker(signal),
		Start:     time.Now(),
	}
}

func watchDisconnect(ctx context.Context, signal *cancel.Signal) {
	go func() {
		select {
		case <-ctx.Done():
			signal.Trigger()
		case <-signal.Done():
		}
	}()
}
