package proxy

import (
	"bytes"
	"net/http"

	"github.com/marrowgate/ollm/internal/apperr"
	"github.com/marrowgate/ollm/internal/cancel"
	"github.com/marrowgate/ollm/internal/stream"
)

// handlePassthroughGet builds a handler that relays a GET straight to the
// backend URL urlFn returns and streams the response body back unmodified,
// per spec.md §4.7's "the /v1/* family is forwarded, not translated".
func (s *Server) handlePassthroughGet(urlFn func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope := NewRequestScope(r)
		defer scope.Tracker.Release()

		resp, err := cancel.Call(r.Context(), s.backend.HTTP, http.MethodGet, urlFn(), nil, nil, scope.Signal, s.requestTimeout)
		if err != nil {
			writeError(w, err)
			return
		}
		defer resp.Body.Close()

		s.relay(w, resp, scope)
	}
}

// handlePassthroughPost is handlePassthroughGet's POST counterpart, forwarding
// the client body verbatim and streaming the response back regardless of
// whether the client asked for a streaming completion.
func (s *Server) handlePassthroughPost(urlFn func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope := NewRequestScope(r)
		defer scope.Tracker.Release()

		body, err := cancel.ReadAllWithTimeout(r.Body, scope.Signal, s.requestTimeout)
		if err != nil {
			writeError(w, err)
			return
		}

		headers := make(http.Header)
		if ct := r.Header.Get("Content-Type"); ct != "" {
			headers.Set("Content-Type", ct)
		} else {
			headers.Set("Content-Type", "application/json")
		}

		resp, err := cancel.Call(r.Context(), s.backend.HTTP, http.MethodPost, urlFn(), bytes.NewReader(body), headers, scope.Signal, 0)
		if err != nil {
			writeError(w, err)
			return
		}
		defer resp.Body.Close()

		s.relay(w, resp, scope)
	}
}

func (s *Server) relay(w http.ResponseWriter, resp *http.Response, scope *RequestScope) {
	if resp.StatusCode >= 400 {
		body, _ := cancel.ReadAllWithTimeout(resp.Body, scope.Signal, s.requestTimeout)
		writeError(w, apperr.NewInternal("backend returned %d: %s", resp.StatusCode, string(body)))
		return
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)

	if err := stream.Passthrough(w, resp.Body, scope.Signal, s.streamTimeout); err != nil {
		return
	}
	scope.Tracker.MarkCompleted()
}
