package proxy

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/marrowgate/ollm/internal/apperr"
	"github.com/marrowgate/ollm/internal/cancel"
	"github.com/marrowgate/ollm/internal/logger"
	"github.com/marrowgate/ollm/internal/retry"
	"github.com/marrowgate/ollm/internal/stream"
	"github.com/marrowgate/ollm/internal/translate"
)

// handleTags implements spec.md §4.4's list/tags rewrite: fetch the
// backend's model list and translate it into the Ollama /api/tags shape.
// Grounded on the teacher's handler_proxy.go request-scoped logging idiom.
func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	scope := NewRequestScope(r)
	defer scope.Tracker.Release()
	log := s.log.WithRequestID(scope.RequestID)

	resp, err := cancel.Call(r.Context(), s.backend.HTTP, http.MethodGet, s.backend.ModelsURL(), nil, nil, scope.Signal, s.requestTimeout)
	if err != nil {
		log.ErrorWithEndpoint("tags request failed", s.backend.ModelsURL(), "error", err)
		writeError(w, err)
		return
	}
	defer resp.Body.Close()

	body, err := cancel.ReadAllWithTimeout(resp.Body, scope.Signal, s.requestTimeout)
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := translate.BuildTagsResponse(body)
	if err != nil {
		writeError(w, err)
		return
	}

	scope.Tracker.MarkCompleted()
	writeJSON(w, out)
}

// handleShow implements spec.md §4.4's Show rewrite, fully fabricated from
// the request body with no backend round trip.
func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	scope := NewRequestScope(r)
	defer scope.Tracker.Release()

	body, err := cancel.ReadAllWithTimeout(r.Body, scope.Signal, s.requestTimeout)
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := translate.BuildShowResponse(body)
	if err != nil {
		writeError(w, err)
		return
	}

	scope.Tracker.MarkCompleted()
	writeJSON(w, out)
}

// handleChat implements spec.md §4.4's chat rewrite. Non-streaming requests
// are retried once on "no model loaded" per spec.md §4.5; streaming requests
// hand the backend body straight to a stream.Transcoder.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	scope := NewRequestScope(r)
	defer scope.Tracker.Release()
	log := s.log.WithRequestID(scope.RequestID)

	body, err := cancel.ReadAllWithTimeout(r.Body, scope.Signal, s.requestTimeout)
	if err != nil {
		writeError(w, err)
		return
	}

	req, err := translate.TranslateChatRequest(body)
	if err != nil {
		writeError(w, err)
		return
	}

	if req.IsStreaming {
		s.runStreaming(w, r, scope, log, req.Backend, s.backend.ChatURL(), stream.ModeChat, req.Model)
		return
	}

	s.runNonStreaming(w, r, scope, log, req.Backend, s.backend.ChatURL(), req.Model,
		func(backendBody []byte, elapsed time.Duration) ([]byte, error) {
			return translate.BuildChatResponse(req.Model, backendBody, elapsed)
		})
}

// handleGenerate is handleChat's /api/generate counterpart.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	scope := NewRequestScope(r)
	defer scope.Tracker.Release()
	log := s.log.WithRequestID(scope.RequestID)

	body, err := cancel.ReadAllWithTimeout(r.Body, scope.Signal, s.requestTimeout)
	if err != nil {
		writeError(w, err)
		return
	}

	req, err := translate.TranslateGenerateRequest(body)
	if err != nil {
		writeError(w, err)
		return
	}

	if req.IsStreaming {
		s.runStreaming(w, r, scope, log, req.Backend, s.backend.CompletionsURL(), stream.ModeGenerate, req.Model)
		return
	}

	s.runNonStreaming(w, r, scope, log, req.Backend, s.backend.CompletionsURL(), req.Model,
		func(backendBody []byte, elapsed time.Duration) ([]byte, error) {
			return translate.BuildGenerateResponse(req.Model, backendBody, elapsed)
		})
}

// handleEmbed implements spec.md §4.4's embeddings rewrite, serving both
// /api/embed and the legacy /api/embeddings path.
func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	scope := NewRequestScope(r)
	defer scope.Tracker.Release()
	log := s.log.WithRequestID(scope.RequestID)

	body, err := cancel.ReadAllWithTimeout(r.Body, scope.Signal, s.requestTimeout)
	if err != nil {
		writeError(w, err)
		return
	}

	req, err := translate.TranslateEmbedRequest(body)
	if err != nil {
		writeError(w, err)
		return
	}

	s.runNonStreaming(w, r, scope, log, req.Backend, s.backend.EmbeddingsURL(), req.Model,
		func(backendBody []byte, elapsed time.Duration) ([]byte, error) {
			return translate.BuildEmbedResponse(req.Model, backendBody, elapsed)
		})
}

// runNonStreaming issues the backend call (retrying once on "no model
// loaded" per spec.md §4.5), then hands the raw backend body to build to
// produce the Ollama-shaped response.
func (s *Server) runNonStreaming(
	w http.ResponseWriter, r *http.Request, scope *RequestScope, log *logger.StyledLogger,
	backendReq map[string]any, url, model string,
	build func(backendBody []byte, elapsed time.Duration) ([]byte, error),
) {
	start := time.Now()
	s.maybeResolveModel(r, scope, backendReq, model)

	call := func() ([]byte, error) {
		payload, err := encodeJSON(backendReq)
		if err != nil {
			return nil, err
		}
		resp, err := cancel.Call(r.Context(), s.backend.HTTP, http.MethodPost, url, payload, jsonHeaders(), scope.Signal, s.requestTimeout)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		respBody, err := cancel.ReadAllWithTimeout(resp.Body, scope.Signal, s.requestTimeout)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 400 {
			return nil, apperr.NewInternal("backend returned %d: %s", resp.StatusCode, string(respBody))
		}
		// spec.md §8: a 200 whose body still carries a "no model loaded"
		// message must trigger the same single retry as a non-2xx failure —
		// it must never be handed to build() as if it were a real answer.
		if apperr.IsNoModelsLoadedError(string(respBody)) {
			return nil, apperr.NewInternal("%s", string(respBody))
		}
		return respBody, nil
	}

	probe := func() {
		log.WarnWithRetry("no model loaded, probing backend", model)
		retry.TriggerModelLoading(r.Context(), s.backend.HTTP, s.backend.ModelsURL(), scope.Signal, s.loadTimeout)
	}

	respBody, err := retry.WithRetry(call, scope.Signal, probe, s.loadTimeout)
	if err != nil {
		if apperr.IsCancelled(err) {
			log.InfoCancelled("request cancelled", scope.RequestID)
		} else {
			log.ErrorWithEndpoint("backend call failed", url, "error", err)
		}
		writeError(w, err)
		return
	}

	out, err := build(respBody, time.Since(start))
	if err != nil {
		writeError(w, err)
		return
	}

	scope.Tracker.MarkCompleted()
	writeJSON(w, out)
}

// runStreaming issues the backend streaming call and hands its body to a
// stream.Transcoder, which writes NDJSON chunks to w until a terminator.
func (s *Server) runStreaming(
	w http.ResponseWriter, r *http.Request, scope *RequestScope, log *logger.StyledLogger,
	backendReq map[string]any, url string, mode stream.Mode, model string,
) {
	s.maybeResolveModel(r, scope, backendReq, model)

	call := func() (*http.Response, error) {
		payload, err := encodeJSON(backendReq)
		if err != nil {
			return nil, err
		}
		return cancel.Call(r.Context(), s.backend.HTTP, http.MethodPost, url, payload, jsonHeaders(), scope.Signal, 0)
	}

	probe := func() {
		log.WarnWithRetry("no model loaded, probing backend", model)
		retry.TriggerModelLoading(r.Context(), s.backend.HTTP, s.backend.ModelsURL(), scope.Signal, s.loadTimeout)
	}

	resp, err := retry.WithRetry(call, scope.Signal, probe, s.loadTimeout)
	if err != nil {
		writeError(w, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := cancel.ReadAllWithTimeout(resp.Body, scope.Signal, s.requestTimeout)
		writeError(w, apperr.NewInternal("backend returned %d: %s", resp.StatusCode, string(body)))
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	tc := stream.NewTranscoder(w, model, mode, scope.Signal, s.streamTimeout)
	if err := tc.Run(resp.Body); err != nil {
		log.ErrorWithEndpoint("stream transcoding failed", url, "error", err)
		return
	}
	scope.Tracker.MarkCompleted()
}

// maybeResolveModel implements SPEC_FULL.md §4.13: when alias resolution is
// enabled, it fuzzy-matches the cleaned model name against the backend's
// loaded models and rewrites backendReq's "model" field in place. Any
// failure degrades silently to the unresolved name — this enhancement must
// never turn a working request into a failed one.
func (s *Server) maybeResolveModel(r *http.Request, scope *RequestScope, backendReq map[string]any, model string) {
	if !s.cfg.Proxy.ResolveModelAliases {
		return
	}
	resolved, _ := translate.ResolveModelName(r.Context(), s.backend.HTTP, s.backend.ModelsURL(), model, scope.Signal, s.requestTimeout)
	if resolved != "" {
		backendReq["model"] = resolved
	}
}

func jsonHeaders() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return h
}

func encodeJSON(v map[string]any) (io.Reader, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, apperr.NewInternal("encoding backend request: %v", err)
	}
	return bytes.NewReader(body), nil
}
