// Package proxy wires the fixed router dispatch table spec.md §6 defines
// onto http.HandlerFunc handlers that translate, fabricate, or pass through
// each request to the configured backend, per spec.md §4.4-§4.7.
package proxy

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/marrowgate/ollm/internal/apperr"
	"github.com/marrowgate/ollm/internal/backend"
	"github.com/marrowgate/ollm/internal/config"
	"github.com/marrowgate/ollm/internal/logger"
	"github.com/marrowgate/ollm/internal/version"
)

// Server holds everything a handler needs: the backend client, timeouts,
// and a request-scoped logger factory. Grounded on the teacher's
// app.Application, trimmed to the single-backend shape this proxy has.
type Server struct {
	cfg     *config.Config
	backend *backend.Client
	log     *logger.StyledLogger

	loadTimeout    time.Duration
	requestTimeout time.Duration
	streamTimeout  time.Duration
}

func New(cfg *config.Config, backendClient *backend.Client, log *logger.StyledLogger) *Server {
	return &Server{
		cfg:            cfg,
		backend:        backendClient,
		log:            log,
		loadTimeout:    durationSeconds(cfg.Proxy.LoadTimeoutSeconds),
		requestTimeout: durationSeconds(cfg.Proxy.RequestTimeoutSeconds),
		streamTimeout:  durationSeconds(cfg.Proxy.StreamTimeoutSeconds),
	}
}

func durationSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Handler builds the full mux, registering every route named in spec.md §6
// and logging the route table the way the teacher's RouteRegistry does.
func (s *Server) Handler() http.Handler {
	reg := newRouteRegistry(s.log)

	reg.register(http.MethodGet, "/api/tags", s.handleTags, "list available models")
	reg.register(http.MethodGet, "/api/ps", s.handlePS, "list running models (always empty)")
	reg.register(http.MethodGet, "/api/version", s.handleVersion, "report proxy version")
	reg.register(http.MethodPost, "/api/show", s.handleShow, "fabricated model details")
	reg.register(http.MethodPost, "/api/chat", s.handleChat, "translated chat completion")
	reg.register(http.MethodPost, "/api/generate", s.handleGenerate, "translated text completion")
	reg.register(http.MethodPost, "/api/embed", s.handleEmbed, "translated embeddings")
	reg.register(http.MethodPost, "/api/embeddings", s.handleEmbed, "translated embeddings (legacy path)")

	for _, path := range []string{"/api/create", "/api/pull", "/api/push", "/api/delete", "/api/copy"} {
		reg.register(http.MethodPost, path, s.handleNotImplemented, "unsupported Ollama management endpoint")
	}

	reg.register(http.MethodGet, "/v1/models", s.handlePassthroughGet(s.backend.ModelsURL), "passthrough model list")
	reg.register(http.MethodPost, "/v1/chat/completions", s.handlePassthroughPost(s.backend.ChatURL), "passthrough chat completion")
	reg.register(http.MethodPost, "/v1/completions", s.handlePassthroughPost(s.backend.CompletionsURL), "passthrough text completion")
	reg.register(http.MethodPost, "/v1/embeddings", s.handlePassthroughPost(s.backend.EmbeddingsURL), "passthrough embeddings")

	mux := http.NewServeMux()
	reg.wireUp(mux)
	mux.HandleFunc("/", s.handleNotFound)

	return mux
}

func (s *Server) handlePS(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, []byte(`{"models":[]}`))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	body, _ := json.Marshal(map[string]string{"version": version.Version})
	writeJSON(w, body)
}

func (s *Server) handleNotImplemented(w http.ResponseWriter, r *http.Request) {
	writeError(w, apperr.NewNotImplemented("%s is not supported by this proxy", r.URL.Path))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, apperr.NewNotFound("no route for %s %s", r.Method, r.URL.Path))
}
