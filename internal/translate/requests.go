package translate

import (
	"encoding/json"

	"github.com/marrowgate/ollm/internal/apperr"
)

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ChatMessage   `json:"messages"`
	Stream   *bool           `json:"stream"`
	Options  map[string]any  `json:"options"`
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  *bool          `json:"stream"`
	Options map[string]any `json:"options"`
}

// ChatRequest is the result of translating a client /api/chat body into a
// backend chat-completions body.
type ChatRequest struct {
	Backend     map[string]any
	Model       string
	IsStreaming bool
}

// TranslateChatRequest implements spec.md §4.4's "/api/chat -> backend chat"
// rewrite: copy messages, clean the model name, map options, pass stream.
func TranslateChatRequest(body []byte) (*ChatRequest, error) {
	var req ollamaChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, apperr.NewBadRequest("malformed request body: %v", err)
	}
	if req.Model == "" {
		return nil, apperr.NewBadRequest("model is required")
	}
	if len(req.Messages) == 0 {
		return nil, apperr.NewBadRequest("messages is required")
	}

	cleaned := apperr.CleanModelName(req.Model)
	stream := req.Stream != nil && *req.Stream

	out := map[string]any{
		"model":    cleaned,
		"messages": req.Messages,
		"stream":   stream,
	}
	applyOptions(out, req.Options)

	return &ChatRequest{Backend: out, Model: cleaned, IsStreaming: stream}, nil
}

// GenerateRequest is the result of translating a client /api/generate body
// into a backend completions body.
type GenerateRequest struct {
	Backend     map[string]any
	Model       string
	IsStreaming bool
}

// TranslateGenerateRequest implements spec.md §4.4's "/api/generate ->
// backend completions" rewrite. No prompt template is applied on this path.
func TranslateGenerateRequest(body []byte) (*GenerateRequest, error) {
	var req ollamaGenerateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, apperr.NewBadRequest("malformed request body: %v", err)
	}
	if req.Model == "" {
		return nil, apperr.NewBadRequest("model is required")
	}

	cleaned := apperr.CleanModelName(req.Model)
	stream := req.Stream != nil && *req.Stream

	out := map[string]any{
		"model":  cleaned,
		"prompt": req.Prompt,
		"stream": stream,
	}
	applyOptions(out, req.Options)

	return &GenerateRequest{Backend: out, Model: cleaned, IsStreaming: stream}, nil
}

// EmbedRequest is the result of translating a client /api/embed(dings) body.
type EmbedRequest struct {
	Backend map[string]any
	Model   string
}

// TranslateEmbedRequest implements spec.md §4.4's embeddings rewrite:
// accept input OR prompt, scalar or array, normalised to an array.
func TranslateEmbedRequest(body []byte) (*EmbedRequest, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperr.NewBadRequest("malformed request body: %v", err)
	}

	model, _ := raw["model"].(string)
	if model == "" {
		return nil, apperr.NewBadRequest("model is required")
	}
	cleaned := apperr.CleanModelName(model)

	var values []any
	if v, ok := raw["input"]; ok && v != nil {
		values = normaliseToArray(v)
	} else if v, ok := raw["prompt"]; ok && v != nil {
		values = normaliseToArray(v)
	}
	if len(values) == 0 {
		return nil, apperr.NewBadRequest("input or prompt is required")
	}

	out := map[string]any{
		"model": cleaned,
		"input": values,
	}

	return &EmbedRequest{Backend: out, Model: cleaned}, nil
}
