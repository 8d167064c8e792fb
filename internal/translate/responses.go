package translate

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/marrowgate/ollm/internal/apperr"
)

type backendUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type backendChatChoice struct {
	Message struct {
		Content          string `json:"content"`
		ReasoningContent string `json:"reasoning_content"`
	} `json:"message"`
}

type backendChatResponse struct {
	Choices []backendChatChoice `json:"choices"`
	Usage   backendUsage        `json:"usage"`
}

type backendCompletionChoice struct {
	Text string `json:"text"`
}

type backendCompletionResponse struct {
	Choices []backendCompletionChoice `json:"choices"`
	Usage   backendUsage              `json:"usage"`
}

// MergeReasoning implements spec.md §4.4's reasoning-merge format. If
// reasoning is empty, content is returned unchanged.
func MergeReasoning(content, reasoning string) string {
	if reasoning == "" {
		return content
	}
	return "**Reasoning:**\n" + reasoning + "\n\n**Answer:**\n" + content
}

// BuildChatResponse implements the chat response rewrite of spec.md §4.4:
// extract content (merging reasoning_content if present), emit the Ollama
// chat shape with synthesised timings.
func BuildChatResponse(model string, backendBody []byte, elapsed time.Duration) ([]byte, error) {
	var resp backendChatResponse
	if err := json.Unmarshal(backendBody, &resp); err != nil {
		return nil, apperr.NewInternal("parsing backend response: %v", err)
	}

	var content string
	if len(resp.Choices) > 0 {
		content = MergeReasoning(resp.Choices[0].Message.Content, resp.Choices[0].Message.ReasoningContent)
	}

	promptDuration, evalDuration := splitDuration(elapsed, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	out := map[string]any{
		"model":      withLatestSuffix(model),
		"created_at": isoNow(),
		"message": map[string]any{
			"role":    "assistant",
			"content": content,
		},
		"done":                true,
		"total_duration":      elapsed.Nanoseconds(),
		"load_duration":       0,
		"prompt_eval_count":   resp.Usage.PromptTokens,
		"prompt_eval_duration": promptDuration,
		"eval_count":          resp.Usage.CompletionTokens,
		"eval_duration":       evalDuration,
	}

	return json.Marshal(out)
}

// BuildGenerateResponse is BuildChatResponse's shape for /api/generate: the
// text lands in "response", there is no "message" object.
func BuildGenerateResponse(model string, backendBody []byte, elapsed time.Duration) ([]byte, error) {
	var resp backendCompletionResponse
	if err := json.Unmarshal(backendBody, &resp); err != nil {
		return nil, apperr.NewInternal("parsing backend response: %v", err)
	}

	var text string
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Text
	}

	promptDuration, evalDuration := splitDuration(elapsed, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	out := map[string]any{
		"model":                withLatestSuffix(model),
		"created_at":           isoNow(),
		"response":             text,
		"done":                 true,
		"total_duration":       elapsed.Nanoseconds(),
		"load_duration":        0,
		"prompt_eval_count":    resp.Usage.PromptTokens,
		"prompt_eval_duration": promptDuration,
		"eval_count":           resp.Usage.CompletionTokens,
		"eval_duration":        evalDuration,
	}

	return json.Marshal(out)
}

type backendEmbeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Usage backendUsage `json:"usage"`
}

// BuildEmbedResponse implements the embeddings response rewrite of
// spec.md §4.4.
func BuildEmbedResponse(model string, backendBody []byte, elapsed time.Duration) ([]byte, error) {
	var resp backendEmbeddingsResponse
	if err := json.Unmarshal(backendBody, &resp); err != nil {
		return nil, apperr.NewInternal("parsing backend response: %v", err)
	}

	embeddings := make([][]float64, 0, len(resp.Data))
	for _, d := range resp.Data {
		embeddings = append(embeddings, d.Embedding)
	}

	out := map[string]any{
		"model":             withLatestSuffix(model),
		"embeddings":        embeddings,
		"total_duration":    elapsed.Nanoseconds(),
		"load_duration":     0,
		"prompt_eval_count": resp.Usage.PromptTokens,
	}

	return json.Marshal(out)
}

func withLatestSuffix(model string) string {
	cleaned := apperr.CleanModelName(model)
	if strings.HasSuffix(cleaned, ":latest") {
		return cleaned
	}
	return cleaned + ":latest"
}
