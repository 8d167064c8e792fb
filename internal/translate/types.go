// Package translate holds the structural rewrites between the Ollama
// dialect (/api/*) and the OpenAI/LM-Studio dialect (/v1/*): request
// shape conversion, response shape conversion, reasoning-content merging,
// and timing-estimate synthesis. See spec.md §4.4.
package translate

import "time"

// ChatMessage is shared verbatim between both dialects — Ollama and OpenAI
// chat messages have the same {role, content} shape.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// directOptionKeys are options.* keys from an Ollama request that map to an
// identically named field on the backend request, per spec.md §4.4.
var directOptionKeys = []string{
	"top_p", "top_k", "stop", "seed",
	"presence_penalty", "frequency_penalty", "repeat_penalty", "logit_bias",
}

// applyOptions copies options.temperature -> temperature, options.num_predict
// -> max_tokens, and every directOptionKeys entry straight across.
func applyOptions(out map[string]any, options map[string]any) {
	if options == nil {
		return
	}
	if v, ok := options["temperature"]; ok {
		out["temperature"] = v
	}
	if v, ok := options["num_predict"]; ok {
		out["max_tokens"] = v
	}
	for _, key := range directOptionKeys {
		if v, ok := options[key]; ok {
			out[key] = v
		}
	}
}

// normaliseToArray turns a scalar or array value into a []any, per the
// /api/embed "accept input OR prompt (either scalar or array)" rule.
func normaliseToArray(v any) []any {
	if v == nil {
		return nil
	}
	if arr, ok := v.([]any); ok {
		return arr
	}
	return []any{v}
}

// splitDuration divides total proportionally between prompt and eval phases
// weighted by token counts, falling back to an even 50/50 split when no
// counts are available. Matches spec.md §4.4 and §9's timing-synthesis note.
func splitDuration(total time.Duration, promptTokens, evalTokens int) (promptDuration, evalDuration int64) {
	totalNanos := total.Nanoseconds()
	sum := promptTokens + evalTokens
	if sum <= 0 {
		half := totalNanos / 2
		return half, totalNanos - half
	}
	promptDuration = totalNanos * int64(promptTokens) / int64(sum)
	evalDuration = totalNanos - promptDuration
	return promptDuration, evalDuration
}

func isoNow() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
