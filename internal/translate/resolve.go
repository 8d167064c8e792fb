package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/marrowgate/ollm/internal/cancel"
)

var tokenSplitter = regexp.MustCompile(`[^a-z0-9]+`)

func tokenSet(s string) map[string]struct{} {
	tokens := tokenSplitter.Split(strings.ToLower(s), -1)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

func sharedTokenScore(a, b map[string]struct{}) int {
	score := 0
	for t := range a {
		if _, ok := b[t]; ok {
			score++
		}
	}
	return score
}

// ResolveModelName is the supplemented feature from SPEC_FULL.md §4.13: it
// fuzzy-matches cleaned against the backend's actually-loaded model ids
// before falling back to cleaned verbatim. Grounded on the Rust
// ModelResolver's token-overlap scoring (original_source/src/model.rs).
func ResolveModelName(ctx context.Context, client *http.Client, modelsURL, cleaned string, signal *cancel.Signal, timeout time.Duration) (string, error) {
	resp, err := cancel.Call(ctx, client, http.MethodGet, modelsURL, nil, nil, signal, timeout)
	if err != nil {
		return cleaned, nil
	}
	defer resp.Body.Close()

	body, err := cancel.ReadAll(resp.Body, signal)
	if err != nil {
		return cleaned, nil
	}

	var parsed backendModelsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return cleaned, nil
	}

	wanted := tokenSet(cleaned)
	best := ""
	bestScore := 0
	for _, m := range parsed.Data {
		score := sharedTokenScore(wanted, tokenSet(m.ID))
		if score > bestScore {
			bestScore = score
			best = m.ID
		}
	}

	if bestScore >= 2 {
		return best, nil
	}
	return cleaned, nil
}
