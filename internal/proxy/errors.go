package proxy

import (
	"encoding/json"
	"net/http"

	"github.com/marrowgate/ollm/internal/apperr"
)

// writeError renders err as the {"error":{"type":...,"message":...}} body
// every scenario in spec.md §8 uses, at the status ProxyError carries.
func writeError(w http.ResponseWriter, err error) {
	pe := apperr.AsProxyError(err)

	body, marshalErr := json.Marshal(map[string]any{
		"error": map[string]any{
			"type":    string(pe.Kind),
			"message": pe.Message,
		},
	})
	if marshalErr != nil {
		http.Error(w, pe.Message, pe.Status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(pe.Status)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}
