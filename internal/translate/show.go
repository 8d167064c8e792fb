package translate

import (
	"encoding/json"
	"fmt"

	"github.com/marrowgate/ollm/internal/apperr"
	"github.com/marrowgate/ollm/internal/modelmeta"
)

type showRequest struct {
	Name string `json:"name"`
}

// modelInfoFor fabricates a family-specific model_info block, grounded on
// the same idea as the architecture-specific blocks the original Rust
// ModelInfo::to_show_response produces for llama/qwen/mistral and a generic
// default otherwise.
func modelInfoFor(family, paramSize string) map[string]any {
	base := map[string]any{
		"general.architecture":    family,
		"general.parameter_count": modelmeta.EstimateModelSize(paramSize),
	}
	switch family {
	case "llama":
		base["llama.context_length"] = 8192
		base["llama.attention.head_count"] = 32
	case "qwen":
		base["qwen2.context_length"] = 32768
		base["qwen2.attention.head_count"] = 28
	case "mistral":
		base["mistral.context_length"] = 32768
		base["mistral.attention.head_count"] = 32
	default:
		base["general.context_length"] = 4096
	}
	return base
}

// BuildShowResponse implements spec.md §4.4's "Show" rewrite: purely
// fabricated from the request body's name, via the modelmeta helpers.
func BuildShowResponse(body []byte) ([]byte, error) {
	var req showRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, apperr.NewBadRequest("malformed request body: %v", err)
	}
	if req.Name == "" {
		return nil, apperr.NewBadRequest("name is required")
	}

	cleaned := apperr.CleanModelName(req.Name)
	family, families := modelmeta.DetermineModelFamily(cleaned)
	paramSize := modelmeta.DetermineParameterSize(cleaned)
	capabilities := modelmeta.DetermineModelCapabilities(cleaned)

	out := map[string]any{
		"modelfile": fmt.Sprintf("# Modelfile generated for %s\nFROM %s\n", cleaned, cleaned),
		"parameters": "num_ctx 4096",
		"template":   "{{ .Prompt }}",
		"details": map[string]any{
			"format":             "gguf",
			"family":             family,
			"families":           families,
			"parameter_size":     paramSize,
			"quantization_level": "Q4_K_M",
		},
		"model_info":   modelInfoFor(family, paramSize),
		"capabilities": capabilities,
	}

	return json.Marshal(out)
}
