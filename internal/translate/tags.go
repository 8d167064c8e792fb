package translate

import (
	"encoding/json"

	"github.com/marrowgate/ollm/internal/apperr"
	"github.com/marrowgate/ollm/internal/modelmeta"
)

type backendModelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// BuildTagsResponse implements spec.md §4.4's list/tags rewrite: backend
// /v1/models becomes the Ollama /api/tags shape, with every detail field
// fabricated from the model id via modelmeta.
func BuildTagsResponse(backendBody []byte) ([]byte, error) {
	var resp backendModelsResponse
	if err := json.Unmarshal(backendBody, &resp); err != nil {
		return nil, apperr.NewInternal("parsing backend models list: %v", err)
	}

	modifiedAt := modelmeta.ProcessStart().Format("2006-01-02T15:04:05.000000000Z07:00")

	models := make([]map[string]any, 0, len(resp.Data))
	for _, m := range resp.Data {
		name := m.ID + ":latest"
		family, families := modelmeta.DetermineModelFamily(m.ID)
		paramSize := modelmeta.DetermineParameterSize(m.ID)

		models = append(models, map[string]any{
			"name":        name,
			"model":       name,
			"modified_at": modifiedAt,
			"size":        modelmeta.EstimateModelSize(paramSize),
			"digest":      modelmeta.Digest(m.ID),
			"details": map[string]any{
				"format":             "gguf",
				"family":             family,
				"families":           families,
				"parameter_size":     paramSize,
				"quantization_level": "Q4_K_M",
			},
		})
	}

	return json.Marshal(map[string]any{"models": models})
}
