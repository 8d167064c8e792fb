package translate

import (
	"github.com/tidwall/gjson"

	"github.com/marrowgate/ollm/internal/apperr"
)

// ExtractModelName pulls the "model" field out of a request body with
// gjson, without a full unmarshal, and returns a BadRequest when it is
// missing or empty. The handlers do not call it: their model-name and
// required-field checks happen in the Translate*Request functions.
// Grounded on the teacher's translator.ExtractModelName.
func ExtractModelName(body []byte) (string, error) {
	result := gjson.GetBytes(body, "model")
	if !result.Exists() || result.String() == "" {
		return "", apperr.NewBadRequest("model is required")
	}
	return result.String(), nil
}
