package apperr

import "testing"

func TestCleanModelNameIdempotent(t *testing.T) {
	cases := []string{
		"llama3:latest",
		"qwen2.5:7",
		"mistral",
		"granite-code:34",
		"phi3:latest:3",
	}
	for _, c := range cases {
		once := CleanModelName(c)
		twice := CleanModelName(once)
		if once != twice {
			t.Errorf("CleanModelName not idempotent for %q: %q != %q", c, once, twice)
		}
	}
}

func TestCleanModelNameRules(t *testing.T) {
	tests := []struct{ in, want string }{
		{"llama3:latest", "llama3"},
		{"qwen2.5:7", "qwen2.5"},
		{"mistral", "mistral"},
		{"deepseek-r1:14b", "deepseek-r1:14b"}, // trailing suffix is not all-digit
		{"granite:0008", "granite"},
	}
	for _, tc := range tests {
		if got := CleanModelName(tc.in); got != tc.want {
			t.Errorf("CleanModelName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsNoModelsLoadedError(t *testing.T) {
	positives := []string{
		"Error: No model loaded in LM Studio",
		"model not loaded",
		"There are no models loaded",
		"Model loading in progress",
		"Please load a model first",
		"The model is not loaded yet",
	}
	for _, p := range positives {
		if !IsNoModelsLoadedError(p) {
			t.Errorf("expected %q to match no-models-loaded patterns", p)
		}
	}

	if IsNoModelsLoadedError("connection refused") {
		t.Error("unrelated message should not match")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		nanos int64
		want  string
	}{
		{450_000_000, "450ms"},
		{1_500_000_000, "1.50s"},
		{0, "0ms"},
	}
	for _, tc := range tests {
		if got := FormatDuration(tc.nanos); got != tc.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tc.nanos, got, tc.want)
		}
	}
}

func TestValidateModelName(t *testing.T) {
	if ok, _ := ValidateModelName(""); ok {
		t.Error("empty name should be invalid")
	}
	if ok, _ := ValidateModelName("llama3:latest"); !ok {
		t.Error("normal model name should validate")
	}
	if ok, _ := ValidateModelName("bad\x00name"); ok {
		t.Error("control characters should be rejected")
	}
}

func TestProxyErrorStatuses(t *testing.T) {
	if NewBadRequest("x").Status != 400 {
		t.Error("BadRequest should map to 400")
	}
	if NewNotFound("x").Status != 404 {
		t.Error("NotFound should map to 404")
	}
	if NewNotImplemented("x").Status != 501 {
		t.Error("NotImplemented should map to 501")
	}
	if NewInternal("x").Status != 500 {
		t.Error("Internal should map to 500")
	}
	if NewCancelled().Status != 499 {
		t.Error("Cancelled should map to 499")
	}
}
