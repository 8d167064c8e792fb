package translate

import "testing"

func TestTranslateChatRequest(t *testing.T) {
	body := []byte(`{"model":"qwen:latest","messages":[{"role":"user","content":"hi"}],"stream":false,"options":{"temperature":0.7,"num_predict":128,"top_p":0.9}}`)

	result, err := TranslateChatRequest(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Model != "qwen" {
		t.Errorf("expected cleaned model qwen, got %q", result.Model)
	}
	if result.Backend["temperature"] != 0.7 {
		t.Errorf("expected temperature mapped, got %v", result.Backend["temperature"])
	}
	if result.Backend["max_tokens"] != float64(128) {
		t.Errorf("expected num_predict mapped to max_tokens, got %v", result.Backend["max_tokens"])
	}
	if result.Backend["top_p"] != 0.9 {
		t.Errorf("expected top_p copied through, got %v", result.Backend["top_p"])
	}
	if result.IsStreaming {
		t.Error("expected non-streaming")
	}
}

func TestTranslateChatRequestMissingModel(t *testing.T) {
	_, err := TranslateChatRequest([]byte(`{"messages":[{"role":"user","content":"hi"}]}`))
	if err == nil {
		t.Fatal("expected BadRequest for missing model")
	}
}

func TestTranslateGenerateRequest(t *testing.T) {
	body := []byte(`{"model":"llama3:8","prompt":"hello","stream":true}`)
	result, err := TranslateGenerateRequest(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Model != "llama3" {
		t.Errorf("expected cleaned model llama3, got %q", result.Model)
	}
	if !result.IsStreaming {
		t.Error("expected streaming true")
	}
	if result.Backend["prompt"] != "hello" {
		t.Errorf("expected prompt passed through, got %v", result.Backend["prompt"])
	}
}

func TestTranslateEmbedRequestScalarInput(t *testing.T) {
	body := []byte(`{"model":"nomic-embed-text","input":"hello world"}`)
	result, err := TranslateEmbedRequest(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	values, ok := result.Backend["input"].([]any)
	if !ok || len(values) != 1 || values[0] != "hello world" {
		t.Errorf("expected scalar input normalised to array, got %v", result.Backend["input"])
	}
}

func TestTranslateEmbedRequestPromptFallback(t *testing.T) {
	body := []byte(`{"model":"nomic-embed-text","prompt":["a","b"]}`)
	result, err := TranslateEmbedRequest(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	values, ok := result.Backend["input"].([]any)
	if !ok || len(values) != 2 {
		t.Errorf("expected array input from prompt fallback, got %v", result.Backend["input"])
	}
}
