package backend

import "testing"

func TestURLsByMode(t *testing.T) {
	openai := New("http://localhost:1234", ModeOpenAI)
	if got := openai.ModelsURL(); got != "http://localhost:1234/v1/models" {
		t.Errorf("ModelsURL() = %q", got)
	}
	if got := openai.ChatURL(); got != "http://localhost:1234/v1/chat/completions" {
		t.Errorf("ChatURL() = %q", got)
	}
	if got := openai.CompletionsURL(); got != "http://localhost:1234/v1/completions" {
		t.Errorf("CompletionsURL() = %q", got)
	}
	if got := openai.EmbeddingsURL(); got != "http://localhost:1234/v1/embeddings" {
		t.Errorf("EmbeddingsURL() = %q", got)
	}

	native := New("http://localhost:1234", ModeNative)
	if got := native.ModelsURL(); got != "http://localhost:1234/api/v0/models" {
		t.Errorf("ModelsURL() = %q", got)
	}
	if got := native.ChatURL(); got != "http://localhost:1234/api/v0/chat/completions" {
		t.Errorf("ChatURL() = %q", got)
	}
	if got := native.CompletionsURL(); got != "http://localhost:1234/api/v0/completions" {
		t.Errorf("CompletionsURL() = %q", got)
	}
	if got := native.EmbeddingsURL(); got != "http://localhost:1234/api/v0/embeddings" {
		t.Errorf("EmbeddingsURL() = %q", got)
	}
}

func TestNewClientHasTunedTransport(t *testing.T) {
	c := New("http://localhost:1234", ModeOpenAI)
	if c.HTTP == nil || c.HTTP.Transport == nil {
		t.Fatal("expected a non-nil HTTP client with a tuned transport")
	}
}
