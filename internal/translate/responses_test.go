package translate

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBuildChatResponseWithReasoning(t *testing.T) {
	backend := []byte(`{"choices":[{"message":{"content":"hello","reasoning_content":"greeting"}}],"usage":{"prompt_tokens":2,"completion_tokens":1}}`)

	out, err := BuildChatResponse("qwen", backend, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(out, &parsed); err != nil {
		t.Fatalf("invalid JSON produced: %v", err)
	}

	message := parsed["message"].(map[string]any)
	want := "**Reasoning:**\ngreeting\n\n**Answer:**\nhello"
	if message["content"] != want {
		t.Errorf("content = %q, want %q", message["content"], want)
	}
	if parsed["done"] != true {
		t.Error("expected done=true")
	}
	if parsed["prompt_eval_count"] != float64(2) {
		t.Errorf("expected prompt_eval_count=2, got %v", parsed["prompt_eval_count"])
	}
	if parsed["eval_count"] != float64(1) {
		t.Errorf("expected eval_count=1, got %v", parsed["eval_count"])
	}
	if parsed["load_duration"] != float64(0) {
		t.Errorf("expected load_duration=0, got %v", parsed["load_duration"])
	}
}

func TestBuildChatResponseNoReasoning(t *testing.T) {
	backend := []byte(`{"choices":[{"message":{"content":"hi there"}}],"usage":{"prompt_tokens":1,"completion_tokens":2}}`)
	out, err := BuildChatResponse("llama3", backend, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var parsed map[string]any
	_ = json.Unmarshal(out, &parsed)
	message := parsed["message"].(map[string]any)
	if message["content"] != "hi there" {
		t.Errorf("content should be unchanged without reasoning, got %q", message["content"])
	}
}

func TestSplitDurationFallback5050(t *testing.T) {
	p, e := splitDuration(100*time.Millisecond, 0, 0)
	if p != e {
		t.Errorf("expected even split when no token counts, got prompt=%d eval=%d", p, e)
	}
}

func TestBuildGenerateResponse(t *testing.T) {
	backend := []byte(`{"choices":[{"text":"abc"}],"usage":{"prompt_tokens":3,"completion_tokens":3}}`)
	out, err := BuildGenerateResponse("qwen", backend, 60*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var parsed map[string]any
	_ = json.Unmarshal(out, &parsed)
	if parsed["response"] != "abc" {
		t.Errorf("expected response=abc, got %v", parsed["response"])
	}
	if _, hasMessage := parsed["message"]; hasMessage {
		t.Error("generate response must not have a message object")
	}
}

func TestBuildEmbedResponse(t *testing.T) {
	backend := []byte(`{"data":[{"embedding":[0.1,0.2]}],"usage":{"prompt_tokens":4}}`)
	out, err := BuildEmbedResponse("nomic-embed-text", backend, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var parsed map[string]any
	_ = json.Unmarshal(out, &parsed)
	embeddings, ok := parsed["embeddings"].([]any)
	if !ok || len(embeddings) != 1 {
		t.Errorf("expected one embedding vector, got %v", parsed["embeddings"])
	}
}
