package config

import "testing"

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestValidateRejectsNonPositiveTimeouts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Proxy.LoadTimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero load_timeout_seconds")
	}

	cfg = DefaultConfig()
	cfg.Proxy.RequestTimeoutSeconds = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative request_timeout_seconds")
	}

	cfg = DefaultConfig()
	cfg.Proxy.StreamTimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero stream_timeout_seconds")
	}
}

func TestValidateRejectsEmptyListen(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Listen = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty listen address")
	}
}

func TestValidateRejectsUnknownBackendMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Proxy.BackendMode = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown backend_mode")
	}
}

func TestLoadWithoutFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load("/nonexistent/path/does-not-exist.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Proxy.BackendURL == "" {
		t.Error("expected a default backend URL")
	}
}
