package util

import "testing"

func TestNormaliseBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"empty", "", ""},
		{"trailing slash", "http://localhost:1234/", "http://localhost:1234"},
		{"no trailing slash", "http://localhost:1234", "http://localhost:1234"},
		{"root slash only", "/", "/"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormaliseBaseURL(tc.in); got != tc.expected {
				t.Errorf("NormaliseBaseURL(%q) = %q, expected %q", tc.in, got, tc.expected)
			}
		})
	}
}

func TestIsPortAvailable(t *testing.T) {
	if !IsPortAvailable("127.0.0.1", 0) {
		t.Skip("environment does not allow binding ephemeral ports")
	}
}
