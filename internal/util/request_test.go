package util

import "testing"

func TestGenerateRequestID(t *testing.T) {
	id1 := GenerateRequestID()
	id2 := GenerateRequestID()

	if id1 == id2 {
		t.Error("generated IDs should be unique with overwhelming probability")
	}

	if len(id1) < 10 {
		t.Errorf("generated ID seems too short: %s", id1)
	}
}
