package util

import (
	"fmt"
	"math/rand"
)

// GenerateRequestID returns a short, human-legible request identifier used to
// correlate a single inbound request across log lines. Not globally unique,
// only unique enough to disambiguate concurrent requests in a log stream.
func GenerateRequestID() string {
	verbs := []string{
		"routing", "translating", "streaming", "retrying", "decoding",
		"relaying", "forwarding", "parsing", "waiting", "cancelling",
		"loading", "rewriting", "dispatching", "draining", "probing",
	}
	nouns := []string{
		"chat", "prompt", "embed", "tags", "chunk",
		"frame", "socket", "delta", "probe", "show",
		"token", "stream", "buffer", "sse", "model",
	}

	verb := verbs[rand.Intn(len(verbs))]
	noun := nouns[rand.Intn(len(nouns))]
	suffix := fmt.Sprintf("%04x", rand.Intn(65536))

	return fmt.Sprintf("%s_%s_%s", verb, noun, suffix)
}
