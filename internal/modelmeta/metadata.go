// Package modelmeta fabricates the family/parameter-size/capability/digest
// metadata the Ollama "tags" and "show" endpoints expect, entirely from
// substring heuristics on the model name. No backend call is ever made for
// any of it — see spec.md §9 "Fabricated metadata".
package modelmeta

import (
	"crypto/md5" //nolint:gosec // fabricated digest, not a security boundary
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"
)

// processStart is the proxy's synthetic "modified at" timestamp: constant
// for the lifetime of the process, per spec.md §4.3.
var processStart = time.Now().UTC()

func ProcessStart() time.Time {
	return processStart
}

type familyPattern struct {
	substr  string
	family  string
	parents []string
}

// familyPatterns is checked in order; the first substring match wins. Distil
// variants are listed before their base architecture so e.g.
// "deepseek-r1-distill-qwen" resolves to family "deepseek" with qwen
// recorded as a parent, rather than matching "qwen" outright.
var familyPatterns = []familyPattern{
	{"deepseek-r1-distill-qwen", "deepseek", []string{"qwen"}},
	{"deepseek-r1-distill-llama", "deepseek", []string{"llama"}},
	{"deepseek", "deepseek", nil},
	{"llama", "llama", nil},
	{"mistral", "mistral", nil},
	{"mixtral", "mistral", nil},
	{"qwen", "qwen", nil},
	{"gemma", "gemma", nil},
	{"phi", "phi", nil},
	{"granite", "granite", nil},
	{"nomic-bert", "nomic-bert", nil},
	{"nomic-embed", "nomic-bert", nil},
}

// DetermineModelFamily returns the model's family and a families list
// (family plus any parent architectures) per spec.md §4.3.
func DetermineModelFamily(name string) (family string, families []string) {
	lower := strings.ToLower(name)
	for _, p := range familyPatterns {
		if strings.Contains(lower, p.substr) {
			families = append([]string{p.family}, p.parents...)
			return p.family, families
		}
	}
	return "other", []string{"other"}
}

// sizePatterns is checked longest-substring-first so "13b" is matched before
// the shorter "3b" pattern it would otherwise also satisfy.
var sizePatterns = []string{"70b", "34b", "27b", "14b", "13b", "8b", "7b", "3b", "1b"}

// DetermineParameterSize returns one of the fixed buckets from spec.md §4.3,
// or "unknown" if nothing matches.
func DetermineParameterSize(name string) string {
	lower := strings.ToLower(name)
	sorted := make([]string, len(sizePatterns))
	copy(sorted, sizePatterns)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	for _, p := range sorted {
		if strings.Contains(lower, p) {
			return strings.ToUpper(p)
		}
	}
	return "unknown"
}

// EstimateModelSize converts a parameter-size bucket ("8B") into a fabricated
// byte count, roughly one byte per parameter — calibrated against spec.md
// §8 scenario 1's worked example (8B -> 8000000000 bytes), not the rougher
// ×10^8 figure in §4.3's prose.
func EstimateModelSize(parameterSize string) int64 {
	digits := strings.TrimSuffix(strings.ToUpper(parameterSize), "B")
	value, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0
	}
	return int64(value * 1e9)
}

// DetermineModelCapabilities returns a heuristic capability subset of
// {chat, completion, embeddings, vision, tools}.
func DetermineModelCapabilities(name string) []string {
	lower := strings.ToLower(name)

	if strings.Contains(lower, "embed") || strings.Contains(lower, "nomic-bert") {
		return []string{"embeddings"}
	}

	caps := []string{"chat", "completion"}

	if strings.Contains(lower, "vision") || strings.Contains(lower, "-vl") || strings.Contains(lower, "llava") {
		caps = append(caps, "vision")
	}

	switch {
	case strings.Contains(lower, "qwen"),
		strings.Contains(lower, "llama3"),
		strings.Contains(lower, "llama-3"),
		strings.Contains(lower, "mistral"),
		strings.Contains(lower, "tool"):
		caps = append(caps, "tools")
	}

	return caps
}

// Digest returns the MD5 hex digest of name, the stable fabricated digest
// spec.md §4.3 requires.
func Digest(name string) string {
	sum := md5.Sum([]byte(name)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}
