// Package apperr holds the proxy's tagged error type and the small pile of
// pure helpers (model-name normalisation, duration formatting, "no model
// loaded" detection) that every other package reaches for.
package apperr

import (
	"fmt"
	"net/http"
	"strings"
	"unicode"
)

// Kind tags a ProxyError with one of the five variants spec.md §3 defines.
type Kind string

const (
	KindBadRequest     Kind = "BadRequest"
	KindNotFound       Kind = "NotFound"
	KindNotImplemented Kind = "NotImplemented"
	KindInternal       Kind = "Internal"
	// KindCancelled is lower-case on the wire (spec.md §4.8's literal
	// example body uses "cancelled"), unlike every other variant.
	KindCancelled Kind = "cancelled"
)

// ProxyError is the tagged error value threaded through the router, retry
// engine and handlers. It always carries an HTTP status and a human message.
type ProxyError struct {
	Kind    Kind
	Message string
	Status  int
}

func (e *ProxyError) Error() string {
	return e.Message
}

func newErr(kind Kind, status int, format string, args ...any) *ProxyError {
	return &ProxyError{Kind: kind, Status: status, Message: fmt.Sprintf(format, args...)}
}

func NewBadRequest(format string, args ...any) *ProxyError {
	return newErr(KindBadRequest, http.StatusBadRequest, format, args...)
}

func NewNotFound(format string, args ...any) *ProxyError {
	return newErr(KindNotFound, http.StatusNotFound, format, args...)
}

func NewNotImplemented(format string, args ...any) *ProxyError {
	return newErr(KindNotImplemented, http.StatusNotImplemented, format, args...)
}

func NewInternal(format string, args ...any) *ProxyError {
	return newErr(KindInternal, http.StatusInternalServerError, format, args...)
}

// NewCancelled produces the error returned by any operation that observes
// the request's CancelSignal firing. Status 499 matches the nginx convention
// for "client closed request"; there is no standard net/http constant for it.
func NewCancelled() *ProxyError {
	return newErr(KindCancelled, 499, "request cancelled")
}

// IsCancelled reports whether err is itself a *ProxyError of KindCancelled;
// a ProxyError wrapped inside another error is not detected.
func IsCancelled(err error) bool {
	pe, ok := err.(*ProxyError)
	return ok && pe.Kind == KindCancelled
}

// AsProxyError unwraps err into a ProxyError, coercing anything else into an
// Internal error so callers never have to type-switch at the boundary.
func AsProxyError(err error) *ProxyError {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*ProxyError); ok {
		return pe
	}
	return NewInternal("%s", err.Error())
}

var noModelsLoadedPatterns = []string{
	"no model",
	"model not loaded",
	"no models loaded",
	"model loading",
	"load a model",
	"model is not loaded",
}

// IsNoModelsLoadedError performs a case-insensitive substring match of msg
// against the fixed "no model loaded" pattern set the retry engine uses to
// decide whether a failure is worth a single automatic retry.
func IsNoModelsLoadedError(msg string) bool {
	lower := strings.ToLower(msg)
	for _, pattern := range noModelsLoadedPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// FormatDuration renders a duration given in nanoseconds the way a human
// reads logs: sub-second durations
// as whole milliseconds, everything else as seconds to two decimal places.
func FormatDuration(nanos int64) string {
	const (
		millisecond = int64(1e6)
		second      = int64(1e9)
	)
	if nanos < second {
		return fmt.Sprintf("%dms", nanos/millisecond)
	}
	return fmt.Sprintf("%.2fs", float64(nanos)/float64(second))
}

// CleanModelName applies the ModelName normalisation rule from spec.md §3:
// strip a trailing ":latest", then if what remains has a trailing ":N" where
// N is all digits, strip that too. Both steps repeat until neither changes
// the name, so the result is a fixed point and a name this already produced
// is returned unchanged.
func CleanModelName(name string) string {
	for {
		cleaned := strings.TrimSuffix(name, ":latest")

		if idx := strings.LastIndexByte(cleaned, ':'); idx != -1 {
			suffix := cleaned[idx+1:]
			if suffix != "" && isAllDigits(suffix) {
				cleaned = cleaned[:idx]
			}
		}
		if cleaned == name {
			return name
		}
		name = cleaned
	}
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

const maxModelNameLength = 256

// ValidateModelName returns whether name is usable and, if not (or merely
// suspicious), a warning describing why. It never rejects outright — callers
// decide whether a warning becomes a BadRequest.
func ValidateModelName(name string) (bool, string) {
	if name == "" {
		return false, "model name is empty"
	}
	if len(name) > maxModelNameLength {
		return false, fmt.Sprintf("model name exceeds %d characters", maxModelNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false, "model name contains control characters"
		}
	}
	return true, ""
}
