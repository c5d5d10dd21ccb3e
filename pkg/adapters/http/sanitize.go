package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize is 4KB (conservative default)
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize is the environment variable to override the default
	EnvMaxInputSize = "VIGIL_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// decodeBody reads a JSON request body within the size limit and strips control characters
// from every string it contains.
func decodeBody[T any](r *http.Request) (T, error) {
	var v T
	limit := getMaxInputSize()
	body, err := io.ReadAll(io.LimitReader(r.Body, int64(limit)+1))
	if err != nil {
		return v, err
	}
	if len(body) > limit {
		// Rejected rather than truncated so a partial value is never written.
		return v, fmt.Errorf("%w: limit=%d", ErrInputTooLarge, limit)
	}
	if !utf8.Valid(body) {
		return v, ErrInvalidUTF8
	}
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return v, err
	}
	if raw == nil {
		return v, nil
	}
	clean, ok := SanitizeValue(raw).(T)
	if !ok {
		return v, fmt.Errorf("unexpected JSON %T", raw)
	}
	return clean, nil
}

// SanitizeValue returns v with control characters removed from every string, recursing into
// JSON arrays and objects.
func SanitizeValue(v any) any {
	switch val := v.(type) {
	case string:
		return SanitizeString(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = SanitizeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[SanitizeString(k)] = SanitizeValue(item)
		}
		return out
	default:
		return v
	}
}

// SanitizeString strips control characters except newline, tab and carriage return.
// This prevents log poisoning and terminal corruption.
func SanitizeString(input string) string {
	// Fast path: if no control chars, return as is.
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func getMaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}

func bodyStatus(err error) int {
	if errors.Is(err, ErrInputTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
