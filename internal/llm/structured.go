package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidateJSON strips an optional markdown code fence from raw and checks that
// what remains is a single well-formed JSON value. It returns the cleaned text.
func ValidateJSON(raw string) (string, error) {
	cleaned := strings.TrimSpace(stripCodeFence(raw))
	if cleaned == "" {
		return "", fmt.Errorf("%w: empty response", ErrInvalidOutput)
	}
	if !json.Valid([]byte(cleaned)) {
		return "", fmt.Errorf("%w: response is not valid JSON", ErrInvalidOutput)
	}
	return cleaned, nil
}

// stripCodeFence removes a surrounding ```json ... ``` block, if the whole
// text is one. Text outside a fence is left alone.
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") || !strings.HasSuffix(t, "```") || len(t) < 6 {
		return s
	}
	t = strings.TrimSuffix(t[3:], "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		lang := strings.TrimSpace(t[:nl])
		if lang == "" || !strings.ContainsAny(lang, "{[") {
			t = t[nl+1:]
		}
	}
	return t
}
