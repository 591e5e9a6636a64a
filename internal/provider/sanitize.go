package provider

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxInputRunes bounds the text sent upstream per request. Longer inputs are
// truncated rather than rejected, which keeps request cost bounded.
const MaxInputRunes = 8000

// SanitizeInput trims the text, rejects empty input, truncates it to
// MaxInputRunes and strips runes outside the printable/whitespace allow-list
// so malformed payloads never reach the remote model.
func SanitizeInput(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", fmt.Errorf("text must not be empty: %w", ErrInvalidInput)
	}

	var sb strings.Builder
	sb.Grow(len(trimmed))

	count := 0
	for _, r := range trimmed {
		if count == MaxInputRunes {
			break
		}
		if !allowedRune(r) {
			continue
		}
		sb.WriteRune(r)
		count++
	}

	result := strings.TrimSpace(sb.String())
	if result == "" {
		return "", fmt.Errorf("text contains no usable characters: %w", ErrInvalidInput)
	}

	return result, nil
}

func allowedRune(r rune) bool {
	if r == '\n' || r == '\t' {
		return true
	}
	if unicode.IsControl(r) {
		return false
	}
	return unicode.IsPrint(r) || unicode.IsSpace(r)
}
