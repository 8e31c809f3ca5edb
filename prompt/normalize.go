package prompt

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

const DefaultMaxLength = 512

// Normalize trims surrounding whitespace and cuts text to at most maxLen
// runes. A non-positive maxLen uses DefaultMaxLength.
func Normalize(text string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}

	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}

	runes := []rune(text)
	slog.Debug("truncating request text", "runes", len(runes), "max", maxLen)
	return string(runes[:maxLen])
}
