package ai

import (
	"unicode"
	"unicode/utf8"
)

// TruncateAtBoundary clamps text to at most max bytes, preferring to cut at a
// sentence end and falling back to a word boundary in the back half. Text at
// or under the limit is returned unchanged.
func TruncateAtBoundary(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	// Never cut mid-rune.
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	cut := text[:max]

	for i := len(cut) - 1; i >= max/2; i-- {
		if cut[i] == '.' || cut[i] == '!' || cut[i] == '?' {
			if i == len(cut)-1 || unicode.IsSpace(rune(cut[i+1])) {
				return cut[:i+1]
			}
		}
	}
	for i := len(cut) - 1; i >= max/2; i-- {
		if unicode.IsSpace(rune(cut[i])) {
			return cut[:i]
		}
	}
	return cut
}
