package cache

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	t.Run("ShortInputKeptWhole", func(t *testing.T) {
		key := Key("summarizeDocument", "The quick brown fox")
		assert.Equal(t, "summarizeDocument:The quick brown fox", key)
	})

	t.Run("Deterministic", func(t *testing.T) {
		a := Key("summarizeDocument", "same input")
		b := Key("summarizeDocument", "same input")
		assert.Equal(t, a, b)
	})

	t.Run("OperationSeparatesKeys", func(t *testing.T) {
		a := Key("summarizeDocument", "input")
		b := Key("generateFlashcards", "input")
		assert.NotEqual(t, a, b)
	})

	t.Run("TruncatesLongInput", func(t *testing.T) {
		input := strings.Repeat("x", 500)
		key := Key("summarizeDocument", input)

		assert.Equal(t, "summarizeDocument:"+strings.Repeat("x", KeyPrefixLen), key)
	})

	t.Run("SharedPrefixCollides", func(t *testing.T) {
		// Inputs identical in their first KeyPrefixLen runes share a key.
		// Accepted approximation, not a bug.
		common := strings.Repeat("a", KeyPrefixLen)
		a := Key("summarizeDocument", common+" first tail")
		b := Key("summarizeDocument", common+" second tail")
		assert.Equal(t, a, b)
	})

	t.Run("TruncationCountsRunes", func(t *testing.T) {
		input := strings.Repeat("日", 300)
		key := Key("summarizeDocument", input)

		got := strings.TrimPrefix(key, "summarizeDocument:")
		assert.Equal(t, KeyPrefixLen, utf8.RuneCountInString(got))
	})
}

func TestEntityKey(t *testing.T) {
	assert.Equal(t, "estimateAssignmentTime:42", EntityKey("estimateAssignmentTime", 42))
	assert.Equal(t, "generateStudyPlan:7", EntityKey("generateStudyPlan", 7))
}
