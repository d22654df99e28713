package words

import "strings"

// Count returns the number of whitespace-delimited tokens in s.
// PRE: none
// POST: Returns 0 for an empty or all-whitespace string
func Count(s string) int {
	return len(strings.Fields(strings.TrimSpace(s)))
}

// Exceeds reports whether s has more than limit words.
// A limit <= 0 disables the check.
func Exceeds(s string, limit int) bool {
	if limit <= 0 {
		return false
	}
	return Count(s) > limit
}
