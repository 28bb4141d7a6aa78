package todo

import "strings"

// normalizeTerm lowercases the search term, trims it and collapses runs of
// whitespace, returning the resulting tokens (nil for a blank term).
func normalizeTerm(term string) []string {
	return strings.Fields(strings.ToLower(term))
}

// matchesAll reports whether every token occurs in text (case-insensitive
// AND-of-substrings).
func matchesAll(text string, tokens []string) bool {
	lower := strings.ToLower(text)
	for _, tok := range tokens {
		if !strings.Contains(lower, tok) {
			return false
		}
	}
	return true
}
