package address

import (
	"regexp"
	"strings"
)

// everything outside [A-Za-z0-9_] separates tokens
var nonWord = regexp.MustCompile(`\W+`)

var rePostcode = regexp.MustCompile(`^\d{4}$`)

// Tokenize lowercases s, turns every non-word character into a separator and
// drops empty tokens. Input and candidate text go through the same function.
func Tokenize(s string) []string {
	s = nonWord.ReplaceAllString(strings.ToLower(s), " ")
	return strings.Fields(s)
}

// tokenSet is the deduplicated form used on the candidate side.
func tokenSet(tokens []string) map[string]struct{} {
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// postcodeToken returns the first 4-digit token (AU postcode).
func postcodeToken(tokens []string) (string, bool) {
	for _, t := range tokens {
		if rePostcode.MatchString(t) {
			return t, true
		}
	}
	return "", false
}
