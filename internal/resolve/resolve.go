// Package resolve implements the two mention resolvers: a similarity scorer
// over directory display names and a flat table lookup. Both satisfy
// driven.MentionResolver; configuration picks one per run.
package resolve

import (
	"strings"
	"unicode"
)

// normalise lowercases and strips all whitespace so "Ada Lovelace" matches
// the token "adalovelace". Matching is insensitive to case and spacing on
// both sides.
func normalise(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
