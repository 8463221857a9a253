package ranking

import (
	"regexp"
	"strings"
)

var nonWordRe = regexp.MustCompile(`[^a-z0-9]+`)

// tokenize lowercases text, replaces non-word characters with spaces,
// splits on whitespace, and drops tokens of length <= 2.
func tokenize(text string) []string {
	lower := strings.ToLower(text)
	normalized := nonWordRe.ReplaceAllString(lower, " ")
	fields := strings.Fields(normalized)

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
