// Package textnorm reduces skill phrases and free text to the token strings used for
// embedding and keyword matching.
package textnorm

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// tokenPattern keeps alphanumerics plus the symbols that carry meaning in skill names
// (C++, C#, Node.js).
var tokenPattern = regexp.MustCompile(`[A-Za-z0-9+.#]+`)

// Tokens returns the lowercase tokens of s after NFKC folding.
func Tokens(s string) []string {
	if s == "" {
		return nil
	}
	folded := strings.ToLower(norm.NFKC.String(s))
	return tokenPattern.FindAllString(folded, -1)
}

// Normalize returns the tokens of s joined by single spaces. It is idempotent.
func Normalize(s string) string {
	return strings.Join(Tokens(s), " ")
}

// NGrams returns every contiguous word n-gram of length 1..maxN over the tokens of an
// already normalized string, deduplicated and sorted.
func NGrams(normalized string, maxN int) []string {
	words := strings.Fields(normalized)
	if len(words) == 0 || maxN <= 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(words)*maxN)
	for n := 1; n <= maxN; n++ {
		for i := 0; i+n <= len(words); i++ {
			seen[strings.Join(words[i:i+n], " ")] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}
