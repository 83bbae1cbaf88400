// Package hashtag extracts hashtags from post text.
package hashtag

import (
	"strings"
	"unicode"
)

// MaxTagLen is the longest accepted tag, counted in runes.
const MaxTagLen = 64

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Extract returns the distinct lowercased tags of text, in order of first
// appearance. A tag is a '#' at the start of text or after whitespace,
// followed by 1 to 64 word runes (Unicode letters, digits, underscore).
// A longer unbroken run is not a tag at all rather than being truncated.
// "#Go and #go" yields ["go"].
func Extract(text string) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, tok := range strings.Fields(text) {
		rest, ok := strings.CutPrefix(tok, "#")
		if !ok {
			continue
		}
		var n int
		end := len(rest)
		for i, r := range rest {
			if !isWordRune(r) {
				end = i
				break
			}
			n++
		}
		if n == 0 || n > MaxTagLen {
			continue
		}
		tag := strings.ToLower(rest[:end])
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// Normalize lowercases a raw tag and strips a single leading '#'.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimPrefix(raw, "#"))
}
