package links

import (
	"regexp"
	"strings"
)

// urlPattern matches absolute http/https URLs in free text.
var urlPattern = regexp.MustCompile(`https?://[^\s<>"{}|\\^` + "`" + `\[\]]+`)

// ExtractURLs pulls candidate URLs out of raw text: absolute http/https only,
// trailing punctuation stripped, anything 10 characters or shorter dropped.
// Duplicates are removed; first-appearance order is preserved so repeated
// analyses of the same text produce identical output.
func ExtractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)

	seen := make(map[string]bool, len(matches))
	var cleaned []string
	for _, u := range matches {
		u = strings.TrimRight(u, ".,;:!?)")
		if len(u) <= 10 || seen[u] {
			continue
		}
		seen[u] = true
		cleaned = append(cleaned, u)
	}
	return cleaned
}
