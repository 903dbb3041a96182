package catalog

import (
	"strings"

	"github.com/mmcdole/vinilo/internal/domain"
)

// namesMatch is a best-effort identity check between a performer name and a
// musician name. Two names match when their first two space-separated words
// are equal, or when either name contains the other (both case-insensitive).
//
// This is a heuristic, not an identity join: "Juan Luis Guerra" and
// "Juan Luis Perales" match, and accents or reordered names do not.
func namesMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	if firstTwoWords(a) == firstTwoWords(b) {
		return true
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func firstTwoWords(s string) string {
	words := strings.Fields(s)
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}

// imageFor returns the image of the first musician that matches name and
// has a non-blank image.
func imageFor(name string, musicians []*domain.Musician) (string, bool) {
	for _, m := range musicians {
		if m == nil || isBlank(m.Image) {
			continue
		}
		if namesMatch(name, m.Name) {
			return m.Image, true
		}
	}
	return "", false
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
