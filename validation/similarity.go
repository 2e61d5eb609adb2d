package validation

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// NameMatchScore is a normalized edit-distance similarity between two names:
// 1 - distance/maxLength over the lowercased, trimmed inputs. 1 means equal,
// 0 means nothing in common.
func NameMatchScore(a, b string) float64 {
	s1 := strings.ToLower(strings.TrimSpace(a))
	s2 := strings.ToLower(strings.TrimSpace(b))

	if s1 == s2 {
		return 1
	}

	longest := len([]rune(s1))
	if l2 := len([]rune(s2)); l2 > longest {
		longest = l2
	}
	if longest == 0 {
		return 1
	}

	distance := levenshtein.ComputeDistance(s1, s2)
	return float64(longest-distance) / float64(longest)
}
