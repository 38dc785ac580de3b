// Package matching scores and classifies employee names against the alias
// registry.
package matching

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

// Similarity returns 1 - lev(a, b) / max(len(a), len(b)) over the normalized
// forms of a and b, measured in runes. Two empty names are identical.
func Similarity(a, b string) float64 {
	return similarityNormalized(domain.NormalizeName(a), domain.NormalizeName(b))
}

// similarityNormalized is Similarity for inputs that are already normalized.
func similarityNormalized(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
