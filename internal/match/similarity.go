// Package match provides name normalization and token-set similarity used to
// decide whether a candidate event duplicates one that already exists.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultThreshold is the similarity at or above which two event names are
// treated as the same event.
const DefaultThreshold = 0.7

// foldDiacritics decomposes to NFD, strips combining marks, and recomposes,
// so "Café Intermezzo" and "cafe intermezzo" tokenize identically.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases s, folds diacritics, collapses punctuation and runs
// of whitespace to single spaces, and trims.
func Normalize(s string) string {
	folded, _, err := transform.String(foldDiacritics, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Similarity computes Jaccard similarity between the word sets of two names:
// |intersection| / |union|, in [0, 1]. Two names with no tokens at all score
// 0 by convention, meaning no meaningful overlap. Symmetric and
// deterministic.
func Similarity(a, b string) float64 {
	setA := wordSet(Normalize(a))
	setB := wordSet(Normalize(b))

	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for w := range setA {
		if setB[w] {
			intersection++
		}
	}

	union := len(setA)
	for w := range setB {
		if !setA[w] {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]bool {
	words := strings.Fields(s)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
