package slots

import (
	"github.com/agnivade/levenshtein"
)

// DefaultFuzzyThreshold is the minimum similarity (0..100) a fuzzy match needs.
const DefaultFuzzyThreshold = 80

// similarity is the levenshtein ratio of two strings in the range 0..100.
func similarity(a, b []rune) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 100
	}

	dist := levenshtein.ComputeDistance(string(a), string(b))
	return 100 * (1 - float64(dist)/float64(longest))
}

// partialSimilarity slides the shorter string over the longer one and keeps the
// best window.
func partialSimilarity(short, long []rune) float64 {
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}

	best := 0.0
	for i := 0; i+len(short) <= len(long); i++ {
		if s := similarity(short, long[i:i+len(short)]); s > best {
			best = s
			if best == 100 {
				break
			}
		}
	}
	return best
}

// weightedSimilarity blends full and partial similarity, discounting partial
// matches between strings of very different length.
func weightedSimilarity(keyword, text string) float64 {
	k, t := []rune(keyword), []rune(text)
	if len(k) == 0 || len(t) == 0 {
		return 0
	}

	full := similarity(k, t)

	ratio := float64(max(len(k), len(t))) / float64(min(len(k), len(t)))
	if ratio < 1.5 {
		return full
	}

	scale := 0.9
	if ratio > 8 {
		scale = 0.6
	}

	return max(full, partialSimilarity(k, t)*scale)
}

// bestFuzzy returns the keyword most similar to text, if it clears threshold.
// Earlier keywords win ties.
func bestFuzzy(text string, words []string, threshold int) (string, bool) {
	var (
		best      string
		bestScore float64
	)
	for _, w := range words {
		if s := weightedSimilarity(w, text); s > bestScore {
			best, bestScore = w, s
		}
	}

	if best == "" || bestScore < float64(threshold) {
		return "", false
	}
	return best, true
}
