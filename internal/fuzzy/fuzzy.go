// Package fuzzy picks "did you mean" suggestions for unrecognized CLI
// tokens using bounded Levenshtein distance.
package fuzzy

import "strings"

// minInputLength guards against suggesting for one-character typos, where
// nearly everything is within distance one.
const minInputLength = 2

// Best returns the candidate closest to input, or "" when nothing is close
// enough. The allowed edit distance scales with input length so short names
// must match tightly while long names tolerate more typos. Comparison is
// case-insensitive; ties go to the earlier candidate, so declaration order
// decides between equally close names and the result is deterministic.
func Best(input string, candidates []string) string {
	if len(input) < minInputLength {
		return ""
	}
	budget := threshold(len(input))
	lowered := strings.ToLower(input)

	best := ""
	bestDist := budget + 1
	for _, candidate := range candidates {
		d := distance(lowered, strings.ToLower(candidate), budget)
		if d < bestDist {
			best = candidate
			bestDist = d
		}
	}
	return best
}

// threshold maps an input length to the maximum edit distance that still
// reads as a typo rather than a different word.
func threshold(n int) int {
	switch {
	case n <= 4:
		return 1
	case n <= 8:
		return 2
	default:
		return 3
	}
}

// distance is the Levenshtein distance between a and b, capped at budget+1.
// Two rolling rows instead of the full matrix, with early termination as
// soon as every cell in a row exceeds the budget.
func distance(a, b string, budget int) int {
	if a == b {
		return 0
	}
	if abs(len(a)-len(b)) > budget {
		return budget + 1
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(b); i++ {
		curr[0] = i
		rowMin := i
		for j := 1; j <= len(a); j++ {
			cost := 1
			if a[j-1] == b[i-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
			if curr[j] < rowMin {
				rowMin = curr[j]
			}
		}
		if rowMin > budget {
			return budget + 1
		}
		prev, curr = curr, prev
	}

	if prev[len(a)] > budget {
		return budget + 1
	}
	return prev[len(a)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
