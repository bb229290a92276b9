// Package match implements the string-similarity consensus used for header
// and taxonomy canonicalization. Two independent heuristics each pick a best
// reference; a candidate is only accepted when both agree. Either heuristic
// alone mis-maps too often on short, punctuation-heavy spreadsheet labels.
package match

// Jaccard returns the character-set overlap of two strings:
// |intersection| / |union| over their rune sets.
func Jaccard(a, b string) float64 {
	setA := runeSet(a)
	setB := runeSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// Levenshtein returns the edit distance between two strings, computed over
// runes with a two-row table.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// BestJaccard returns the reference with the highest Jaccard similarity to
// the candidate. Ties keep the first reference seen. Returns "" for an empty
// reference list.
func BestJaccard(candidate string, references []string) string {
	best := ""
	bestScore := -1.0
	for _, ref := range references {
		score := Jaccard(candidate, ref)
		if score > bestScore {
			bestScore = score
			best = ref
		}
	}
	return best
}

// BestLevenshtein returns the reference with the lowest edit distance to the
// candidate. Ties keep the first reference seen. Returns "" for an empty
// reference list.
func BestLevenshtein(candidate string, references []string) string {
	best := ""
	bestDistance := -1
	for _, ref := range references {
		distance := Levenshtein(candidate, ref)
		if bestDistance < 0 || distance < bestDistance {
			bestDistance = distance
			best = ref
		}
	}
	return best
}

// Consensus runs both matchers and accepts the result only when they pick
// the same reference. ok=false is the expected outcome for genuinely
// ambiguous labels, not an error.
func Consensus(candidate string, references []string) (string, bool) {
	if len(references) == 0 {
		return "", false
	}
	byOverlap := BestJaccard(candidate, references)
	byDistance := BestLevenshtein(candidate, references)
	if byOverlap != byDistance {
		return "", false
	}
	return byOverlap, true
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
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
