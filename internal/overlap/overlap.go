// Package overlap ranks candidate responses by bag-of-words overlap with
// an utterance.
package overlap

// Bag counts token occurrences
func Bag(tokens []string) map[string]int {
	bag := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		bag[tok]++
	}
	return bag
}

// Score is the multiset intersection size: for every token present in
// both bags it adds the smaller of the two counts. Score(a, b) == Score(b, a).
func Score(a, b map[string]int) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	score := 0
	for tok, countA := range a {
		if countB, ok := b[tok]; ok {
			score += min(countA, countB)
		}
	}
	return score
}

// ArgMax returns the index of the highest score. Ties go to the first
// index. An empty slice returns -1.
func ArgMax(scores []int) int {
	best := -1
	for i, s := range scores {
		if best == -1 || s > scores[best] {
			best = i
		}
	}
	return best
}

// SelectBest scores every candidate token sequence against the utterance
// and returns the winning index with the per-candidate scores. When
// nothing overlaps the first candidate still wins.
func SelectBest(candidates [][]string, utterance []string) (int, []int) {
	bag := Bag(utterance)
	scores := make([]int, len(candidates))
	for i, c := range candidates {
		scores[i] = Score(Bag(c), bag)
	}
	return ArgMax(scores), scores
}
