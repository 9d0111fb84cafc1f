package grocery

// Distance returns the Levenshtein edit distance between a and b, counted in
// runes.
func Distance(a, b string) int {
	r1 := []rune(a)
	r2 := []rune(b)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	// Two rows of the DP table are enough.
	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}

// Similarity returns a score in [0, 1] where 1 means identical. The edit
// distance is normalized by the rune length of the longer string; two empty
// strings are identical.
//
// Callers are expected to normalize case before comparing.
func Similarity(a, b string) float64 {
	longer := len([]rune(a))
	if n := len([]rune(b)); n > longer {
		longer = n
	}
	if longer == 0 {
		return 1.0
	}
	return float64(longer-Distance(a, b)) / float64(longer)
}
