package match

// Distance is the edit distance between a and b counted in runes: the fewest
// single-rune insertions, deletions and substitutions that turn one into the
// other.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}

	// One row of the matrix, indexed by position in the shorter string.
	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		diag := row[0]
		row[0] = i

		for j := 1; j <= len(rb); j++ {
			up := row[j]

			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			row[j] = min(up+1, row[j-1]+1, diag+cost)
			diag = up
		}
	}

	return row[len(rb)]
}

// Similarity maps the distance between a and b onto [0, 1], where 1 means
// equal.
func Similarity(a, b string) float64 {
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}

	return 1 - float64(Distance(a, b))/float64(longest)
}
