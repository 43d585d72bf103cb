// Package levenshtein computes the edit distance between two strings,
// used to suggest the closest allow-listed domain for rejected ones.
package levenshtein

// Distance returns the Levenshtein distance between a and b,
// operating on runes. Uses a single reusable row of the DP matrix.
func Distance(a, b string) int {
	if a == b {
		return 0
	}

	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		prev := row[0] // value of row[j-1] from the previous iteration
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			diag := prev
			prev = row[j]

			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			row[j] = min3(row[j]+1, row[j-1]+1, diag+cost)
		}
	}

	return row[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
