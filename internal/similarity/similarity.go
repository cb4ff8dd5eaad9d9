// Package similarity holds stateless comparisons over normalized strings and
// embedding vectors.
package similarity

import (
	"math"
	"strings"
)

const cosineEpsilon = 1e-12

// Levenshtein is the classic edit distance, computed with two rolling rows.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
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
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// TokenJaccard is |A∩B| / |A∪B| over whitespace tokens. Two empty sets score 1.
func TokenJaccard(a, b string) float64 {
	A := tokenSet(a)
	B := tokenSet(b)
	if len(A) == 0 && len(B) == 0 {
		return 1
	}
	inter := 0
	for t := range A {
		if _, ok := B[t]; ok {
			inter++
		}
	}
	union := len(A) + len(B) - inter
	if union < 1 {
		union = 1
	}
	return float64(inter) / float64(union)
}

// Cosine returns the cosine similarity of two vectors. Mismatched or empty
// vectors score 0; zero magnitudes are guarded by an epsilon.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	return dot / (math.Max(math.Sqrt(na)*math.Sqrt(nb), cosineEpsilon))
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
