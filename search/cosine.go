package search

import "math"

// Cosine computes the cosine similarity of two vectors. The result is in
// [-1, 1]. If either vector has zero norm the similarity is 0 rather than a
// division fault; mismatched lengths score only the common prefix.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, x := range a {
		normA += float64(x) * float64(x)
	}
	for _, y := range b {
		normB += float64(y) * float64(y)
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
