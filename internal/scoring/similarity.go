package scoring

import "math"

// CosineSimilarity returns the directional similarity of two vectors in
// [-1,1]. Vectors of different length must never be compared as if valid, so
// a length mismatch (or an empty/zero vector) yields 0 rather than an error.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SemanticScore scales cosine similarity to [0,100], clamping the result.
func SemanticScore(a, b []float64) float64 {
	score := CosineSimilarity(a, b) * 100

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
