package storage

import "math"

// CosineDistance returns 1 - (a.b)/(|a||b|). Lower is more similar.
// A zero-norm operand carries no direction, so the distance is defined
// as 1 (neutral, neither near nor opposite).
func CosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
