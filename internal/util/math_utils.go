package util

import (
	"errors"
	"fmt"
	"math"
)

var errEmptyVector = errors.New("input vectors cannot be empty")

// CosineSimilarity returns the cosine of the angle between a and b. A zero
// vector has similarity 0 to everything.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, errEmptyVector
	}
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimensions do not match: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// MostSimilar returns the index of the candidate closest to vec and its
// similarity, or -1 when no candidate is comparable.
func MostSimilar(vec []float32, candidates [][]float32) (int, float64) {
	best, bestSim := -1, math.Inf(-1)
	for i, c := range candidates {
		sim, err := CosineSimilarity(vec, c)
		if err != nil {
			continue
		}
		if sim > bestSim {
			best, bestSim = i, sim
		}
	}
	if best < 0 {
		return -1, 0
	}
	return best, bestSim
}
