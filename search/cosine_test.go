package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosine_Identical(t *testing.T) {
	v := []float32{0.1, 0.5, 0.3, 0.7}
	assert.InDelta(t, 1.0, Cosine(v, v), 1e-6)
}

func TestCosine_Orthogonal(t *testing.T) {
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-6)
}

func TestCosine_Opposite(t *testing.T) {
	assert.InDelta(t, -1.0, Cosine([]float32{1, 2}, []float32{-1, -2}), 1e-6)
}

func TestCosine_ZeroVector(t *testing.T) {
	// Undefined mathematically; we treat it as "no similarity".
	assert.Equal(t, 0.0, Cosine([]float32{0, 0, 0}, []float32{1, 2, 3}))
	assert.Equal(t, 0.0, Cosine([]float32{1, 2, 3}, []float32{0, 0, 0}))
	assert.Equal(t, 0.0, Cosine(nil, []float32{1}))
}

func TestCosine_LengthMismatch(t *testing.T) {
	// Only the common prefix contributes.
	a := []float32{1, 0}
	b := []float32{1, 0, 5, 5}
	got := Cosine(a, b)
	assert.Greater(t, got, 0.0)
	assert.LessOrEqual(t, got, 1.0)
}

func TestCosine_Bounds(t *testing.T) {
	vectors := [][]float32{
		{0.3, -0.2, 0.9},
		{-0.5, 0.5, 0.5},
		{2, 4, 8},
	}
	for _, a := range vectors {
		for _, b := range vectors {
			got := Cosine(a, b)
			assert.GreaterOrEqual(t, got, -1.0-1e-9)
			assert.LessOrEqual(t, got, 1.0+1e-9)
		}
	}
}
