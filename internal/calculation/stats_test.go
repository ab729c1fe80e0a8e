package calculation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{"empty", nil, 50, 0},
		{"single", []float64{7}, 50, 7},
		{"below range", []float64{1, 2, 3}, -5, 1},
		{"above range", []float64{1, 2, 3}, 150, 3},
		{"median of four", []float64{1, 2, 3, 4}, 50, 2.5},
		{"quarter of four", []float64{1, 2, 3, 4}, 25, 1.75},
		{"median of odd count", []float64{10, 20, 30}, 50, 20},
		{"interpolated", []float64{0, 100}, 30, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentile(tt.values, tt.p), 1e-12)
		})
	}
}

func TestPercentileDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Percentile(values, 50)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestPercentileUnsortedMatchesSorted(t *testing.T) {
	unsorted := []float64{9, 4, 12, 1, 7, 2}
	sorted := []float64{1, 2, 4, 7, 9, 12}
	for _, p := range []float64{10, 25, 50, 75, 90} {
		assert.InDelta(t, percentileOfSorted(sorted, p), Percentile(unsorted, p), 1e-12)
	}
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 2.5, Mean([]float64{1, 2, 3, 4}), 1e-12)
	assert.True(t, math.Abs(Mean([]float64{-1, 1})) < 1e-15)
}
