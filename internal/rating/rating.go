// internal/rating/rating.go
package rating

import (
	"math"
	"sort"
)

// Median returns the median of the given ratings. For an even number of
// values it returns the mean of the two middle values. An empty input
// yields 0.
//
// Median is used instead of the mean when aggregating a side's GRI so a
// single outlier member does not shift the perceived match quality.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Round quantizes v to the nearest multiple of step. Step values <= 0
// return v unchanged.
func Round(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}

// InRange reports whether a and b are within tolerance of each other.
func InRange(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}
