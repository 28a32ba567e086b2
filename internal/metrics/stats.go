package metrics

import (
	"errors"
	"math"
	"sort"
)

// ErrDegenerate is returned when a correlation is undefined, e.g. because
// one of the series has zero variance.
var ErrDegenerate = errors.New("correlation undefined for degenerate input")

// Mean computes the arithmetic mean of a float64 slice.
// Returns 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the middle value, or the mean of the two middle values
// for even-length input. Returns 0 for empty input.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// SampleStdDev computes the sample standard deviation (Bessel's correction).
// Returns 0 when fewer than 2 values are available.
func SampleStdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// MinMax returns the smallest and largest values, or (0, 0) for empty input.
func MinMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mn, mx := values[0], values[0]
	for _, v := range values[1:] {
		if v < mn {
			mn = v
		}
		if v > mx {
			mx = v
		}
	}
	return mn, mx
}

// Pearson computes the Pearson correlation coefficient of x and y.
// It returns ErrDegenerate when the slices differ in length, hold fewer
// than 2 values, or either has zero variance.
func Pearson(x, y []float64) (float64, error) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, ErrDegenerate
	}
	mx, my := Mean(x), Mean(y)
	var sxy, sxx, syy float64
	for i := range x {
		dx := x[i] - mx
		dy := y[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, ErrDegenerate
	}
	r := sxy / math.Sqrt(sxx*syy)
	// Clamp rounding noise so |r| never exceeds 1.
	return math.Max(-1, math.Min(1, r)), nil
}

// Index returns the 0-based positions 0..n-1 as float64 values.
func Index(n int) []float64 {
	idx := make([]float64, n)
	for i := range idx {
		idx[i] = float64(i)
	}
	return idx
}
