// Package cleaning implements the missing-data analysis and imputation
// engine. It works column-at-a-time over a dataset.Dataset: Analyze builds a
// missing-value report, Impute fills missing cells with a per-column
// statistic (mean, median, or mode).
package cleaning

import (
	"sort"
	"strconv"
)

// Mean returns the arithmetic mean of x, or 0 for an empty slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

// Median returns the median of x without mutating it, or 0 for an empty
// slice. For an even count the two middle values are averaged.
func Median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, x)
	sort.Float64s(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Mode returns the most frequent value in x. Ties resolve to the smallest
// value, numerically when both sides parse as numbers and byte-wise
// otherwise.
func Mode(x []string) (string, bool) {
	if len(x) == 0 {
		return "", false
	}

	counts := make(map[string]int, len(x))
	for _, v := range x {
		counts[v]++
	}

	best := ""
	bestCount := 0
	for v, c := range counts {
		if c > bestCount || (c == bestCount && lessValue(v, best)) {
			best = v
			bestCount = c
		}
	}
	return best, true
}

func lessValue(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return fa < fb
	}
	return a < b
}
