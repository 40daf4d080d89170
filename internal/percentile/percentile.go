// Package percentile computes citation-distribution thresholds. A record
// is "top q%" within its category and year when its citation count reaches
// floor(quantile(p)) + 1, with p = 100 - q.
package percentile

import (
	"math"
	"sort"
)

// Method selects the quantile interpolation rule.
type Method string

const (
	// Linear interpolates between order statistics, matching the behavior
	// of numpy percentile and SQL quantile_cont. This is the pinned
	// default.
	Linear Method = "linear"

	// Nearest picks the nearest rank without interpolation. Available for
	// parity testing against reference runs.
	Nearest Method = "nearest"
)

// Quantile computes the p-th percentile (0 < p < 100) of the values.
// Returns 0 for an empty distribution.
func Quantile(values []int64, p float64, method Method) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]int64, n)
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	h := p / 100 * float64(n-1)

	if method == Nearest {
		return float64(sorted[int(math.Round(h))])
	}

	lo := int(math.Floor(h))
	hi := lo + 1
	if hi >= n {
		return float64(sorted[n-1])
	}

	frac := h - float64(lo)

	return float64(sorted[lo]) + frac*float64(sorted[hi]-sorted[lo])
}

// Threshold computes the citation count separating the top (100-p)% of the
// distribution: floor(quantile(p)) + 1.
func Threshold(values []int64, p int, method Method) int64 {
	if len(values) == 0 {
		return 0
	}

	return int64(math.Floor(Quantile(values, float64(p), method))) + 1
}

// Thresholds computes the threshold for each target percentile.
func Thresholds(values []int64, percentiles []int, method Method) map[int]int64 {
	out := make(map[int]int64, len(percentiles))
	for _, p := range percentiles {
		out[p] = Threshold(values, p, method)
	}

	return out
}

// CountAtOrAbove counts values reaching the threshold.
func CountAtOrAbove(values []int64, threshold int64) int {
	count := 0
	for _, v := range values {
		if v >= threshold {
			count++
		}
	}

	return count
}

// SharePct converts a count over a denominator into a percentage,
// zero-guarded.
func SharePct(count, total int) float64 {
	if total == 0 {
		return 0
	}

	return float64(count) / float64(total) * 100
}
