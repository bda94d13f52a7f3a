package qpcr

import "math"

// Mean returns the arithmetic mean of values, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SampleStdDev returns the sample standard deviation (divisor n-1).
// Fewer than two values have no spread to estimate and yield 0.
func SampleStdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// CombinedStdDev combines the target and housekeeper standard deviations
// in quadrature.
func CombinedStdDev(a, b float64) float64 {
	return math.Sqrt(a*a + b*b)
}

// StandardError derives the SEM of a ΔΔCT value from the combined standard
// deviation and the replicate count of both groups:
//
//	sem = combinedStd / sqrt((n + n) / 2)
//
// Returns 0 when the replicate counts sum to 0.
func StandardError(combinedStd float64, replicaCount int) float64 {
	sum := replicaCount + replicaCount
	if sum == 0 {
		return 0
	}
	return combinedStd / math.Sqrt(float64(sum)/2)
}

// FoldChange converts a ΔΔCT value to relative expression, 2^-ΔΔCT.
func FoldChange(deltaDeltaCT float64) float64 {
	return math.Pow(2, -deltaDeltaCT)
}

// Round4 rounds half away from zero to 4 decimal places.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
