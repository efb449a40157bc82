package simulation

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Percentiles reported in a Result.
const (
	MedianPercentile    = 50.0
	BestCasePercentile  = 90.0
	WorstCasePercentile = 10.0
)

var (
	// ErrInvalidPercentile is returned for a percentile outside [0, 100].
	ErrInvalidPercentile = errors.New("percentile out of range")
	// ErrEmptySample is returned when there are no values to summarize.
	ErrEmptySample = errors.New("empty sample")
)

// Percentile returns the p-th percentile of an ascending slice. It does not
// sort.
//
// p == 0 and p == 100 select the ends and a single value is returned as-is.
// Otherwise index = p*len/100: an integral index selects sorted[index], a
// fractional one averages sorted[floor(index)] with its predecessor. When the
// index falls below 1 there is no predecessor and sorted[0] is returned.
func Percentile(sorted []float64, p float64) (float64, error) {
	if math.IsNaN(p) || p < 0 || p > 100 {
		return 0, fmt.Errorf("%w: %v is outside [0, 100]", ErrInvalidPercentile, p)
	}
	n := len(sorted)
	switch {
	case n == 0:
		return 0, ErrEmptySample
	case p == 0 || n == 1:
		return sorted[0], nil
	case p == 100:
		return sorted[n-1], nil
	}

	index := p * float64(n) / 100
	lower := int(math.Floor(index))
	if float64(lower) == index {
		return sorted[lower], nil
	}
	if lower == 0 {
		return sorted[0], nil
	}
	return (sorted[lower] + sorted[lower-1]) / 2, nil
}

// Summarize sorts a copy of outcomes and extracts the median, best case and
// worst case percentiles. The input slice is left untouched.
func Summarize(outcomes []float64) (Result, error) {
	if len(outcomes) == 0 {
		return Result{}, ErrEmptySample
	}
	sorted := slices.Clone(outcomes)
	slices.Sort(sorted)
	return summarizeSorted(sorted)
}

func summarizeSorted(sorted []float64) (Result, error) {
	var (
		res Result
		err error
	)
	if res.Median, err = Percentile(sorted, MedianPercentile); err != nil {
		return Result{}, err
	}
	if res.BestCase, err = Percentile(sorted, BestCasePercentile); err != nil {
		return Result{}, err
	}
	if res.WorstCase, err = Percentile(sorted, WorstCasePercentile); err != nil {
		return Result{}, err
	}
	return res, nil
}

// Stats holds descriptive statistics of a sample.
type Stats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	// MeanNominalMultiplier is the average pre-inflation growth factor.
	MeanNominalMultiplier float64 `json:"mean_nominal_multiplier,omitempty"`
}

// Describe computes mean, population standard deviation and range of an
// ascending slice.
func Describe(sorted []float64) (Stats, error) {
	n := len(sorted)
	if n == 0 {
		return Stats{}, ErrEmptySample
	}
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)
	var sq float64
	for _, v := range sorted {
		d := v - mean
		sq += d * d
	}
	return Stats{
		Mean:   mean,
		StdDev: math.Sqrt(sq / float64(n)),
		Min:    sorted[0],
		Max:    sorted[n-1],
	}, nil
}
