// Package stats implements the mean, median and mode calculators.
//
// Calculators are pure: they never modify the sequence they are given.
package stats

import (
	"errors"
	"math"
	"slices"

	"github.com/tjfontaine/numagg/internal/domain"
)

// ErrEmptySequence is returned by calculators that have no value for an
// empty sequence.
var ErrEmptySequence = errors.New("empty sequence")

// Calculator computes one statistic over a validated sequence.
type Calculator func(seq domain.NumberSequence) (float64, error)

// Mean returns the arithmetic mean of seq, or 0 when seq is empty.
func Mean(seq domain.NumberSequence) float64 {
	if len(seq) == 0 {
		return 0
	}
	n := float64(len(seq))
	var sum float64
	for _, v := range seq {
		sum += v
	}
	if !math.IsInf(sum, 0) {
		return sum / n
	}

	// The plain sum overflowed; scale each term first.
	var mean float64
	for _, v := range seq {
		mean += v / n
	}
	return mean
}

// Median returns the middle value of seq. For an even length it is the
// average of the two central values.
func Median(seq domain.NumberSequence) (float64, error) {
	if len(seq) == 0 {
		return 0, ErrEmptySequence
	}

	sorted := slices.Clone(seq)
	slices.Sort(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return midpoint(sorted[mid-1], sorted[mid]), nil
	}
	return sorted[mid], nil
}

// midpoint averages a and b without overflowing for finite inputs.
func midpoint(a, b float64) float64 {
	if s := a + b; !math.IsInf(s, 0) {
		return s / 2
	}
	return a/2 + b/2
}

// Mode returns the most frequent value of seq. When several values share the
// highest count, the one seen first in seq wins.
func Mode(seq domain.NumberSequence) (float64, error) {
	if len(seq) == 0 {
		return 0, ErrEmptySequence
	}

	counts := make(map[float64]int, len(seq))
	order := make([]float64, 0, len(seq))
	for _, v := range seq {
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	var mode float64
	best := 0
	for _, v := range order {
		if counts[v] > best {
			mode = v
			best = counts[v]
		}
	}
	return mode, nil
}

var calculators = map[domain.AggregationKind]Calculator{
	domain.AggregationMean: func(seq domain.NumberSequence) (float64, error) {
		return Mean(seq), nil
	},
	domain.AggregationMedian: Median,
	domain.AggregationMode:   Mode,
}

// Calculators returns a copy of the kind to calculator table.
func Calculators() map[domain.AggregationKind]Calculator {
	out := make(map[domain.AggregationKind]Calculator, len(calculators))
	for k, c := range calculators {
		out[k] = c
	}
	return out
}
