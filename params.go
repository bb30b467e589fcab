package tally

import (
	"errors"
	"math"
)

var (
	// ErrInvalidWidth is returned when a sketch is constructed with width <= 0.
	ErrInvalidWidth = errors.New("tally: width must be positive")

	// ErrInvalidHashFunctions is returned when a sketch is constructed with
	// numHashFunctions <= 0.
	ErrInvalidHashFunctions = errors.New("tally: number of hash functions must be positive")

	// ErrInvalidEstimate is returned when epsilon or delta is outside (0, 1).
	ErrInvalidEstimate = errors.New("tally: epsilon and delta must be in (0, 1)")
)

// OptimalDimensions returns the width and number of hash functions of a
// count-min sketch whose estimates exceed the true count by more than
// epsilon*N with probability at most delta, where N is the total number of
// inserts.
//
//	width = ceil(e / epsilon)
//	numHashFunctions = ceil(ln(1 / delta))
func OptimalDimensions(epsilon, delta float64) (width, numHashFunctions int, err error) {
	if epsilon <= 0 || epsilon >= 1 || delta <= 0 || delta >= 1 {
		return 0, 0, ErrInvalidEstimate
	}

	width = int(math.Ceil(math.E / epsilon))
	numHashFunctions = int(math.Ceil(math.Log(1 / delta)))

	width = max(width, 1)
	numHashFunctions = max(numHashFunctions, 1)

	return width, numHashFunctions, nil
}

// EstimateErrorBound returns the additive error e/width * totalCount that a
// count-min estimate stays under with probability 1 - e^-d.
func EstimateErrorBound(width int, totalCount uint64) float64 {
	if width <= 0 {
		return math.Inf(1)
	}
	return math.E / float64(width) * float64(totalCount)
}
