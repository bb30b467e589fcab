package main

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// Distribution selects how stream keys are drawn from the key pool.
type Distribution string

const (
	// Zipf draws pool index (k-1) mod poolSize with P(k) ∝ k^-alpha.
	Zipf Distribution = "zipf"
	// Uniform draws pool indices uniformly at random.
	Uniform Distribution = "random"
)

var errBadDistribution = errors.New("distribution must be 'zipf' or 'random'")

// Stream is a synthetic key stream over a pool of IPv4 address keys.
type Stream struct {
	Pool []string
	Keys []string
}

// NewStream draws streamSize keys from a pool of poolSize distinct IPv4
// addresses. The same seed always produces the same stream.
func NewStream(poolSize, streamSize int, dist Distribution, alpha float64, seed uint64) (*Stream, error) {
	if poolSize <= 0 {
		return nil, fmt.Errorf("pool size must be positive, got %d", poolSize)
	}
	if streamSize < 0 {
		return nil, fmt.Errorf("stream size must not be negative, got %d", streamSize)
	}

	r := rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d))

	var next func() int
	switch dist {
	case Zipf:
		if alpha <= 1 {
			return nil, fmt.Errorf("zipf alpha must be > 1, got %g", alpha)
		}
		z := rand.NewZipf(r, alpha, 1, math.MaxUint32)
		next = func() int { return int(z.Uint64() % uint64(poolSize)) }
	case Uniform:
		next = func() int { return r.IntN(poolSize) }
	default:
		return nil, fmt.Errorf("%w: got %q", errBadDistribution, dist)
	}

	pool := ipv4Pool(r, poolSize)
	keys := make([]string, streamSize)
	for i := range keys {
		keys[i] = pool[next()]
	}

	return &Stream{Pool: pool, Keys: keys}, nil
}

// ipv4Pool returns n distinct public-looking IPv4 addresses.
func ipv4Pool(r *rand.Rand, n int) []string {
	seen := make(map[string]struct{}, n)
	pool := make([]string, 0, n)
	for len(pool) < n {
		ip := fmt.Sprintf("%d.%d.%d.%d", 1+r.IntN(223), r.IntN(256), r.IntN(256), 1+r.IntN(254))
		if _, ok := seen[ip]; ok {
			continue
		}
		seen[ip] = struct{}{}
		pool = append(pool, ip)
	}
	return pool
}

// ActualCounts returns the exact number of occurrences of each key.
func (s *Stream) ActualCounts() map[string]uint64 {
	counts := make(map[string]uint64)
	for _, k := range s.Keys {
		counts[k]++
	}
	return counts
}
