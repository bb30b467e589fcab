package tally

import "sync/atomic"

// CountMinSketch is a non-thread-safe count-min sketch: d rows of width
// counters, one hash function per row.
//
// Every insert increments one counter in every row. A query returns the
// smallest of the key's d counters, so estimates never fall below the true
// count and exceed it only by the collision noise of the least noisy row.
type CountMinSketch struct {
	hf       *HashFamily
	counters []uint64 // d rows of width counters, row-major
	width    uint64
	count    uint64 // Number of inserts
}

// NewCountMinSketch creates a count-min sketch with numHashFunctions rows of
// the given width. Both must be positive.
func NewCountMinSketch(numHashFunctions, width int, opts ...Option) (*CountMinSketch, error) {
	o := buildOptions(opts)
	hf, err := newHashFamily(numHashFunctions, width, o.hasher)
	if err != nil {
		return nil, err
	}

	return &CountMinSketch{
		hf:       hf,
		counters: make([]uint64, numHashFunctions*width),
		width:    uint64(width),
	}, nil
}

// NewCountMinSketchWithEstimates creates a count-min sketch sized by
// OptimalDimensions.
func NewCountMinSketchWithEstimates(epsilon, delta float64, opts ...Option) (*CountMinSketch, error) {
	width, k, err := OptimalDimensions(epsilon, delta)
	if err != nil {
		return nil, err
	}
	return NewCountMinSketch(k, width, opts...)
}

// Insert records one occurrence of data.
func (s *CountMinSketch) Insert(data []byte) {
	for i := range s.hf.seeds {
		s.counters[uint64(i)*s.width+s.hf.Position(data, i)]++
	}
	s.count++
}

// InsertString records one occurrence of key.
func (s *CountMinSketch) InsertString(key string) {
	for i := range s.hf.seeds {
		s.counters[uint64(i)*s.width+s.hf.PositionString(key, i)]++
	}
	s.count++
}

// Query returns the estimated number of occurrences of data.
func (s *CountMinSketch) Query(data []byte) uint64 {
	est := s.counters[s.hf.Position(data, 0)]
	for i := 1; i < len(s.hf.seeds); i++ {
		est = min(est, s.counters[uint64(i)*s.width+s.hf.Position(data, i)])
	}
	return est
}

// QueryString returns the estimated number of occurrences of key.
func (s *CountMinSketch) QueryString(key string) uint64 {
	est := s.counters[s.hf.PositionString(key, 0)]
	for i := 1; i < len(s.hf.seeds); i++ {
		est = min(est, s.counters[uint64(i)*s.width+s.hf.PositionString(key, i)])
	}
	return est
}

// Counters returns a copy of the d x width counter matrix.
func (s *CountMinSketch) Counters() [][]uint64 {
	out := make([][]uint64, len(s.hf.seeds))
	for i := range out {
		row := make([]uint64, s.width)
		copy(row, s.counters[uint64(i)*s.width:uint64(i+1)*s.width])
		out[i] = row
	}
	return out
}

// K returns the number of rows (hash functions).
func (s *CountMinSketch) K() int {
	return s.hf.K()
}

// Width returns the number of counters per row.
func (s *CountMinSketch) Width() int {
	return s.hf.Width()
}

// Count returns the number of inserts.
func (s *CountMinSketch) Count() uint64 {
	return s.count
}

// EstimatedErrorBound returns the additive error bound for the current
// number of inserts. See EstimateErrorBound.
func (s *CountMinSketch) EstimatedErrorBound() float64 {
	return EstimateErrorBound(s.hf.Width(), s.count)
}

// AtomicCountMinSketch is a thread-safe count-min sketch. Inserts use one
// atomic add per row, so concurrent Insert and Query calls are safe. A Query
// racing an Insert of the same key may observe some rows updated and others
// not; the result is still never below the count of completed inserts.
type AtomicCountMinSketch struct {
	hf       *HashFamily
	counters []atomic.Uint64 // d rows of width counters, row-major
	width    uint64
	count    atomic.Uint64
}

// NewAtomicCountMinSketch creates a thread-safe count-min sketch.
func NewAtomicCountMinSketch(numHashFunctions, width int, opts ...Option) (*AtomicCountMinSketch, error) {
	o := buildOptions(opts)
	hf, err := newHashFamily(numHashFunctions, width, o.hasher)
	if err != nil {
		return nil, err
	}

	return &AtomicCountMinSketch{
		hf:       hf,
		counters: make([]atomic.Uint64, numHashFunctions*width),
		width:    uint64(width),
	}, nil
}

// Insert records one occurrence of data atomically.
func (s *AtomicCountMinSketch) Insert(data []byte) {
	for i := range s.hf.seeds {
		s.counters[uint64(i)*s.width+s.hf.Position(data, i)].Add(1)
	}
	s.count.Add(1)
}

// InsertString records one occurrence of key atomically.
func (s *AtomicCountMinSketch) InsertString(key string) {
	for i := range s.hf.seeds {
		s.counters[uint64(i)*s.width+s.hf.PositionString(key, i)].Add(1)
	}
	s.count.Add(1)
}

// Query returns the estimated number of occurrences of data.
func (s *AtomicCountMinSketch) Query(data []byte) uint64 {
	est := s.counters[s.hf.Position(data, 0)].Load()
	for i := 1; i < len(s.hf.seeds); i++ {
		est = min(est, s.counters[uint64(i)*s.width+s.hf.Position(data, i)].Load())
	}
	return est
}

// QueryString returns the estimated number of occurrences of key.
func (s *AtomicCountMinSketch) QueryString(key string) uint64 {
	est := s.counters[s.hf.PositionString(key, 0)].Load()
	for i := 1; i < len(s.hf.seeds); i++ {
		est = min(est, s.counters[uint64(i)*s.width+s.hf.PositionString(key, i)].Load())
	}
	return est
}

// Counters returns a copy of the d x width counter matrix. Each counter is
// loaded atomically, but the copy is not a consistent snapshot while
// inserts are in flight.
func (s *AtomicCountMinSketch) Counters() [][]uint64 {
	out := make([][]uint64, len(s.hf.seeds))
	for i := range out {
		row := make([]uint64, s.width)
		base := uint64(i) * s.width
		for j := range row {
			row[j] = s.counters[base+uint64(j)].Load()
		}
		out[i] = row
	}
	return out
}

// K returns the number of rows (hash functions).
func (s *AtomicCountMinSketch) K() int {
	return s.hf.K()
}

// Width returns the number of counters per row.
func (s *AtomicCountMinSketch) Width() int {
	return s.hf.Width()
}

// Count returns the number of inserts.
func (s *AtomicCountMinSketch) Count() uint64 {
	return s.count.Load()
}

// EstimatedErrorBound returns the additive error bound for the current
// number of inserts.
func (s *AtomicCountMinSketch) EstimatedErrorBound() float64 {
	return EstimateErrorBound(s.hf.Width(), s.count.Load())
}
