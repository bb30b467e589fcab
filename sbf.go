package tally

import "sync"

// SpectralBloomFilter is a non-thread-safe spectral Bloom filter: a single
// array of width counters probed d times per key.
//
// With the default MinimalIncrease policy an insert only increments the
// probes that currently hold the smallest value among the key's probes
// (conservative update). Estimates never fall below the true count, and
// counters grow more slowly than under MinimumSelection on the same array.
type SpectralBloomFilter struct {
	hf       *HashFamily
	counters []uint64
	policy   UpdatePolicy
	count    uint64   // Number of inserts
	probes   []uint64 // Scratch space for Insert
}

// NewSpectralBloomFilter creates a spectral Bloom filter with
// numHashFunctions probes into an array of the given width. Both must be
// positive.
func NewSpectralBloomFilter(numHashFunctions, width int, opts ...Option) (*SpectralBloomFilter, error) {
	o := buildOptions(opts)
	hf, err := newHashFamily(numHashFunctions, width, o.hasher)
	if err != nil {
		return nil, err
	}

	return &SpectralBloomFilter{
		hf:       hf,
		counters: make([]uint64, width),
		policy:   o.policy,
		probes:   make([]uint64, 0, numHashFunctions),
	}, nil
}

// Insert records one occurrence of data.
func (f *SpectralBloomFilter) Insert(data []byte) {
	f.probes = f.hf.Positions(f.probes[:0], data)
	f.update(f.probes)
}

// InsertString records one occurrence of key.
func (f *SpectralBloomFilter) InsertString(key string) {
	f.probes = f.hf.PositionsString(f.probes[:0], key)
	f.update(f.probes)
}

// update applies the update policy to the raw probe list. Probes may repeat;
// a repeated position is never incremented twice by one insert.
func (f *SpectralBloomFilter) update(probes []uint64) {
	switch f.policy {
	case MinimumSelection:
		for i, p := range probes {
			if !seenBefore(probes[:i], p) {
				f.counters[p]++
			}
		}
	default:
		minVal := f.counters[probes[0]]
		for _, p := range probes[1:] {
			minVal = min(minVal, f.counters[p])
		}
		// Re-read each counter: once a repeated probe has been incremented it
		// no longer equals minVal.
		for _, p := range probes {
			if f.counters[p] == minVal {
				f.counters[p]++
			}
		}
	}
	f.count++
}

func seenBefore(probes []uint64, p uint64) bool {
	for _, q := range probes {
		if q == p {
			return true
		}
	}
	return false
}

// Query returns the estimated number of occurrences of data.
func (f *SpectralBloomFilter) Query(data []byte) uint64 {
	est := f.counters[f.hf.Position(data, 0)]
	for i := 1; i < len(f.hf.seeds); i++ {
		est = min(est, f.counters[f.hf.Position(data, i)])
	}
	return est
}

// QueryString returns the estimated number of occurrences of key.
func (f *SpectralBloomFilter) QueryString(key string) uint64 {
	est := f.counters[f.hf.PositionString(key, 0)]
	for i := 1; i < len(f.hf.seeds); i++ {
		est = min(est, f.counters[f.hf.PositionString(key, i)])
	}
	return est
}

// Counters returns a copy of the counter array.
func (f *SpectralBloomFilter) Counters() []uint64 {
	out := make([]uint64, len(f.counters))
	copy(out, f.counters)
	return out
}

// K returns the number of probes per key.
func (f *SpectralBloomFilter) K() int {
	return f.hf.K()
}

// Width returns the number of counters.
func (f *SpectralBloomFilter) Width() int {
	return f.hf.Width()
}

// Count returns the number of inserts.
func (f *SpectralBloomFilter) Count() uint64 {
	return f.count
}

// Policy returns the update policy.
func (f *SpectralBloomFilter) Policy() UpdatePolicy {
	return f.policy
}

// SyncSpectralBloomFilter is a thread-safe spectral Bloom filter.
//
// A conservative update reads all probes, computes their minimum and then
// writes a subset of them, so per-counter atomics are not enough: each
// insert holds an exclusive lock for the whole read-then-write. Queries
// share a read lock.
type SyncSpectralBloomFilter struct {
	mu sync.RWMutex
	f  *SpectralBloomFilter
}

// NewSyncSpectralBloomFilter creates a thread-safe spectral Bloom filter.
func NewSyncSpectralBloomFilter(numHashFunctions, width int, opts ...Option) (*SyncSpectralBloomFilter, error) {
	f, err := NewSpectralBloomFilter(numHashFunctions, width, opts...)
	if err != nil {
		return nil, err
	}
	return &SyncSpectralBloomFilter{f: f}, nil
}

// Insert records one occurrence of data.
func (s *SyncSpectralBloomFilter) Insert(data []byte) {
	s.mu.Lock()
	s.f.Insert(data)
	s.mu.Unlock()
}

// InsertString records one occurrence of key.
func (s *SyncSpectralBloomFilter) InsertString(key string) {
	s.mu.Lock()
	s.f.InsertString(key)
	s.mu.Unlock()
}

// Query returns the estimated number of occurrences of data.
func (s *SyncSpectralBloomFilter) Query(data []byte) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.f.Query(data)
}

// QueryString returns the estimated number of occurrences of key.
func (s *SyncSpectralBloomFilter) QueryString(key string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.f.QueryString(key)
}

// Counters returns a consistent copy of the counter array.
func (s *SyncSpectralBloomFilter) Counters() []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.f.Counters()
}

func (s *SyncSpectralBloomFilter) K() int { return s.f.K() }
func (s *SyncSpectralBloomFilter) Width() int { return s.f.Width() }

// Count returns the number of inserts.
func (s *SyncSpectralBloomFilter) Count() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.f.count
}

func (s *SyncSpectralBloomFilter) Policy() UpdatePolicy { return s.f.policy }
