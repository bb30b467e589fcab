// Package tally provides fixed-memory approximate frequency counters for
// streams of discrete keys.
//
// Both structures answer "how many times has this key been inserted?" with an
// estimate that is never below the true count. Memory is fixed at
// construction and independent of the number of distinct keys.
//
// # Structures
//
// [CountMinSketch] keeps d rows of w counters. Row i is indexed by hash
// function i, and every insert increments one counter in every row. A query
// returns the minimum of the key's d counters: each row over-counts by the
// keys that collide with it in that row, and the minimum discards the
// noisiest rows.
//
// [SpectralBloomFilter] keeps a single array of w counters probed d times
// per key. With the default [MinimalIncrease] policy an insert only
// increments the probes that currently hold the key's minimum value
// (conservative update). [MinimumSelection] increments every probe.
//
// # Hashing
//
// A [HashFamily] maps a key to d positions in [0, w) using seeds 1..d:
//
//	position(key, i) = hash(key, seed_i) mod w
//
// The default hasher is seeded xxh3. [Murmur3] and [XXHash64] are also
// provided via [WithHasher]. With small widths several probes of one key may
// land on the same counter; the minimum over the raw probe list is
// unaffected.
//
// # Choosing Parameters
//
// Use [NewCountMinSketch] and [NewSpectralBloomFilter] with explicit
// dimensions, or [OptimalDimensions] to derive them from an error target:
//
//	// Estimates within 0.1% of the stream length with 99% probability
//	s, err := tally.NewCountMinSketchWithEstimates(0.001, 0.01)
//
// Constructors return [ErrInvalidWidth] or [ErrInvalidHashFunctions] for
// non-positive dimensions. Insert and Query never fail.
//
// # Memory Usage
//
//	CountMinSketch:      d * w * 8 bytes
//	SpectralBloomFilter: w * 8 bytes
//
// # Thread Safety
//
// [CountMinSketch] and [SpectralBloomFilter] are NOT thread-safe. Concurrent
// Query calls are safe with each other but not with a concurrent Insert.
//
// [AtomicCountMinSketch] uses one atomic add per row and is safe for
// concurrent Insert and Query.
//
// [SyncSpectralBloomFilter] guards each insert with a lock, since a
// conservative update reads all probes before deciding which to write.
//
// # Inspecting State
//
// Counters returns a copy of the raw counter state (a d x w matrix for a
// count-min sketch, a length-w vector for a spectral Bloom filter) for
// plotting or export. Modifying the copy does not affect the sketch.
//
// # References
//
//   - Count-Min Sketch: http://dimacs.rutgers.edu/~graham/pubs/papers/cm-full.pdf
//   - Spectral Bloom Filters: https://theory.stanford.edu/~matias/papers/sbf-sigmod-03.pdf
package tally
