package tally

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
)

// Hasher is a seeded, non-cryptographic hash function. Implementations must
// be pure: the same data and seed always produce the same value.
type Hasher interface {
	Hash(data []byte, seed uint64) uint64
	HashString(s string, seed uint64) uint64
}

// XXH3 hashes with seeded xxh3. It is the default hasher.
type XXH3 struct{}

func (XXH3) Hash(data []byte, seed uint64) uint64 {
	return xxh3.HashSeed(data, seed)
}

// HashString avoids the allocation of converting s to []byte.
func (XXH3) HashString(s string, seed uint64) uint64 {
	return xxh3.HashStringSeed(s, seed)
}

// Murmur3 hashes with 32-bit murmur3, the hash traditionally used for
// count-min experiments. Seeds are truncated to 32 bits.
type Murmur3 struct{}

func (Murmur3) Hash(data []byte, seed uint64) uint64 {
	return uint64(murmur3.Sum32WithSeed(data, uint32(seed)))
}

func (Murmur3) HashString(s string, seed uint64) uint64 {
	return uint64(murmur3.Sum32WithSeed([]byte(s), uint32(seed)))
}

// XXHash64 hashes with seeded xxhash64.
type XXHash64 struct{}

func (XXHash64) Hash(data []byte, seed uint64) uint64 {
	d := xxhash.NewWithSeed(seed)
	_, _ = d.Write(data)
	return d.Sum64()
}

func (XXHash64) HashString(s string, seed uint64) uint64 {
	d := xxhash.NewWithSeed(seed)
	_, _ = d.WriteString(s)
	return d.Sum64()
}

// HashFamily maps a key to d probe positions in [0, width), one per seed.
// Seeds are 1..d. A HashFamily is immutable and safe to share.
type HashFamily struct {
	hasher Hasher
	seeds  []uint64
	width  uint64
}

// NewHashFamily creates a family of numHashFunctions probes into an array of
// the given width.
func NewHashFamily(numHashFunctions, width int, opts ...Option) (*HashFamily, error) {
	o := buildOptions(opts)
	return newHashFamily(numHashFunctions, width, o.hasher)
}

func newHashFamily(numHashFunctions, width int, h Hasher) (*HashFamily, error) {
	if numHashFunctions <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHashFunctions, numHashFunctions)
	}
	if width <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWidth, width)
	}
	if h == nil {
		h = XXH3{}
	}

	seeds := make([]uint64, numHashFunctions)
	for i := range seeds {
		seeds[i] = uint64(i + 1)
	}

	return &HashFamily{
		hasher: h,
		seeds:  seeds,
		width:  uint64(width),
	}, nil
}

// Position returns the probe position of data for the i-th seed.
func (hf *HashFamily) Position(data []byte, i int) uint64 {
	return hf.hasher.Hash(data, hf.seeds[i]) % hf.width
}

// PositionString returns the probe position of s for the i-th seed.
func (hf *HashFamily) PositionString(s string, i int) uint64 {
	return hf.hasher.HashString(s, hf.seeds[i]) % hf.width
}

// Positions appends the d probe positions of data to dst and returns the
// extended slice. Positions may repeat when width is small.
func (hf *HashFamily) Positions(dst []uint64, data []byte) []uint64 {
	for _, seed := range hf.seeds {
		dst = append(dst, hf.hasher.Hash(data, seed)%hf.width)
	}
	return dst
}

// PositionsString is Positions for string keys.
func (hf *HashFamily) PositionsString(dst []uint64, s string) []uint64 {
	for _, seed := range hf.seeds {
		dst = append(dst, hf.hasher.HashString(s, seed)%hf.width)
	}
	return dst
}

// K returns the number of hash functions.
func (hf *HashFamily) K() int {
	return len(hf.seeds)
}

// Width returns the size of the position range.
func (hf *HashFamily) Width() int {
	return int(hf.width)
}

// Seeds returns a copy of the seeds, in probe order.
func (hf *HashFamily) Seeds() []uint64 {
	out := make([]uint64, len(hf.seeds))
	copy(out, hf.seeds)
	return out
}
