package tally

import (
	"errors"
	"fmt"
	"testing"
)

var testHashers = []struct {
	name string
	h    Hasher
}{
	{"xxh3", XXH3{}},
	{"murmur3", Murmur3{}},
	{"xxhash64", XXHash64{}},
}

func TestHasherBytesAndStringAgree(t *testing.T) {
	for _, hc := range testHashers {
		for _, s := range []string{"", "a", "hello", "10.0.0.1", "a much longer key that spans several words of input"} {
			for seed := uint64(1); seed <= 4; seed++ {
				if hc.h.Hash([]byte(s), seed) != hc.h.HashString(s, seed) {
					t.Errorf("%s: Hash and HashString disagree for %q seed=%d", hc.name, s, seed)
				}
			}
		}
	}
}

func TestHasherSeedsDiffer(t *testing.T) {
	for _, hc := range testHashers {
		var same int
		for i := range 1000 {
			key := fmt.Sprintf("key-%d", i)
			if hc.h.HashString(key, 1) == hc.h.HashString(key, 2) {
				same++
			}
		}
		if same > 0 {
			t.Errorf("%s: seeds 1 and 2 produced the same hash for %d keys", hc.name, same)
		}
	}
}

func TestHashFamilyPositionsInRange(t *testing.T) {
	for _, hc := range testHashers {
		for _, width := range []int{1, 2, 7, 100, 4096} {
			hf, err := NewHashFamily(5, width, WithHasher(hc.h))
			if err != nil {
				t.Fatalf("NewHashFamily failed: %v", err)
			}

			var buf []uint64
			for i := range 500 {
				key := fmt.Sprintf("item-%d", i)
				buf = hf.PositionsString(buf[:0], key)
				if len(buf) != 5 {
					t.Fatalf("%s: expected 5 positions, got %d", hc.name, len(buf))
				}
				for j, p := range buf {
					if p >= uint64(width) {
						t.Fatalf("%s width=%d: position %d out of range", hc.name, width, p)
					}
					if p != hf.PositionString(key, j) || p != hf.Position([]byte(key), j) {
						t.Fatalf("%s: Positions and Position disagree for %s probe %d", hc.name, key, j)
					}
				}
			}
		}
	}
}

func TestHashFamilyDistribution(t *testing.T) {
	const width = 64
	const items = 64000

	hf, err := NewHashFamily(3, width)
	if err != nil {
		t.Fatalf("NewHashFamily failed: %v", err)
	}

	for probe := range hf.K() {
		buckets := make([]int, width)
		for i := range items {
			buckets[hf.PositionString(fmt.Sprintf("item-%d", i), probe)]++
		}

		// Expected 1000 per bucket; allow wide statistical slack.
		for b, n := range buckets {
			if n < 800 || n > 1200 {
				t.Errorf("probe %d: bucket %d has %d items, expected ~1000", probe, b, n)
			}
		}
	}
}

func TestHashFamilySeeds(t *testing.T) {
	hf, err := NewHashFamily(4, 10)
	if err != nil {
		t.Fatalf("NewHashFamily failed: %v", err)
	}

	seeds := hf.Seeds()
	want := []uint64{1, 2, 3, 4}
	for i := range want {
		if seeds[i] != want[i] {
			t.Errorf("seed %d: got %d, want %d", i, seeds[i], want[i])
		}
	}

	seeds[0] = 99
	if hf.Seeds()[0] != 1 {
		t.Error("Seeds returned a handle to internal state")
	}
	if hf.K() != 4 || hf.Width() != 10 {
		t.Errorf("got k=%d width=%d, want k=4 width=10", hf.K(), hf.Width())
	}
}

func TestHashFamilySingleWidthCollides(t *testing.T) {
	hf, err := NewHashFamily(3, 1)
	if err != nil {
		t.Fatalf("NewHashFamily failed: %v", err)
	}

	for _, p := range hf.PositionsString(nil, "anything") {
		if p != 0 {
			t.Errorf("width=1: got position %d, want 0", p)
		}
	}
}

func TestNewHashFamilyInvalid(t *testing.T) {
	if _, err := NewHashFamily(0, 10); !errors.Is(err, ErrInvalidHashFunctions) {
		t.Errorf("k=0: got err %v, want %v", err, ErrInvalidHashFunctions)
	}
	if _, err := NewHashFamily(3, 0); !errors.Is(err, ErrInvalidWidth) {
		t.Errorf("width=0: got err %v, want %v", err, ErrInvalidWidth)
	}
}

func TestWithHasherNilKeepsDefault(t *testing.T) {
	o := buildOptions([]Option{WithHasher(nil)})
	if _, ok := o.hasher.(XXH3); !ok {
		t.Errorf("expected default XXH3 hasher, got %T", o.hasher)
	}
}
