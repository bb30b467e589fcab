package tally

// UpdatePolicy selects how a SpectralBloomFilter increments its counters.
type UpdatePolicy uint8

const (
	// MinimalIncrease increments only the probes currently holding the
	// minimum value (conservative update).
	MinimalIncrease UpdatePolicy = iota
	// MinimumSelection increments every distinct probe position.
	MinimumSelection
)

func (p UpdatePolicy) String() string {
	switch p {
	case MinimalIncrease:
		return "minimal-increase"
	case MinimumSelection:
		return "minimum-selection"
	default:
		return "unknown"
	}
}

// Option configures a sketch or hash family.
type Option func(*options)

type options struct {
	hasher Hasher
	policy UpdatePolicy
}

// WithHasher sets the hash function used to derive probe positions.
// Defaults to XXH3.
func WithHasher(h Hasher) Option {
	return func(o *options) {
		if h != nil {
			o.hasher = h
		}
	}
}

// WithUpdatePolicy sets the update policy of a SpectralBloomFilter.
// CountMinSketch ignores it.
func WithUpdatePolicy(p UpdatePolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

func buildOptions(opts []Option) options {
	o := options{hasher: XXH3{}, policy: MinimalIncrease}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
