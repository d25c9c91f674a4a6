package dice

import "math/rand"

// RNG wraps math/rand.Rand so callers can inject a seeded generator for
// deterministic tests. A nil RNG falls back to the process-wide generator,
// which is what gameplay uses: one generator per process, every call
// independent.
type RNG struct {
	src *rand.Rand
}

// NewRNG creates a deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	return &RNG{src: rand.New(rand.NewSource(seed))}
}

// Die returns a random integer in [1, sides].
func (r *RNG) Die(sides int) int {
	if r == nil || r.src == nil {
		return rand.Intn(sides) + 1
	}
	return r.src.Intn(sides) + 1
}

// Intn returns a random integer in [0, n).
func (r *RNG) Intn(n int) int {
	if r == nil || r.src == nil {
		return rand.Intn(n)
	}
	return r.src.Intn(n)
}
