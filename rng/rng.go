package rng

import "math"

// Source is a seeded pseudo-random stream.
// It is not safe for concurrent use; the owning session serialises access.
type Source struct {
	seed int64
}

// New creates a new Source starting at the given seed.
func New(seed int64) *Source {
	return &Source{seed: seed}
}

// Next returns the next value in [0, 1) and advances the cursor by one.
func (s *Source) Next() float64 {
	x := math.Sin(float64(s.seed)) * 10000
	s.seed++
	return x - math.Floor(x)
}

// Intn returns floor(Next() * n). n must be positive.
func (s *Source) Intn(n int) int {
	i := int(math.Floor(s.Next() * float64(n)))
	// Guards against rounding up to n for values extremely close to 1.
	if i >= n {
		i = n - 1
	}
	return i
}

// Seed returns the current cursor.
func (s *Source) Seed() int64 {
	return s.seed
}

// Reseed moves the cursor to seed.
func (s *Source) Reseed(seed int64) {
	s.seed = seed
}
