// Package shuffler defines a tool for shuffling pools of items in
// pseudo-random, seed-based ways.
package shuffler

import (
	"math/rand"
	"time"
)

// Source is the only thing a shuffle needs from a random number generator:
// a uniformly distributed int in the half-open interval [0, n). Both
// *rand.Rand and *Shuffler satisfy it.
type Source interface {
	Intn(n int) int
}

// Shuffler provides seed-based random logic for shuffling. It is not safe for
// concurrent use, and is not suitable for anything cryptographic.
type Shuffler struct {
	rng *rand.Rand
}

var _ Source = &Shuffler{}

// New creates a new instance of a Shuffler. Two shufflers created with the same
// seed will produce the same permutations, in the same order.
func New(rngSeed int64) *Shuffler {
	return &Shuffler{
		rng: rand.New(rand.NewSource(rngSeed)),
	}
}

// NewFromTime creates a Shuffler seeded with the current time.
func NewFromTime() *Shuffler {
	return New(time.Now().UnixNano())
}

// Intn returns a pseudo-random int in [0, n). It panics if n <= 0.
func (s *Shuffler) Intn(n int) int {
	return s.rng.Intn(n)
}

// Shuffled returns a shuffled copy of items. The input slice is never modified.
func Shuffled[T any](src Source, items []T) []T {
	shuffled := make([]T, len(items))
	copy(shuffled, items)
	ShuffleInPlace(src, shuffled)
	return shuffled
}

// ShuffleInPlace shuffles a slice in place with the Fisher-Yates algorithm.
// Every permutation is equally likely, assuming src is uniform.
func ShuffleInPlace[T any](src Source, items []T) {
	for i := len(items); i > 1; i-- {
		randomIndex := src.Intn(i)
		items[i-1], items[randomIndex] = items[randomIndex], items[i-1]
	}
}
