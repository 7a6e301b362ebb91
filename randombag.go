// Package randombag contains the main domain types (and associated helper
// values and functions) for bag randomizers: generators that hand out every
// item in a pool exactly once, in a random order, before any item repeats.
package randombag

import "errors"

// ErrEmptyPool is returned when a randomizer is asked to produce a new bag,
// but its pool doesn't have any items in it. It can only be fixed by adding
// items back to the pool.
var ErrEmptyPool = errors.New("randombag: pool has no items to queue")

// Randomizer is a stateful source of fair random draws over a pool of items of
// type T. Every value handed back is the representation R produced by the
// randomizer's transform for a given item.
type Randomizer[T any, R any] interface {
	// Next consumes and returns the next pending draw. If nothing is pending,
	// a new bag is generated from the current pool first. Returns ErrEmptyPool
	// when that isn't possible, in which case the randomizer is left
	// untouched.
	Next() (R, error)
	// Peek returns the next n draws without consuming them. An empty pool
	// always produces an empty slice, even if Next would fail.
	Peek(n int) []R
	// Add makes a value eligible for every bag generated after the call.
	// Already-queued draws are not affected.
	Add(value T)
	// RemoveIf removes every pool item that satisfies the predicate, along with
	// every pending draw that came from a matching item.
	RemoveIf(predicate func(T) bool)
}

// Identity is the default transform for randomizers whose representation type
// is the same as their item type.
func Identity[T any](t T) T {
	return t
}
