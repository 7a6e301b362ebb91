// Package bag defines the minimal implementation of a stateful bag randomizer,
// in the style of the Tetris "7-bag" piece generator.
package bag

import (
	"fmt"
	"time"

	"github.com/Parkreiner/randombag"
	"github.com/Parkreiner/randombag/shuffler"
	"github.com/google/uuid"
)

// pendingDraw keeps the original item next to its representation, so that
// RemoveIf can match queued draws against the item instead of whatever the
// transform turned it into.
type pendingDraw[T any, R any] struct {
	value T
	repr  R
}

// Bag is an implementation of the randombag.Randomizer interface. A Bag is not
// safe for concurrent use; callers that share one across goroutines must
// serialize every call themselves (the registry package does this).
type Bag[T any, R any] struct {
	id        uuid.UUID
	pool      []T
	pending   []pendingDraw[T, R]
	transform func(T) R
	source    shuffler.Source
	sinks     []randombag.EventSink
}

var _ randombag.Randomizer[string, int] = &Bag[string, int]{}

// New creates a new Bag. The pool is copied, so the caller is free to reuse the
// slice afterwards. The transform must be a pure function; its output for
// each item is computed once, when the item gets queued.
func New[T any, R any](pool []T, transform func(T) R, opts ...Option) *Bag[T, R] {
	if transform == nil {
		panic("bag: transform must not be nil")
	}

	o := buildOptions(opts)
	b := &Bag[T, R]{
		id:        o.id,
		pool:      append([]T(nil), pool...),
		pending:   nil,
		transform: transform,
		source:    o.source,
		sinks:     o.sinks,
	}
	return b
}

// NewIdentity creates a Bag that hands back the pool's items as-is.
func NewIdentity[T any](pool []T, opts ...Option) *Bag[T, T] {
	return New(pool, randombag.Identity[T], opts...)
}

// ID returns the ID the bag was created with. It is included in every event
// the bag dispatches.
func (b *Bag[T, R]) ID() uuid.UUID {
	return b.id
}

// Pool returns a copy of the items that will be used for the next bag.
func (b *Bag[T, R]) Pool() []T {
	return append([]T{}, b.pool...)
}

// Pending returns how many draws are queued up and waiting to be consumed.
func (b *Bag[T, R]) Pending() int {
	return len(b.pending)
}

// queueNextBag shuffles a copy of the whole pool, and appends it to the end
// of the pending queue. This is the only place new draws are created.
func (b *Bag[T, R]) queueNextBag() error {
	if len(b.pool) == 0 {
		return randombag.ErrEmptyPool
	}

	shuffled := shuffler.Shuffled(b.source, b.pool)
	for _, v := range shuffled {
		b.pending = append(b.pending, pendingDraw[T, R]{
			value: v,
			repr:  b.transform(v),
		})
	}

	b.dispatch(randombag.EventTypeBagQueued, "queued bag of %d items", len(shuffled))
	return nil
}

// Next consumes the next pending draw, queueing up a new bag first if nothing
// is pending. If the pool is empty at that point, ErrEmptyPool is returned and
// nothing about the bag changes.
func (b *Bag[T, R]) Next() (R, error) {
	if len(b.pending) == 0 {
		if err := b.queueNextBag(); err != nil {
			var zero R
			b.dispatch(randombag.EventTypeError, "%v", err)
			return zero, err
		}
	}

	next := b.pending[0]
	// Zero out the slot so the backing array doesn't keep the item alive.
	b.pending[0] = pendingDraw[T, R]{}
	b.pending = b.pending[1:]

	b.dispatch(randombag.EventTypeDraw, "drew %v", next.value)
	return next.repr, nil
}

// Peek returns the representations for the next n draws, without consuming
// any of them. As many bags as needed get queued to satisfy n. An empty pool
// always results in an empty slice, even though Next would fail.
func (b *Bag[T, R]) Peek(n int) []R {
	if len(b.pool) == 0 || n <= 0 {
		return []R{}
	}

	for len(b.pending) < n {
		// The pool was checked above, so this can't fail.
		_ = b.queueNextBag()
	}

	peeked := make([]R, n)
	for i := range peeked {
		peeked[i] = b.pending[i].repr
	}
	return peeked
}

// Add appends a value to the pool. It only becomes eligible for bags queued
// after the call; draws that are already pending are left alone.
func (b *Bag[T, R]) Add(value T) {
	b.pool = append(b.pool, value)
	b.dispatch(randombag.EventTypeItemAdded, "added %v", value)
}

// RemoveIf removes every pool item that satisfies the predicate, as well as
// every pending draw whose item satisfies it, no matter where it sits in the
// queue. Everything else keeps its relative order; nothing gets reshuffled.
func (b *Bag[T, R]) RemoveIf(predicate func(T) bool) {
	keptPool := b.pool[:0]
	for _, v := range b.pool {
		if !predicate(v) {
			keptPool = append(keptPool, v)
		}
	}
	clear(b.pool[len(keptPool):])
	removedFromPool := len(b.pool) - len(keptPool)
	b.pool = keptPool

	keptPending := b.pending[:0]
	for _, d := range b.pending {
		if !predicate(d.value) {
			keptPending = append(keptPending, d)
		}
	}
	clear(b.pending[len(keptPending):])
	removedFromQueue := len(b.pending) - len(keptPending)
	b.pending = keptPending

	b.dispatch(
		randombag.EventTypeItemsRemoved,
		"removed %d pool items and %d pending draws", removedFromPool, removedFromQueue,
	)
}

// Snapshot captures the pool and the representations of every pending draw,
// front of the queue first.
func (b *Bag[T, R]) Snapshot() randombag.Snapshot[T, R] {
	pending := make([]R, len(b.pending))
	for i, d := range b.pending {
		pending[i] = d.repr
	}

	return randombag.Snapshot[T, R]{
		ID:      b.id,
		Pool:    b.Pool(),
		Pending: pending,
	}
}

func (b *Bag[T, R]) dispatch(eventType randombag.EventType, format string, args ...any) {
	if len(b.sinks) == 0 {
		return
	}

	event := randombag.Event{
		ID:       uuid.New(),
		BagID:    b.id,
		Type:     eventType,
		Created:  time.Now(),
		PoolSize: len(b.pool),
		Pending:  len(b.pending),
		Message:  fmt.Sprintf(format, args...),
	}
	for _, sink := range b.sinks {
		sink.HandleEvent(event)
	}
}
