// Package registry keeps long-lived bag randomizers around, keyed by UUID, so
// that hosts can hold on to a handle instead of the bag itself.
package registry

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Parkreiner/randombag"
	"github.com/Parkreiner/randombag/bag"
	"github.com/Parkreiner/randombag/shuffler"
	"github.com/google/uuid"
)

// ErrUnknownBag is returned for any ID that the registry doesn't (or no longer)
// know about.
var ErrUnknownBag = errors.New("registry: unknown bag")

type registryEntry[T any, R any] struct {
	bag      *bag.Bag[T, R]
	order    uint64
	lastUsed time.Time
}

// Registry maps each ID to a different bag. All bags in a registry share one
// transform. Every call goes through a single mutex, which is what makes it
// safe to use the (otherwise unsynchronized) bags from multiple goroutines.
type Registry[T any, R any] struct {
	entries   map[uuid.UUID]*registryEntry[T, R]
	created   uint64
	transform func(T) R
	source    shuffler.Source
	sink      randombag.EventSink
	mtx       *sync.Mutex
}

// Option configures a Registry.
type Option func(*registryOptions)

type registryOptions struct {
	source shuffler.Source
	sink   randombag.EventSink
}

// WithSeed makes every bag in the registry draw from a single shuffler seeded
// with seed. Sharing is fine, because the shuffler is only ever used while
// the registry's lock is held.
func WithSeed(seed int64) Option {
	return func(o *registryOptions) {
		o.source = shuffler.New(seed)
	}
}

// WithEventSink forwards the events of every bag in the registry to sink.
func WithEventSink(sink randombag.EventSink) Option {
	return func(o *registryOptions) {
		o.sink = sink
	}
}

// New creates a new, empty Registry.
func New[T any, R any](transform func(T) R, opts ...Option) *Registry[T, R] {
	if transform == nil {
		panic("registry: transform must not be nil")
	}

	o := registryOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.source == nil {
		o.source = shuffler.NewFromTime()
	}

	return &Registry[T, R]{
		entries:   make(map[uuid.UUID]*registryEntry[T, R]),
		transform: transform,
		source:    o.source,
		sink:      o.sink,
		mtx:       &sync.Mutex{},
	}
}

// NewIdentity creates a Registry whose bags hand back their items as-is.
func NewIdentity[T any](opts ...Option) *Registry[T, T] {
	return New(randombag.Identity[T], opts...)
}

// Create builds a new bag from pool and returns the ID for it. The bag lives
// until Delete is called.
func (r *Registry[T, R]) Create(pool []T) uuid.UUID {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	id := uuid.New()
	bagOpts := []bag.Option{bag.WithID(id), bag.WithSource(r.source)}
	if r.sink != nil {
		bagOpts = append(bagOpts, bag.WithEventSink(r.sink))
	}

	r.created++
	r.entries[id] = &registryEntry[T, R]{
		bag:      bag.New(pool, r.transform, bagOpts...),
		order:    r.created,
		lastUsed: time.Now(),
	}
	return id
}

// lookup must only be called while the lock is held.
func (r *Registry[T, R]) lookup(id uuid.UUID) (*bag.Bag[T, R], error) {
	entry, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBag, id)
	}
	entry.lastUsed = time.Now()
	return entry.bag, nil
}

// Next consumes the next draw from the bag with the given ID.
func (r *Registry[T, R]) Next(id uuid.UUID) (R, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	b, err := r.lookup(id)
	if err != nil {
		var zero R
		return zero, err
	}
	return b.Next()
}

// Peek returns the next n draws from the bag with the given ID, without
// consuming them.
func (r *Registry[T, R]) Peek(id uuid.UUID, n int) ([]R, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	b, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return b.Peek(n), nil
}

// Add adds a value to the pool of the bag with the given ID.
func (r *Registry[T, R]) Add(id uuid.UUID, value T) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	b, err := r.lookup(id)
	if err != nil {
		return err
	}
	b.Add(value)
	return nil
}

// RemoveIf removes matching items from the pool and queue of the bag with the
// given ID.
func (r *Registry[T, R]) RemoveIf(id uuid.UUID, predicate func(T) bool) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	b, err := r.lookup(id)
	if err != nil {
		return err
	}
	b.RemoveIf(predicate)
	return nil
}

// Snapshot captures the state of the bag with the given ID.
func (r *Registry[T, R]) Snapshot(id uuid.UUID) (randombag.Snapshot[T, R], error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	b, err := r.lookup(id)
	if err != nil {
		return randombag.Snapshot[T, R]{}, err
	}
	return b.Snapshot(), nil
}

// Get returns call handles for the bag with the given ID. The handles take
// the registry's lock on every call, and keep working for as long as the bag
// stays registered. Once it is deleted, Next returns ErrUnknownBag, Peek
// returns an empty slice, and Add/RemoveIf do nothing.
func (r *Registry[T, R]) Get(id uuid.UUID) (bag.Handles[T, R], error) {
	r.mtx.Lock()
	_, err := r.lookup(id)
	r.mtx.Unlock()
	if err != nil {
		return bag.Handles[T, R]{}, err
	}

	return bag.Handles[T, R]{
		Next: func() (R, error) {
			return r.Next(id)
		},
		Peek: func(n int) []R {
			peeked, err := r.Peek(id, n)
			if err != nil {
				return []R{}
			}
			return peeked
		},
		Add: func(value T) {
			_ = r.Add(id, value)
		},
		RemoveIf: func(predicate func(T) bool) {
			_ = r.RemoveIf(id, predicate)
		},
	}, nil
}

// Delete drops the bag with the given ID.
func (r *Registry[T, R]) Delete(id uuid.UUID) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.entries[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBag, id)
	}
	delete(r.entries, id)
	return nil
}

// DeleteIdle drops every bag that hasn't been used since before cutoff, and
// returns how many were dropped.
func (r *Registry[T, R]) DeleteIdle(cutoff time.Time) int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	dropped := 0
	for id, entry := range r.entries {
		if entry.lastUsed.Before(cutoff) {
			delete(r.entries, id)
			dropped++
		}
	}
	return dropped
}

// Len returns how many bags are registered.
func (r *Registry[T, R]) Len() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return len(r.entries)
}

// IDs returns the IDs of every registered bag, oldest first.
func (r *Registry[T, R]) IDs() []uuid.UUID {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	ids := make([]uuid.UUID, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return cmp.Compare(r.entries[a].order, r.entries[b].order)
	})
	return ids
}
