package registry

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Parkreiner/randombag"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRegistryKeepsBagsApart(t *testing.T) {
	r := NewIdentity[string](WithSeed(1))
	first := r.Create([]string{"A", "B", "C"})
	second := r.Create([]string{"X", "Y"})
	require.NotEqual(t, first, second)
	require.Equal(t, 2, r.Len())
	require.Equal(t, []uuid.UUID{first, second}, r.IDs())

	peekedFirst, err := r.Peek(first, 3)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"A", "B", "C"}, peekedFirst)

	require.NoError(t, r.RemoveIf(second, func(v string) bool { return v == "X" }))
	got, err := r.Next(second)
	require.NoError(t, err)
	require.Equal(t, "Y", got)

	// The first bag never saw the removal.
	again, err := r.Peek(first, 3)
	require.NoError(t, err)
	require.Equal(t, peekedFirst, again)
}

func TestRegistryUnknownBag(t *testing.T) {
	r := NewIdentity[int](WithSeed(2))
	missing := uuid.New()

	_, err := r.Next(missing)
	require.ErrorIs(t, err, ErrUnknownBag)
	require.Contains(t, err.Error(), missing.String())

	_, err = r.Peek(missing, 1)
	require.ErrorIs(t, err, ErrUnknownBag)
	require.ErrorIs(t, r.Add(missing, 1), ErrUnknownBag)
	require.ErrorIs(t, r.RemoveIf(missing, func(int) bool { return true }), ErrUnknownBag)
	require.ErrorIs(t, r.Delete(missing), ErrUnknownBag)

	_, err = r.Get(missing)
	require.ErrorIs(t, err, ErrUnknownBag)
	_, err = r.Snapshot(missing)
	require.ErrorIs(t, err, ErrUnknownBag)
}

func TestRegistryEmptyPool(t *testing.T) {
	r := NewIdentity[string](WithSeed(3))
	id := r.Create(nil)

	peeked, err := r.Peek(id, 4)
	require.NoError(t, err)
	require.Empty(t, peeked)

	_, err = r.Next(id)
	require.ErrorIs(t, err, randombag.ErrEmptyPool)

	require.NoError(t, r.Add(id, "A"))
	got, err := r.Next(id)
	require.NoError(t, err)
	require.Equal(t, "A", got)
}

func TestRegistryTransform(t *testing.T) {
	r := New(strings.ToLower, WithSeed(4))
	id := r.Create([]string{"I", "O"})

	peeked, err := r.Peek(id, 2)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"i", "o"}, peeked)

	snap, err := r.Snapshot(id)
	require.NoError(t, err)
	require.Equal(t, id, snap.ID)
	require.Equal(t, []string{"I", "O"}, snap.Pool)
	require.Equal(t, peeked, snap.Pending)
}

func TestRegistryHandles(t *testing.T) {
	r := NewIdentity[string](WithSeed(5))
	id := r.Create([]string{"A", "B"})

	h, err := r.Get(id)
	require.NoError(t, err)

	h.Add("C")
	h.RemoveIf(func(v string) bool { return v == "A" })
	peeked := h.Peek(2)
	require.ElementsMatch(t, []string{"B", "C"}, peeked)

	got, err := h.Next()
	require.NoError(t, err)
	require.Equal(t, peeked[0], got)

	require.NoError(t, r.Delete(id))
	require.Zero(t, r.Len())

	_, err = h.Next()
	require.ErrorIs(t, err, ErrUnknownBag)
	require.Empty(t, h.Peek(3))
	require.NotPanics(t, func() {
		h.Add("D")
		h.RemoveIf(func(string) bool { return true })
	})
}

func TestRegistryDeleteIdle(t *testing.T) {
	r := NewIdentity[int](WithSeed(6))
	stale := r.Create([]int{1})
	cutoff := time.Now().Add(time.Millisecond)
	time.Sleep(2 * time.Millisecond)
	fresh := r.Create([]int{2})

	require.Equal(t, 1, r.DeleteIdle(cutoff))
	require.Equal(t, []uuid.UUID{fresh}, r.IDs())

	_, err := r.Next(stale)
	require.ErrorIs(t, err, ErrUnknownBag)
}

func TestRegistryForwardsEvents(t *testing.T) {
	var mtx sync.Mutex
	var bagIDs []uuid.UUID
	r := NewIdentity[int](WithSeed(7), WithEventSink(randombag.EventSinkFunc(func(e randombag.Event) {
		mtx.Lock()
		defer mtx.Unlock()
		bagIDs = append(bagIDs, e.BagID)
	})))

	id := r.Create([]int{1, 2})
	_, err := r.Next(id)
	require.NoError(t, err)

	require.Equal(t, []uuid.UUID{id, id}, bagIDs)
}

func TestRegistryConcurrentDraws(t *testing.T) {
	pool := []int{0, 1, 2, 3, 4, 5, 6}
	r := NewIdentity[int](WithSeed(8))
	id := r.Create(pool)

	const workers = 8
	const drawsPerWorker = 7 * 50

	var wg sync.WaitGroup
	results := make(chan int, workers*drawsPerWorker)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range drawsPerWorker {
				v, err := r.Next(id)
				if err != nil {
					t.Error(err)
					return
				}
				results <- v
			}
		}()
	}
	wg.Wait()
	close(results)

	// Draws get interleaved between workers, but whole bags are still
	// consumed, so every item shows up the same number of times.
	counts := make(map[int]int)
	for v := range results {
		counts[v]++
	}
	for _, v := range pool {
		require.Equal(t, workers*drawsPerWorker/len(pool), counts[v])
	}
}

func TestNewPanicsOnNilTransform(t *testing.T) {
	require.Panics(t, func() {
		New[int, int](nil)
	})
}
