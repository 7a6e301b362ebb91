package randombag

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Snapshot is a snapshot of a randomizer's state. It should be treated as a
// 100% immutable value. It exists for inspection only; there is no way to
// build a randomizer back up from one.
type Snapshot[T any, R any] struct {
	ID      uuid.UUID `json:"id"`
	Pool    []T       `json:"pool"`
	Pending []R       `json:"pending"`
}

var _ json.Marshaler = Snapshot[int, int]{}

// MarshalJSON takes a snapshot, and serializes it as JSON. All nil slices
// will automatically be allocated to ensure they don't get serialized as JSON
// null.
func (s Snapshot[T, R]) MarshalJSON() ([]byte, error) {
	snapCopy := struct {
		ID      uuid.UUID `json:"id"`
		Pool    []T       `json:"pool"`
		Pending []R       `json:"pending"`
	}{
		ID:      s.ID,
		Pool:    s.Pool,
		Pending: s.Pending,
	}
	if snapCopy.Pool == nil {
		snapCopy.Pool = []T{}
	}
	if snapCopy.Pending == nil {
		snapCopy.Pending = []R{}
	}

	return json.Marshal(snapCopy)
}
