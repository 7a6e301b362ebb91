package bag

// Handles exposes a bag's four operations as plain functions, for hosts that
// want to pass callbacks around instead of the bag itself. Every handle is
// bound to the same underlying bag, so the bag is never rebuilt no matter how
// many times the handles are copied or re-fetched.
type Handles[T any, R any] struct {
	Next     func() (R, error)
	Peek     func(n int) []R
	Add      func(value T)
	RemoveIf func(predicate func(T) bool)
}

// Handles returns call handles bound to b.
func (b *Bag[T, R]) Handles() Handles[T, R] {
	return Handles[T, R]{
		Next:     b.Next,
		Peek:     b.Peek,
		Add:      b.Add,
		RemoveIf: b.RemoveIf,
	}
}
