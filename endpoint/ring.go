package endpoint

// Ring is a fixed-capacity history that evicts its oldest entry when full.
// It is not safe for concurrent use; callers hold the owning endpoint's lock.
type Ring[T any] struct {
	items []T
	start int
	size  int
}

// NewRing creates a ring holding at most capacity entries. capacity must be positive.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		panic("endpoint: ring capacity must be positive")
	}
	return &Ring[T]{items: make([]T, capacity)}
}

// Push appends v, evicting the oldest entry if the ring is full.
func (r *Ring[T]) Push(v T) {
	if r.size < len(r.items) {
		r.items[(r.start+r.size)%len(r.items)] = v
		r.size++
		return
	}
	r.items[r.start] = v
	r.start = (r.start + 1) % len(r.items)
}

// Len returns the number of stored entries.
func (r *Ring[T]) Len() int {
	return r.size
}

// Cap returns the maximum number of entries.
func (r *Ring[T]) Cap() int {
	return len(r.items)
}

// Items returns the entries from oldest to newest.
func (r *Ring[T]) Items() []T {
	out := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.items[(r.start+i)%len(r.items)]
	}
	return out
}
