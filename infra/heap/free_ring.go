package heap

// freeRing is a bounded FIFO of freed blocks awaiting reuse.
type freeRing[T any] struct {
	head uint64
	tail uint64
	buf  []*Block[T]
	mask uint64
}

func newFreeRing[T any](size uint64) *freeRing[T] {
	if size == 0 || size&(size-1) != 0 {
		panic("heap: free ring size must be a power of two")
	}
	return &freeRing[T]{
		buf:  make([]*Block[T], size),
		mask: size - 1,
	}
}

// Push returns false if the ring is full.
func (r *freeRing[T]) Push(b *Block[T]) bool {
	if r.head-r.tail == uint64(len(r.buf)) {
		return false
	}
	r.buf[r.head&r.mask] = b
	r.head++
	return true
}

// Pop returns nil if the ring is empty.
func (r *freeRing[T]) Pop() *Block[T] {
	if r.tail == r.head {
		return nil
	}
	b := r.buf[r.tail&r.mask]
	r.buf[r.tail&r.mask] = nil
	r.tail++
	return b
}

func (r *freeRing[T]) Len() int { return int(r.head - r.tail) }
func (r *freeRing[T]) Cap() int { return len(r.buf) }
