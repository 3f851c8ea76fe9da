package heap

import "ownkit/cell"

// Dropper is implemented by payloads that need cleanup when the last
// reference to their block goes away.
type Dropper interface {
	Drop()
}

// Block is one heap allocation: a payload plus its reference count.
type Block[T any] struct {
	value T
	count cell.Cell[uint]
	gen   uint64
	live  bool
}

// Value returns the payload.
func (b *Block[T]) Value() T { return b.value }

// Count is the block's reference count.
func (b *Block[T]) Count() *cell.Cell[uint] { return &b.count }

// Gen is bumped every time the block is freed.
func (b *Block[T]) Gen() uint64 { return b.gen }

// Live reports whether the block is allocated.
func (b *Block[T]) Live() bool { return b.live }

func (b *Block[T]) init(value T) {
	b.value = value
	b.count.Set(1)
	b.live = true
}

// retire marks the block dead and moves the payload out.
func (b *Block[T]) retire() T {
	var zero T
	value := b.value
	b.value = zero
	b.count.Set(0)
	b.gen++
	b.live = false
	return value
}

func drop[T any](value T) {
	if d, ok := any(value).(Dropper); ok {
		d.Drop()
		return
	}
	if d, ok := any(&value).(Dropper); ok {
		d.Drop()
	}
}
