// Package rc provides Box, a reference-counted pointer to a shared heap
// block.
//
// Every Box handle referencing a block counts toward the block's
// reference count. Clone adds a handle; Drop removes one. The block and its
// payload are destroyed on the Drop that takes the count from 1 to 0.
//
// A Box only ever gives read access to its payload. To share mutable state,
// box a *borrow.Cell and borrow through it.
//
// Boxes are not safe for concurrent use: the count is a plain cell.Cell.
package rc

import (
	"math"

	"ownkit/cell"
	"ownkit/infra/heap"
	"ownkit/infra/invariant"
)

// Box is one handle on a reference-counted block.
type Box[T any] struct {
	arena *heap.Arena[T]
	block *heap.Block[T]
	gen   uint64
}

// New allocates a standalone block holding value.
func New[T any](value T) *Box[T] {
	return NewIn(nil, value)
}

// NewIn allocates the block from a. The block is returned to a when the
// last handle is dropped.
func NewIn[T any](a *heap.Arena[T], value T) *Box[T] {
	b := a.Alloc(value)
	return &Box[T]{arena: a, block: b, gen: b.Gen()}
}

// PtrEq reports whether a and b reference the same block.
func PtrEq[T any](a, b *Box[T]) bool {
	return a.live() == b.live()
}

// Clone returns a new handle on the same block.
func (r *Box[T]) Clone() *Box[T] {
	b := r.live()
	n := cell.Get(b.Count())
	if n == math.MaxUint {
		invariant.Violation("rc: reference count overflow")
	}
	b.Count().Set(n + 1)
	return &Box[T]{arena: r.arena, block: b, gen: r.gen}
}

// Get returns the payload.
func (r *Box[T]) Get() T {
	return r.live().Value()
}

// Count returns the number of live handles on the block.
func (r *Box[T]) Count() uint {
	return cell.Get(r.live().Count())
}

// Drop releases this handle. The last handle frees the block. Dropping a
// handle twice is a no-op.
func (r *Box[T]) Drop() {
	if r.block == nil {
		return
	}
	b := r.live()
	r.block = nil

	n := cell.Get(b.Count())
	if n == 1 {
		b.Count().Set(0)
		r.arena.Free(b)
		return
	}
	b.Count().Set(n - 1)
}

// TryUnwrap moves the payload out if r is the only handle on its block.
// On success the block is freed without destroying the payload and r is
// dropped. Otherwise nothing changes.
func (r *Box[T]) TryUnwrap() (T, bool) {
	b := r.live()
	if cell.Get(b.Count()) != 1 {
		var zero T
		return zero, false
	}
	r.block = nil
	b.Count().Set(0)
	return r.arena.Unwrap(b), true
}

// live returns the block behind r, failing if r was dropped or the block
// no longer belongs to r.
func (r *Box[T]) live() *heap.Block[T] {
	b := r.block
	if b == nil {
		invariant.Violation("rc: use of dropped box")
	}
	if !b.Live() || b.Gen() != r.gen {
		invariant.Violation("rc: use after free (handle gen %d, block gen %d)", r.gen, b.Gen())
	}
	if cell.Get(b.Count()) == 0 {
		invariant.Violation("rc: zero reference count on live handle")
	}
	return b
}
