package borrow

import (
	"math"

	"ownkit/cell"
	"ownkit/infra/invariant"
)

// Cell holds a value of type T behind a run-time borrow check. The zero
// Cell holds the zero T and is Unused.
type Cell[T any] struct {
	value T
	state cell.Cell[State]
}

// New returns an Unused Cell holding value.
func New[T any](value T) *Cell[T] {
	return &Cell[T]{value: value}
}

// State returns the current borrow state.
func (c *Cell[T]) State() State {
	return cell.Get(&c.state)
}

// Borrow grants shared read access. It fails while an ExclusiveGuard is
// outstanding.
func (c *Cell[T]) Borrow() (*SharedGuard[T], bool) {
	switch s := c.State(); {
	case s == Exclusive:
		return nil, false
	case s == Unused:
		c.state.Set(Shared(1))
	case s > 0:
		if s == math.MaxInt {
			invariant.Violation("borrow: shared borrow count overflow")
		}
		c.state.Set(s + 1)
	default:
		invariant.Violation("borrow: corrupt state %s", s)
	}
	return &SharedGuard[T]{cell: c}, true
}

// BorrowMut grants exclusive read-write access. It fails while any guard is
// outstanding.
func (c *Cell[T]) BorrowMut() (*ExclusiveGuard[T], bool) {
	if c.State() != Unused {
		return nil, false
	}
	c.state.Set(Exclusive)
	return &ExclusiveGuard[T]{cell: c}, true
}

// TryReplace swaps in value and returns the previous one, provided no guard
// is outstanding.
func (c *Cell[T]) TryReplace(value T) (T, bool) {
	if c.State() != Unused {
		var zero T
		return zero, false
	}
	old := c.value
	c.value = value
	return old, true
}
