package borrow

import "ownkit/infra/invariant"

// SharedGuard is read access to a Cell, valid until Release.
type SharedGuard[T any] struct {
	cell *Cell[T]
}

// Get returns the value.
func (g *SharedGuard[T]) Get() T {
	return g.live().value
}

// Release gives the shared borrow back. Later calls are no-ops.
func (g *SharedGuard[T]) Release() {
	c := g.cell
	if c == nil {
		return
	}
	g.cell = nil

	switch s := c.State(); {
	case s == Shared(1):
		c.state.Set(Unused)
	case s > 1:
		c.state.Set(s - 1)
	default:
		invariant.Violation("borrow: shared guard released in state %s", s)
	}
}

func (g *SharedGuard[T]) live() *Cell[T] {
	c := g.cell
	if c == nil {
		invariant.Violation("borrow: use of released shared guard")
	}
	if s := c.State(); s <= 0 {
		invariant.Violation("borrow: shared guard held in state %s", s)
	}
	return c
}

// ExclusiveGuard is read-write access to a Cell, valid until Release.
type ExclusiveGuard[T any] struct {
	cell *Cell[T]
}

// Get returns the value.
func (g *ExclusiveGuard[T]) Get() T {
	return g.live().value
}

// Set replaces the value.
func (g *ExclusiveGuard[T]) Set(value T) {
	g.live().value = value
}

// Update calls fn with a pointer to the value. The pointer must not be
// kept after fn returns.
func (g *ExclusiveGuard[T]) Update(fn func(v *T)) {
	fn(&g.live().value)
}

// Release gives the exclusive borrow back. Later calls are no-ops.
func (g *ExclusiveGuard[T]) Release() {
	c := g.cell
	if c == nil {
		return
	}
	g.cell = nil

	if s := c.State(); s != Exclusive {
		invariant.Violation("borrow: exclusive guard released in state %s", s)
	}
	c.state.Set(Unused)
}

func (g *ExclusiveGuard[T]) live() *Cell[T] {
	c := g.cell
	if c == nil {
		invariant.Violation("borrow: use of released exclusive guard")
	}
	if s := c.State(); s != Exclusive {
		invariant.Violation("borrow: exclusive guard held in state %s", s)
	}
	return c
}
