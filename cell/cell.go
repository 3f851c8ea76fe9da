// Package cell provides Cell, a mutable slot for a single logical owner.
//
// A Cell is changed through a shared *Cell by replacing its value
// wholesale. It never hands out a pointer to its contents, so a read can
// only ever produce a copy, and Get is restricted to Copyable types.
//
// A Cell is not safe for concurrent use.
package cell

// Copyable is satisfied by types whose values are duplicated completely by
// assignment: no shared backing storage and nothing to clean up.
type Copyable interface {
	~bool |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64 | ~complex64 | ~complex128 |
		~string
}

// Cell holds one value of type T.
type Cell[T any] struct {
	value T
}

// New returns a Cell holding value.
func New[T any](value T) *Cell[T] {
	return &Cell[T]{value: value}
}

// Set replaces the value.
func (c *Cell[T]) Set(value T) {
	c.value = value
}

// Replace stores value and returns the previous one.
func (c *Cell[T]) Replace(value T) T {
	old := c.value
	c.value = value
	return old
}

// Take returns the value and leaves the zero value in its place.
func (c *Cell[T]) Take() T {
	var zero T
	return c.Replace(zero)
}

// Get returns a copy of the value held by c.
func Get[T Copyable](c *Cell[T]) T {
	return c.value
}
