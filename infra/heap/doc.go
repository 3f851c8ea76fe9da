// Package heap manages the blocks behind reference-counted boxes.
//
// A Block pairs a payload with its reference count. Blocks come from an
// Arena, which recycles freed blocks through a fixed-size free ring and
// stamps every block with a generation so that a stale handle to a
// recycled block is detected instead of silently aliasing the new payload.
//
// Arenas are single-goroutine: nothing here is locked or atomic.
package heap
