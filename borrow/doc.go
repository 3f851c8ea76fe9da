// Package borrow provides Cell, a container whose read and write access is
// checked at run time.
//
// A Cell hands out either any number of SharedGuards or a single
// ExclusiveGuard, never both. A request that would break that rule is
// refused on the spot with ok == false; nothing blocks or waits. Releasing
// a guard, explicitly or through a deferred Release, gives its permission
// back:
//
//	g, ok := c.BorrowMut()
//	if !ok {
//		return errBusy
//	}
//	defer g.Release()
//	g.Set(30)
//
// Release is idempotent, so an early Release followed by the deferred one
// performs a single transition.
//
// A Cell and its guards belong to one goroutine. The state tag is a plain
// cell.Cell with no locking.
package borrow
