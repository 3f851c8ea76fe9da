// Package invariant reports violated internal invariants.
//
// A violation means the bookkeeping of a primitive is corrupt (a count
// that would underflow, a guard released in the wrong state, a handle used
// after its block was freed). These are never returned as errors: the
// caller cannot repair shared state it does not own, so Violation panics
// with an assertion failure and an unrecovered panic aborts the program.
package invariant
