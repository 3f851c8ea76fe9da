package invariant

import "github.com/cockroachdb/errors"

// Violation panics with an assertion failure built from format and args.
func Violation(format string, args ...any) {
	panic(errors.AssertionFailedWithDepthf(1, format, args...))
}

// IsViolation reports whether a recovered panic value came from Violation.
func IsViolation(r any) bool {
	err, ok := r.(error)
	if !ok {
		return false
	}
	return errors.HasAssertionFailure(err)
}

// Recover converts a recovered panic value back into an error when it is an
// invariant violation. Any other panic is re-raised.
//
//	defer func() { err = invariant.Recover(recover()) }()
func Recover(r any) error {
	if r == nil {
		return nil
	}
	if !IsViolation(r) {
		panic(r)
	}
	return r.(error)
}
