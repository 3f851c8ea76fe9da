package borrow

import "strconv"

// State is the borrow state of a Cell: Unused, Exclusive, or Shared(n)
// with n outstanding shared guards.
type State int

const (
	Exclusive State = -1
	Unused    State = 0
)

// Shared returns the state with n shared guards outstanding. n must be at
// least 1.
func Shared(n int) State {
	return State(n)
}

// Readers returns the number of outstanding shared guards.
func (s State) Readers() int {
	if s < 0 {
		return 0
	}
	return int(s)
}

func (s State) String() string {
	switch {
	case s == Unused:
		return "Unused"
	case s == Exclusive:
		return "Exclusive"
	case s > 0:
		return "Shared(" + strconv.Itoa(int(s)) + ")"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}
