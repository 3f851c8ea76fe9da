package borrow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ownkit/infra/invariant"
	"ownkit/rc"
)

func requireViolation(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected invariant violation")
		require.True(t, invariant.IsViolation(r), "unexpected panic: %v", r)
	}()
	fn()
}

func TestDeref(t *testing.T) {
	x := New(20)

	g1, ok := x.Borrow()
	require.True(t, ok)
	require.Equal(t, 20, g1.Get())
	g1.Release()
	require.Equal(t, Unused, x.State())

	g2, ok := x.BorrowMut()
	require.True(t, ok, "expected to be able to borrow mut")
	g2.Set(30)
	g2.Release()
	require.Equal(t, Unused, x.State())

	g3, ok := x.Borrow()
	require.True(t, ok)
	require.Equal(t, Shared(1), x.State())

	// g3 is still outstanding
	_, ok = x.BorrowMut()
	require.False(t, ok)
	require.Equal(t, Shared(1), x.State())
	require.Equal(t, 30, g3.Get())

	g4, ok := x.Borrow()
	require.True(t, ok)
	require.Equal(t, 30, g4.Get())
	g3.Release()
	g4.Release()
	require.Equal(t, Unused, x.State())
}

func TestTwoSharedGuards(t *testing.T) {
	x := New("foo")

	g1, ok1 := x.Borrow()
	g2, ok2 := x.Borrow()
	require.True(t, ok1)
	require.True(t, ok2)
	require.Equal(t, Shared(2), x.State())

	g1.Release()
	require.Equal(t, Shared(1), x.State())
	g2.Release()
	require.Equal(t, Unused, x.State())
}

func TestExclusiveBlocksEverything(t *testing.T) {
	x := New(1)
	g, ok := x.BorrowMut()
	require.True(t, ok)

	for i := 0; i < 3; i++ {
		s, ok := x.Borrow()
		require.False(t, ok)
		require.Nil(t, s)
		m, ok := x.BorrowMut()
		require.False(t, ok)
		require.Nil(t, m)
		require.Equal(t, Exclusive, x.State())
	}

	g.Release()
	_, ok = x.BorrowMut()
	require.True(t, ok)
}

func TestDeferredAndEarlyReleaseTransitionOnce(t *testing.T) {
	x := New(0)
	other, _ := x.Borrow()

	func() {
		g, ok := x.Borrow()
		require.True(t, ok)
		defer g.Release()
		require.Equal(t, Shared(2), x.State())
		g.Release()
		require.Equal(t, Shared(1), x.State())
	}()
	require.Equal(t, Shared(1), x.State())
	other.Release()

	func() {
		g, ok := x.BorrowMut()
		require.True(t, ok)
		defer g.Release()
		g.Release()
	}()
	require.Equal(t, Unused, x.State())
}

func TestUpdate(t *testing.T) {
	x := New([]int{1})
	g, ok := x.BorrowMut()
	require.True(t, ok)
	g.Update(func(v *[]int) { *v = append(*v, 2) })
	require.Equal(t, []int{1, 2}, g.Get())
	g.Release()
}

func TestUseOfReleasedGuardIsFatal(t *testing.T) {
	x := New(1)
	s, _ := x.Borrow()
	s.Release()
	requireViolation(t, func() { s.Get() })

	m, _ := x.BorrowMut()
	m.Release()
	requireViolation(t, func() { m.Get() })
	requireViolation(t, func() { m.Set(2) })
	requireViolation(t, func() { m.Update(func(*int) {}) })
}

func TestReleaseInWrongStateIsFatal(t *testing.T) {
	x := New(1)
	s, _ := x.Borrow()
	x.state.Set(Unused)
	requireViolation(t, func() { s.Release() })

	y := New(1)
	m, _ := y.BorrowMut()
	y.state.Set(Shared(1))
	requireViolation(t, func() { m.Release() })

	z := New(1)
	s, _ = z.Borrow()
	z.state.Set(Exclusive)
	requireViolation(t, func() { s.Release() })
}

func TestTryReplace(t *testing.T) {
	x := New(1)
	old, ok := x.TryReplace(2)
	require.True(t, ok)
	require.Equal(t, 1, old)

	g, _ := x.Borrow()
	_, ok = x.TryReplace(3)
	require.False(t, ok)
	require.Equal(t, 2, g.Get())
	g.Release()
}

func TestZeroCellIsUnused(t *testing.T) {
	var x Cell[int]
	require.Equal(t, Unused, x.State())
	g, ok := x.BorrowMut()
	require.True(t, ok)
	g.Release()
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Unused", Unused.String())
	assert.Equal(t, "Exclusive", Exclusive.String())
	assert.Equal(t, "Shared(3)", Shared(3).String())
	assert.Equal(t, "State(-4)", State(-4).String())
	assert.Equal(t, 3, Shared(3).Readers())
	assert.Zero(t, Exclusive.Readers())
}

func TestSharedMutationThroughBox(t *testing.T) {
	a := rc.New(New(5))
	b := a.Clone()
	defer a.Drop()
	defer b.Drop()

	g, ok := a.Get().BorrowMut()
	require.True(t, ok)
	g.Set(6)

	_, ok = b.Get().Borrow()
	require.False(t, ok)
	g.Release()

	r, ok := b.Get().Borrow()
	require.True(t, ok)
	defer r.Release()
	require.Equal(t, 6, r.Get())
}
