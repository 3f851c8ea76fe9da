package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFreeRingBasic(t *testing.T) {
	r := newFreeRing[int](4)
	b1 := &Block[int]{}
	b2 := &Block[int]{}

	require.True(t, r.Push(b1))
	require.True(t, r.Push(b2))
	require.Equal(t, 2, r.Len())

	require.Same(t, b1, r.Pop())
	require.Same(t, b2, r.Pop())
	require.Nil(t, r.Pop())
}

func TestFreeRingFull(t *testing.T) {
	r := newFreeRing[int](2)
	require.True(t, r.Push(&Block[int]{}))
	require.True(t, r.Push(&Block[int]{}))
	require.False(t, r.Push(&Block[int]{}))
	require.Equal(t, r.Cap(), r.Len())

	r.Pop()
	require.True(t, r.Push(&Block[int]{}))
}

func TestFreeRingSizeMustBePowerOfTwo(t *testing.T) {
	require.Panics(t, func() { newFreeRing[int](3) })
	require.Panics(t, func() { newFreeRing[int](0) })
}
