package rc

import (
	"testing"

	"ownkit/infra/heap"
)

func BenchmarkCloneDrop(b *testing.B) {
	x := New(42)
	defer x.Drop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x.Clone().Drop()
	}
}

func BenchmarkNewDropArena(b *testing.B) {
	a := heap.NewArena[int]()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NewIn(a, i).Drop()
	}
}

func BenchmarkNewDropStandalone(b *testing.B) {
	for i := 0; i < b.N; i++ {
		New(i).Drop()
	}
}
