package borrow

import "testing"

func BenchmarkBorrowRelease(b *testing.B) {
	x := New(42)
	for i := 0; i < b.N; i++ {
		g, _ := x.Borrow()
		_ = g.Get()
		g.Release()
	}
}

func BenchmarkBorrowMutRelease(b *testing.B) {
	x := New(0)
	for i := 0; i < b.N; i++ {
		g, _ := x.BorrowMut()
		g.Set(i)
		g.Release()
	}
}
