package pool

import (
	"sync"
	"testing"
)

func TestSlabGet_Length(t *testing.T) {
	var s Slab[uint32]
	tests := []struct {
		name string
		n    int
	}{
		{"zero", 0},
		{"small", 10},
		{"1K", Size1K},
		{"3000", 3000},
		{"64K", Size64K},
		{"1M", Size1M},
		{"above1M", Size1M + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := s.Get(tt.n)
			if len(b) != tt.n {
				t.Errorf("Get(%d): len = %d, want %d", tt.n, len(b), tt.n)
			}
			if cap(b) < tt.n {
				t.Errorf("Get(%d): cap = %d, want >= %d", tt.n, cap(b), tt.n)
			}
			s.Put(b)
		})
	}
}

func TestSlabGet_Zeroed(t *testing.T) {
	var s Slab[uint8]
	for cycle := 0; cycle < 10; cycle++ {
		b := s.Get(4096)
		for i, v := range b {
			if v != 0 {
				t.Fatalf("cycle %d: b[%d] = %d, want 0", cycle, i, v)
			}
		}
		for i := range b {
			b[i] = 0xAB
		}
		s.Put(b)
	}
}

func TestSlabPut_Small(t *testing.T) {
	var s Slab[uint16]
	s.Put(nil)
	s.Put(make([]uint16, 10))
	s.Put(make([]uint16, 100))
	if b := s.Get(100); len(b) != 100 {
		t.Errorf("Get(100) after small Put: len = %d", len(b))
	}
}

func TestSlabPut_OddCapacity(t *testing.T) {
	// A slice whose capacity falls between two classes may only serve the
	// lower class.
	var s Slab[int]
	s.Put(make([]int, 2000))
	b := s.Get(Size4K)
	if len(b) != Size4K {
		t.Errorf("Get(%d): len = %d", Size4K, len(b))
	}
}

func TestBucketIndex(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{1, 0},
		{Size64, 0},
		{Size64 + 1, 1},
		{Size1K, 2},
		{Size1K + 1, 3},
		{Size4K, 3},
		{Size16K, 4},
		{Size64K + 1, 6},
		{Size1M, 7},
		{4 * Size1M, 7},
	}
	for _, tt := range tests {
		if got := bucketIndex(tt.n); got != tt.want {
			t.Errorf("bucketIndex(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestSlabConcurrency(t *testing.T) {
	const goroutines = 16
	const iterations = 100

	var s Slab[uint32]
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				for _, n := range []int{512, 2048, 8192, 32768} {
					b := s.Get(n)
					if len(b) != n {
						t.Errorf("concurrent Get(%d): len = %d", n, len(b))
						return
					}
					for j := range b {
						b[j] = uint32(j)
					}
					s.Put(b)
				}
			}
		}()
	}
	wg.Wait()
}

func BenchmarkSlabGet(b *testing.B) {
	var s Slab[uint8]
	for i := 0; i < b.N; i++ {
		s.Put(s.Get(Size16K))
	}
}
