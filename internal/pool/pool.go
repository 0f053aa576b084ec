// Package pool provides bucketed sync.Pool slabs for the per-frame arrays of
// the deblocking core (level grids, mask arenas). Slabs are organized by
// element count so that frames of similar size reuse the same backing arrays.
package pool

import "sync"

// Size classes, in elements.
const (
	Size64   = 1 << 6
	Size256  = 1 << 8
	Size1K   = 1 << 10
	Size4K   = 1 << 12
	Size16K  = 1 << 14
	Size64K  = 1 << 16
	Size256K = 1 << 18
	Size1M   = 1 << 20
)

var sizes = [...]int{Size64, Size256, Size1K, Size4K, Size16K, Size64K, Size256K, Size1M}

// bucketIndex returns the bucket serving n elements. Requests above the
// largest class share the last bucket and grow it on demand.
func bucketIndex(n int) int {
	for i, sz := range sizes {
		if n <= sz {
			return i
		}
	}
	return len(sizes) - 1
}

// Slab hands out zeroed slices of T. The zero value is ready to use and safe
// for concurrent use.
type Slab[T any] struct {
	pools [len(sizes)]sync.Pool
}

// Get returns a zeroed slice of length n. The caller should hand it back
// with Put once the frame that used it is done.
func (s *Slab[T]) Get(n int) []T {
	idx := bucketIndex(n)
	if v := s.pools[idx].Get(); v != nil {
		bp := v.(*[]T)
		if b := *bp; cap(b) >= n {
			b = b[:n]
			clear(b)
			return b
		}
	}
	c := sizes[idx]
	if c < n {
		c = n
	}
	return make([]T, n, c)
}

// Put returns b to the slab. Slices smaller than the smallest size class are
// dropped.
func (s *Slab[T]) Put(b []T) {
	c := cap(b)
	if c < Size64 {
		return
	}
	idx := bucketIndex(c)
	if c < sizes[idx] && idx > 0 {
		idx--
	}
	b = b[:c]
	s.pools[idx].Put(&b)
}
