// Package sched tracks per-superblock-row progress between the stages of a
// frame pipeline. A producer signals how far a row has advanced; consumers
// block until the rows they depend on have reached the point they need.
package sched

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Progress holds one counter per row.
type Progress struct {
	rows []rowState
}

// rowState is padded so that neighboring rows, signalled from different
// goroutines, do not share a cache line.
type rowState struct {
	done    atomic.Int32
	waiters atomic.Int32
	mu      sync.Mutex
	cond    *sync.Cond
	_       cpu.CacheLinePad
}

// NewProgress returns a tracker for n rows, all at zero.
func NewProgress(n int) *Progress {
	p := &Progress{rows: make([]rowState, n)}
	for i := range p.rows {
		p.rows[i].cond = sync.NewCond(&p.rows[i].mu)
	}
	return p
}

// Rows returns the number of tracked rows.
func (p *Progress) Rows() int { return len(p.rows) }

// Signal records that row y has reached done and wakes its waiters.
// Without waiters it is a single atomic store.
func (p *Progress) Signal(y int, done int32) {
	r := &p.rows[y]
	r.done.Store(done)
	if r.waiters.Load() > 0 {
		r.mu.Lock()
		r.mu.Unlock()
		r.cond.Broadcast()
	}
}

// WaitFor blocks until row y has reached needed or ctx is done, in which
// case it returns the context's error.
func (p *Progress) WaitFor(ctx context.Context, y int, needed int32) error {
	r := &p.rows[y]
	if r.done.Load() >= needed {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.waiters.Add(1)
	defer r.waiters.Add(-1)

	stop := context.AfterFunc(ctx, func() {
		r.mu.Lock()
		r.mu.Unlock()
		r.cond.Broadcast()
	})
	defer stop()

	r.mu.Lock()
	defer r.mu.Unlock()
	for r.done.Load() < needed {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.cond.Wait()
	}
	return nil
}
