package sched

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestProgressFastPath(t *testing.T) {
	p := NewProgress(4)
	p.Signal(2, 5)
	if err := p.WaitFor(context.Background(), 2, 5); err != nil {
		t.Fatalf("WaitFor: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.WaitFor(ctx, 2, 6); !errors.Is(err, context.Canceled) {
		t.Errorf("WaitFor past the signalled value = %v, want context.Canceled", err)
	}
	if p.Rows() != 4 {
		t.Errorf("Rows = %d", p.Rows())
	}
}

func TestProgressChain(t *testing.T) {
	// Each row waits for the one above, like superblock rows whose filtering
	// needs the previous row finished.
	const rows = 64
	p := NewProgress(rows)
	order := make([]int, 0, rows)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for y := rows - 1; y >= 0; y-- {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if y > 0 {
				if err := p.WaitFor(context.Background(), y-1, 1); err != nil {
					t.Error(err)
					return
				}
			}
			mu.Lock()
			order = append(order, y)
			mu.Unlock()
			p.Signal(y, 1)
		}()
	}
	wg.Wait()
	for i, y := range order {
		if i != y {
			t.Fatalf("row %d finished at position %d", y, i)
		}
	}
}

func TestProgressCancel(t *testing.T) {
	p := NewProgress(1)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- p.WaitFor(ctx, 0, 1) }()

	time.Sleep(10 * time.Millisecond)
	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("WaitFor = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("WaitFor did not return after cancel")
	}

	if err := p.WaitFor(ctx, 0, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("WaitFor on cancelled context = %v", err)
	}
}

func BenchmarkProgressSignal(b *testing.B) {
	p := NewProgress(1)
	for i := 0; i < b.N; i++ {
		p.Signal(0, int32(i))
		_ = p.WaitFor(context.Background(), 0, int32(i))
	}
}
