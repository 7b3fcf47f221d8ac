package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -5} {
		p := New(size)
		if p.Size() != 1 {
			t.Errorf("New(%d).Size() = %d, want 1", size, p.Size())
		}
		_ = p.Close()
	}
}

func TestPool_AcquireRelease(t *testing.T) {
	p := New(2)
	defer func() { _ = p.Close() }()

	ctx := context.Background()

	l1, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire 1 failed: %v", err)
	}
	l2, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire 2 failed: %v", err)
	}
	if l1 == l2 {
		t.Fatal("pool handed out the same lattice twice")
	}

	// Third acquire should block
	ctx3, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, err := p.Acquire(ctx3); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}

	p.Release(l1)
	l3, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire 3 failed: %v", err)
	}
	if l3 != l1 {
		t.Error("released lattice was not reused")
	}

	p.Release(l2)
	p.Release(l3)
}

func TestPool_ReleaseNil(t *testing.T) {
	p := New(1)
	defer func() { _ = p.Close() }()

	p.Release(nil)
}

func TestPool_CloseIdempotent(t *testing.T) {
	p := New(2)

	if err := p.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestPool_AcquireAfterClose(t *testing.T) {
	p := New(1)
	_ = p.Close()

	if _, err := p.Acquire(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
}

func TestPool_ReleaseAfterClose(t *testing.T) {
	p := New(1)

	l, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Must not panic on the closed channel.
	p.Release(l)
}

func TestPool_AcquireContextCancellation(t *testing.T) {
	p := New(1)
	defer func() { _ = p.Close() }()

	l, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer p.Release(l)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPool_ConcurrentAccess(t *testing.T) {
	p := New(3)
	defer func() { _ = p.Close() }()

	var (
		wg      sync.WaitGroup
		inUse   int64
		maxSeen int64
		success int64
	)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				l, err := p.Acquire(context.Background())
				if err != nil {
					t.Errorf("Acquire failed: %v", err)
					return
				}
				n := atomic.AddInt64(&inUse, 1)
				for {
					m := atomic.LoadInt64(&maxSeen)
					if n <= m || atomic.CompareAndSwapInt64(&maxSeen, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt64(&inUse, -1)
				p.Release(l)
				atomic.AddInt64(&success, 1)
			}
		}()
	}
	wg.Wait()

	if success != 50 {
		t.Errorf("got %d successful cycles, want 50", success)
	}
	if maxSeen > 3 {
		t.Errorf("%d lattices in use at once, pool size is 3", maxSeen)
	}
}
