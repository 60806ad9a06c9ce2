package job

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestMemoryRegistryAcquireRelease(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	ok, err := r.Acquire(ctx, "vid1.mp4")
	if err != nil || !ok {
		t.Fatalf("first Acquire = %v, %v", ok, err)
	}
	ok, err = r.Acquire(ctx, "vid1.mp4")
	if err != nil || ok {
		t.Fatalf("second Acquire = %v, %v; want false", ok, err)
	}

	// An unrelated source is not blocked.
	ok, _ = r.Acquire(ctx, "vid2.mp4")
	if !ok {
		t.Error("unrelated source should acquire")
	}

	if err := r.Release(ctx, "vid1.mp4"); err != nil {
		t.Fatal(err)
	}
	ok, _ = r.Acquire(ctx, "vid1.mp4")
	if !ok {
		t.Error("Acquire after Release should succeed")
	}
}

func TestMemoryRegistrySingleWinnerUnderContention(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	const n = 64
	var wins int64
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := r.Acquire(ctx, "vid1.mp4")
			if err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			if ok {
				atomic.AddInt64(&wins, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if wins != 1 {
		t.Errorf("%d goroutines acquired the lease, want exactly 1", wins)
	}
}
