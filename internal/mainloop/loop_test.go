package mainloop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestDo_RunsInFIFOOrder(t *testing.T) {
	l := New(8)
	defer l.Close()

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		if !l.Post(func() { got = append(got, i) }) {
			t.Fatalf("post %d rejected", i)
		}
	}
	// Do is queued after the posts, so all of them have run when it returns.
	var snapshot []int
	if err := l.Do(context.Background(), func() { snapshot = append([]int(nil), got...) }); err != nil {
		t.Fatalf("do: %v", err)
	}
	for i, v := range snapshot {
		if v != i {
			t.Fatalf("order broken: %v", snapshot)
		}
	}
	if len(snapshot) != 5 {
		t.Fatalf("expected 5 closures run, got %d", len(snapshot))
	}
}

func TestDo_SerializesConcurrentCallers(t *testing.T) {
	l := New(4)
	defer l.Close()

	counter := 0 // only touched on the loop
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Do(context.Background(), func() { counter++ })
		}()
	}
	wg.Wait()

	var n int
	_ = l.Do(context.Background(), func() { n = counter })
	if n != 50 {
		t.Fatalf("counter = %d, want 50", n)
	}
}

func TestDo_ContextCanceledWhileWaiting(t *testing.T) {
	l := New(1)
	defer l.Close()

	release := make(chan struct{})
	l.Post(func() { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Do(ctx, func() {})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	close(release)
}

func TestClose_DrainsAndRejects(t *testing.T) {
	l := New(4)
	ran := make(chan struct{}, 1)
	l.Post(func() { ran <- struct{}{} })
	l.Close()
	l.Close() // idempotent

	select {
	case <-ran:
	default:
		t.Fatalf("queued work should run before Close returns")
	}
	if l.Post(func() {}) {
		t.Fatalf("post after close should be rejected")
	}
	if err := l.Do(context.Background(), func() {}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestNew_MinimumDepth(t *testing.T) {
	l := New(0)
	defer l.Close()
	if cap(l.queue) != 1 {
		t.Fatalf("depth should be clamped to 1, got %d", cap(l.queue))
	}
}
