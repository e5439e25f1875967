// Package mainloop provides the single logical owner for state that must not
// be touched concurrently: one goroutine runs submitted closures in FIFO
// order, each to completion.
//
// The entry store and the reminder scheduler's published authorization status
// are only read and written from inside the loop, so neither needs locks.
package mainloop

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned when work is submitted after Close.
var ErrClosed = errors.New("mainloop: closed")

// Executor is the part of Loop consumed by components that apply results on
// the owning goroutine.
type Executor interface {
	Do(ctx context.Context, fn func()) error
	Post(fn func()) bool
}

// Loop is a FIFO executor backed by a single goroutine.
type Loop struct {
	queue chan func()
	done  chan struct{}

	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

// New starts a loop with the given queue depth (minimum 1).
func New(depth int) *Loop {
	if depth < 1 {
		depth = 1
	}
	l := &Loop{
		queue: make(chan func(), depth),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for fn := range l.queue {
		fn()
	}
}

// Do runs fn on the loop and waits for it to finish. If ctx ends while fn
// is still queued, Do returns ctx.Err(); fn may still run later.
// Calling Do from inside a closure running on the loop deadlocks.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.enqueue(ctx, func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post queues fn without waiting. It reports false if the loop is closed.
func (l *Loop) Post(fn func()) bool {
	return l.enqueue(context.Background(), fn) == nil
}

func (l *Loop) enqueue(ctx context.Context, fn func()) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrClosed
	}
	select {
	case l.queue <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work, drains what is queued and waits for the
// goroutine to exit. Safe to call more than once.
func (l *Loop) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		close(l.queue)
		l.mu.Unlock()
	})
	<-l.done
}
