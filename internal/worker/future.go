package worker

import (
	"context"
	"sync"
)

// Future is the eventual result of a submitted job.
type Future[T any] struct {
	id   string
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

func newFuture[T any](id string) *Future[T] {
	return &Future[T]{id: id, done: make(chan struct{})}
}

// Resolved returns an already completed Future holding val.
func Resolved[T any](val T) *Future[T] {
	f := newFuture[T]("")
	f.complete(val, nil)
	return f
}

// Failed returns an already completed Future holding err.
func Failed[T any](err error) *Future[T] {
	f := newFuture[T]("")
	var zero T
	f.complete(zero, err)
	return f
}

// ID returns the job identifier, empty for Resolved and Failed futures.
func (f *Future[T]) ID() string { return f.id }

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the job finishes or ctx ends. Giving up on the wait does
// not cancel the job.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (f *Future[T]) complete(val T, err error) {
	f.once.Do(func() {
		f.val = val
		f.err = err
		close(f.done)
	})
}
