// Package future provides single-assignment asynchronous results.
//
// A Future settles exactly once, either with a value or with an error.
// Readers block in Await until it settles or their context ends; a context
// ending never cancels the producing work.
package future

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

type Future[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) settle(v T, err error) {
	f.once.Do(func() {
		f.val, f.err = v, err
		close(f.done)
	})
}

// Go runs fn in its own goroutine and returns a Future for its result.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()
	go func() {
		v, err := fn(ctx)
		f.settle(v, err)
	}()
	return f
}

// Resolved returns a Future already settled with v.
func Resolved[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.settle(v, nil)
	return f
}

// Rejected returns a Future already settled with err.
func Rejected[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.settle(zero, err)
	return f
}

// Done is closed once the Future has settled.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the Future settles or ctx ends.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then chains fn onto f. A rejection of f skips fn and propagates.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	next := newFuture[U]()
	go func() {
		<-f.done
		if f.err != nil {
			var zero U
			next.settle(zero, f.err)
			return
		}
		next.settle(fn(f.val))
	}()
	return next
}

// All waits for every future and returns their values in order. The first
// rejection is returned and stops the wait.
func All[T any](ctx context.Context, fs ...*Future[T]) ([]T, error) {
	out := make([]T, len(fs))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range fs {
		g.Go(func() error {
			v, err := f.Await(gctx)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
