// Package async runs a call on its own goroutine and hands back a Future the
// caller can wait on. Every store mutation exposed over HTTP goes through it,
// so a slow or remote backend can be swapped in without touching callers.
package async

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

var (
	ErrPanic     = errors.New("async task panicked")
	ErrAbandoned = errors.New("async task abandoned before start")
)

const (
	pending int32 = iota
	running
	abandoned
)

type Future[T any] struct {
	done  chan struct{}
	state atomic.Int32
	val   T
	err   error
}

// Run waits latency, then calls fn. If ctx ends during the wait fn is never
// called and the future fails with ctx's error. Once fn starts it runs to
// completion and its result is what every Await sees.
func Run[T any](ctx context.Context, latency time.Duration, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()

		if latency > 0 {
			timer := time.NewTimer(latency)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				f.err = ctx.Err()
				return
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			f.err = err
			return
		}

		if !f.state.CompareAndSwap(pending, running) {
			f.err = ErrAbandoned
			return
		}
		f.val, f.err = fn(ctx)
	}()

	return f
}

// Await blocks until the task finishes. If ctx ends before fn has started the
// task is abandoned and Await returns ctx's error; once fn is running Await
// waits for its result so a reported failure never hides an applied change.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
	}

	if f.state.CompareAndSwap(pending, abandoned) {
		var zero T
		return zero, ctx.Err()
	}
	<-f.done
	return f.val, f.err
}
