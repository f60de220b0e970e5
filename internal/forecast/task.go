// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package forecast

import (
	"context"
	"sync"
)

// Task is a cancellable future. It settles exactly once, with either the
// function's outcome or context.Canceled, and never changes afterwards.
type Task[T any] struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	val    T
	err    error
}

// Go runs fn in a goroutine with a context derived from ctx.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Task[T] {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task[T]{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer cancel()
		v, err := fn(ctx)
		t.settle(v, err)
	}()

	return t
}

func (t *Task[T]) settle(v T, err error) {
	t.once.Do(func() {
		t.val, t.err = v, err
		close(t.done)
	})
}

// Cancel settles t with context.Canceled unless it already settled, then
// cancels the function's context. A result arriving later is discarded.
func (t *Task[T]) Cancel() {
	var zero T
	t.settle(zero, context.Canceled)
	t.cancel()
}

// Done is closed once t settles.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Result blocks until t settles.
func (t *Task[T]) Result() (T, error) {
	<-t.done
	return t.val, t.err
}
