package view

import (
	"context"
	"sync"
)

// outcome is a task result tagged with the generation that produced it.
type outcome[T any] struct {
	gen uint64
	val T
}

// latest runs at most one live task at a time. Starting a task cancels the
// previous one, and results of anything but the newest task are discarded by
// generation, so a slow stale task can never overwrite a newer result.
//
// latest is owned by a single loop goroutine; only the tasks run elsewhere.
type latest[T any] struct {
	parent context.Context
	out    chan outcome[T]
	cancel context.CancelFunc
	gen    uint64
	wg     sync.WaitGroup
}

func newLatest[T any](ctx context.Context) *latest[T] {
	return &latest[T]{parent: ctx, out: make(chan outcome[T])}
}

// start cancels the running task and runs fn in its place. fn returns false
// when it was cancelled and has nothing to report.
func (l *latest[T]) start(fn func(ctx context.Context) (T, bool)) {
	l.stop()
	ctx, cancel := context.WithCancel(l.parent)
	l.cancel = cancel
	gen := l.gen

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		v, ok := fn(ctx)
		if !ok {
			return
		}
		select {
		case l.out <- outcome[T]{gen: gen, val: v}:
		case <-ctx.Done():
		}
	}()
}

// stop cancels the running task, if any, and invalidates its result.
func (l *latest[T]) stop() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
}

func (l *latest[T]) results() <-chan outcome[T] {
	return l.out
}

// current reports whether o came from the newest task.
func (l *latest[T]) current(o outcome[T]) bool {
	return o.gen == l.gen
}

// wait stops the running task and blocks until every task has returned.
func (l *latest[T]) wait() {
	l.stop()
	l.wg.Wait()
}
