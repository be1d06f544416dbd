package handlers

import (
	"context"
	"sync"
	"time"
)

// Runner bounds how many updates are handled at once and lets shutdown wait
// for the ones in flight.
type Runner struct {
	ctx   context.Context
	sem   chan struct{}
	wg    sync.WaitGroup
	drain time.Duration
}

// NewRunner ties work to ctx. Work started after ctx is done, such as albums
// flushed on shutdown, runs on a detached context capped at drain.
func NewRunner(ctx context.Context, limit int, drain time.Duration) *Runner {
	if limit <= 0 {
		limit = 1
	}
	if drain <= 0 {
		drain = 30 * time.Second
	}
	return &Runner{ctx: ctx, sem: make(chan struct{}, limit), drain: drain}
}

// Go waits for a free slot and runs fn on its own goroutine with a context
// bounded by timeout.
func (r *Runner) Go(timeout time.Duration, fn func(context.Context)) {
	parent := r.ctx
	if r.ctx.Err() != nil {
		parent = context.WithoutCancel(r.ctx)
		if timeout <= 0 || timeout > r.drain {
			timeout = r.drain
		}
	}

	r.wg.Add(1)
	r.sem <- struct{}{}

	go func() {
		defer r.wg.Done()
		defer func() { <-r.sem }()

		ctx, cancel := parent, context.CancelFunc(func() {})
		if timeout > 0 {
			ctx, cancel = context.WithTimeout(parent, timeout)
		}
		defer cancel()

		fn(ctx)
	}()
}

// Wait blocks until every fn started by Go has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}
