// Package worker implements a bounded goroutine pool for asynchronous
// fire-and-forget operations (broadcast, peer pull), so that shutdown
// can drain outstanding work deterministically instead of leaking
// detached goroutines.
package worker

import (
	"sync"
)

// Pool runs submitted functions with bounded concurrency and
// can be drained deterministically on shutdown, unlike the detached
// threads it replaces.
type Pool struct {
	sem  chan struct{}
	wg   sync.WaitGroup
	mu   sync.Mutex
	done bool
}

// New constructs a pool that runs at most size functions concurrently.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}

	return &Pool{sem: make(chan struct{}, size)}
}

// Submit runs fn on a pool goroutine without blocking the caller; fn
// waits on its own goroutine until one of the pool's slots is free.
// If the pool has been stopped,
// Submit is a silent no-op: Stop is meant to be the last call a node
// makes, and nothing after it should schedule new broadcasts.
func (p *Pool) Submit(fn func()) {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		p.sem <- struct{}{}
		defer func() {
			<-p.sem
			p.wg.Done()
		}()

		fn()
	}()
}

// Stop marks the pool closed to new submissions and blocks until every
// previously-submitted function has returned. Stop is idempotent.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.done {
		p.mu.Unlock()
		return
	}
	p.done = true
	p.mu.Unlock()

	p.wg.Wait()
}
