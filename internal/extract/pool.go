package extract

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"
)

// DefaultPoolSize bounds concurrent remote calls.
const DefaultPoolSize = 4

// ErrPoolClosed is returned by Submit after Close.
var ErrPoolClosed = errors.New("worker pool closed")

// Pool runs submitted tasks with at most size of them in flight.
type Pool struct {
	sem    *semaphore.Weighted
	size   int
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool creates a pool. A size below one uses DefaultPoolSize.
func NewPool(size int) *Pool {
	if size < 1 {
		size = DefaultPoolSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		sem:    semaphore.NewWeighted(int64(size)),
		size:   size,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Size returns the concurrency bound.
func (p *Pool) Size() int { return p.size }

// Submit queues task without blocking. The task receives a context that is
// cancelled when the pool closes; tasks still queued at that point run with
// the cancelled context so they can report failure.
func (p *Pool) Submit(task func(ctx context.Context)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.sem.Acquire(p.ctx, 1); err != nil {
			task(p.ctx)
			return
		}
		defer p.sem.Release(1)
		task(p.ctx)
	}()
	return nil
}

// Close rejects new tasks, cancels running ones and waits for all of them.
// It is safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

// Wait blocks until every submitted task has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}
