// Package worker runs session jobs on a bounded pool of goroutines.
package worker

import (
	"context"
	"sync"
)

// Job is one unit of batch work.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of one job.
type Result interface {
	GetError() error
}

// Pool executes submitted jobs on a fixed number of workers. Workers
// append results to an internal collector as they finish, so Submit
// only ever blocks on the job queue while all workers are busy —
// callers may submit any number of jobs before calling Wait.
type Pool struct {
	workers int
	jobs    chan Job
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc

	mu        sync.Mutex
	collected []Result
}

// NewPool creates a pool with the given worker count (minimum 1).
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		workers: workers,
		jobs:    make(chan Job, workers),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *Pool) run() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			p.mu.Lock()
			p.collected = append(p.collected, result)
			p.mu.Unlock()
		}
	}
}

// Submit queues a job. Blocks while all workers are busy and the queue
// is full; returns immediately after Shutdown.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
	case p.jobs <- job:
	}
}

// Wait closes the queue, drains every outstanding job and returns all
// results. Call exactly once, after the last Submit.
func (p *Pool) Wait() []Result {
	close(p.jobs)
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.collected
}

// Shutdown cancels in-flight jobs and stops the workers.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}
