package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/csvflow/backend/internal/core/ports"
	"github.com/csvflow/backend/internal/domain"
	"github.com/csvflow/backend/internal/infrastructure/logger"
)

// Pool is a channel-backed task queue with a fixed worker count. Each
// worker drains descriptors and runs them one at a time, end-to-end,
// with no internal suspension points; concurrency exists only across
// workers. Enqueue is non-blocking: a full or stopped queue is a
// dispatch failure reported to the submitter.
type Pool struct {
	tasks   chan ports.TaskDescriptor
	runner  ports.TaskRunner
	logger  *logger.Logger
	workers int

	mu      sync.Mutex
	wg      sync.WaitGroup
	started bool
	stopped bool
}

type PoolConfig struct {
	Workers   int
	QueueSize int
	Runner    ports.TaskRunner
	Logger    *logger.Logger
}

func NewPool(cfg PoolConfig) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = 64
	}
	return &Pool{
		tasks:   make(chan ports.TaskDescriptor, size),
		runner:  cfg.Runner,
		logger:  cfg.Logger,
		workers: workers,
	}
}

func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work(i)
	}
	p.logger.Infow("worker_pool_started", "workers", p.workers, "queue_size", cap(p.tasks))
}

func (p *Pool) work(id int) {
	defer p.wg.Done()
	for d := range p.tasks {
		p.logger.Infow("worker_task_picked", "worker", id, "task_id", d.TaskID, "operation", d.Operation.Kind)
		// Errors are already recorded on the ledger by the runner; the
		// worker only logs them.
		if err := p.runner.Run(context.Background(), d); err != nil {
			p.logger.Warnw("worker_task_failed", "worker", id, "task_id", d.TaskID, "error", err)
		}
	}
}

// Enqueue holds the mutex across the send so Stop cannot close the
// channel between the stopped check and the send. The send is
// non-blocking, so the critical section never stalls.
func (p *Pool) Enqueue(_ context.Context, d ports.TaskDescriptor) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped || !p.started {
		return fmt.Errorf("%w: queue is not accepting tasks", domain.ErrDispatch)
	}

	select {
	case p.tasks <- d:
		return nil
	default:
		return fmt.Errorf("%w: queue is full", domain.ErrDispatch)
	}
}

// Stop closes the queue and blocks until in-flight and already-queued
// tasks finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped || !p.started {
		p.stopped = true
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Infow("worker_pool_stopped")
}

var _ ports.TaskQueue = (*Pool)(nil)
