package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/voxjob/transcriber/pkg/metrics"
)

var (
	ErrPoolSaturated = errors.New("dispatch queue is full")
	ErrPoolStopped   = errors.New("dispatch pool is stopped")
)

// Task runs on a pool goroutine. The context is cancelled only when the pool
// is forced to stop.
type Task func(ctx context.Context)

// Pool runs tasks on a fixed number of goroutines fed by a bounded queue.
type Pool struct {
	queue    chan Task
	group    *errgroup.Group
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.RWMutex
	stopped  bool
	inFlight atomic.Int64
	log      *zap.SugaredLogger
}

func NewPool(workers, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		queue:  make(chan Task, queueSize),
		group:  &errgroup.Group{},
		ctx:    ctx,
		cancel: cancel,
		log:    zap.S().Named("dispatch_pool"),
	}
	for i := 0; i < workers; i++ {
		p.group.Go(p.work)
	}
	return p
}

// Submit enqueues t without blocking.
func (p *Pool) Submit(t Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.queue <- t:
		metrics.UpdatePoolQueueDepthMetric(len(p.queue))
		return nil
	default:
		return ErrPoolSaturated
	}
}

// Stop stops intake and waits for queued and running tasks. When ctx expires
// first, running tasks see their context cancelled and Stop returns ctx.Err()
// without waiting for them to return.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = p.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.log.Warnw("forcing dispatch pool to stop", "in_flight", p.inFlight.Load(), "queued", len(p.queue))
		p.cancel()
		return ctx.Err()
	}
}

func (p *Pool) work() error {
	for t := range p.queue {
		metrics.UpdatePoolQueueDepthMetric(len(p.queue))
		metrics.UpdatePoolInFlightMetric(int(p.inFlight.Add(1)))
		p.run(t)
		metrics.UpdatePoolInFlightMetric(int(p.inFlight.Add(-1)))
	}
	return nil
}

func (p *Pool) run(t Task) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorw("dispatch task panicked", "panic", r)
		}
	}()
	t(p.ctx)
}
