package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Priya8975/keyword-pager/internal/domain"
	"github.com/google/uuid"
)

// ErrPoolFull is returned by Submit when the queue has no room.
var ErrPoolFull = errors.New("worker pool queue is full")

// ErrPoolStopped is returned by Submit after Stop.
var ErrPoolStopped = errors.New("worker pool stopped")

// EventHandler processes one inbound event.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev domain.InboundEvent) error
}

// Job is one queued inbound event.
type Job struct {
	ID         string
	Event      domain.InboundEvent
	EnqueuedAt time.Time
}

// Pool manages a fixed number of worker goroutines that process inbound
// events. Events share no in-process state; each job is handled on its own.
type Pool struct {
	numWorkers int
	jobs       chan Job
	handler    EventHandler
	logger     *slog.Logger
	timeout    time.Duration
	wg         sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// DefaultJobTimeout bounds one event when NewPool is given no timeout.
const DefaultJobTimeout = 2 * time.Minute

// NewPool creates a worker pool with the given number of workers and queue
// capacity. Each job runs under jobTimeout; zero or less means
// DefaultJobTimeout.
func NewPool(numWorkers, queueSize int, jobTimeout time.Duration, handler EventHandler, logger *slog.Logger) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if queueSize < 1 {
		queueSize = numWorkers * 2
	}
	if jobTimeout <= 0 {
		jobTimeout = DefaultJobTimeout
	}
	return &Pool{
		numWorkers: numWorkers,
		jobs:       make(chan Job, queueSize),
		handler:    handler,
		logger:     logger,
		timeout:    jobTimeout,
	}
}

// Start launches all worker goroutines. They read from the jobs channel
// until it is closed or the context is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	p.logger.Info("worker pool started", "num_workers", p.numWorkers, "queue_size", cap(p.jobs))
}

// Submit queues an event without blocking and returns the job id.
func (p *Pool) Submit(ev domain.InboundEvent) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return "", ErrPoolStopped
	}

	job := Job{ID: uuid.NewString(), Event: ev, EnqueuedAt: time.Now()}
	select {
	case p.jobs <- job:
		return job.ID, nil
	default:
		p.logger.Warn("worker pool queue full, dropping event",
			"kind", ev.Kind,
			"channel_id", ev.ChannelID,
		)
		return "", ErrPoolFull
	}
}

// QueueDepth returns the number of jobs waiting for a worker.
func (p *Pool) QueueDepth() int {
	return len(p.jobs)
}

// Stop closes the jobs channel and waits for all workers to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

// worker is a single goroutine that processes jobs from the channel.
func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for job := range p.jobs {
		select {
		case <-ctx.Done():
			return
		default:
			p.process(ctx, id, job)
		}
	}
}

func (p *Pool) process(ctx context.Context, workerID int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic while handling event", "job_id", job.ID, "worker", workerID, "panic", r)
		}
	}()

	jobCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	err := p.handler.HandleEvent(jobCtx, job.Event)
	if err != nil {
		p.logger.Warn("event handled with faults",
			"job_id", job.ID,
			"worker", workerID,
			"kind", job.Event.Kind,
			"error", err,
		)
		return
	}

	p.logger.Debug("event handled",
		"job_id", job.ID,
		"worker", workerID,
		"kind", job.Event.Kind,
		"queued_ms", start.Sub(job.EnqueuedAt).Milliseconds(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}
