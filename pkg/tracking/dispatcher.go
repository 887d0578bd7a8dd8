package tracking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jordanlanch/funneltrack/pkg/logger"
)

// Job is a unit of background tracking work
type Job func(ctx context.Context)

// DropRecorder counts jobs rejected by a full queue
type DropRecorder interface {
	RecordDispatchDropped()
}

// ErrDispatcherClosed is returned by Submit after Close
var ErrDispatcherClosed = errors.New("tracking: dispatcher closed")

// Dispatcher runs tracking jobs off the request path on a fixed set of
// workers. Submit never blocks: when the queue is full the job is dropped.
// With zero workers jobs run inline on the caller.
type Dispatcher struct {
	jobs       chan Job
	workers    int
	jobTimeout time.Duration
	logger     logger.Logger
	dropped    DropRecorder

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher starts workers goroutines consuming a queue of queueSize
func NewDispatcher(workers, queueSize int, log logger.Logger, dropped DropRecorder) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	d := &Dispatcher{
		workers:    workers,
		jobTimeout: 10 * time.Second,
		logger:     log.With("component", "dispatcher"),
		dropped:    dropped,
	}
	if workers > 0 {
		d.jobs = make(chan Job, queueSize)
		for i := 0; i < workers; i++ {
			d.wg.Add(1)
			go d.work()
		}
	}
	return d
}

// Submit queues job. It reports false when the job was dropped.
func (d *Dispatcher) Submit(job Job) bool {
	return d.SubmitAfter(0, job)
}

// SubmitAfter runs job once delay has elapsed. Delayed jobs wait on a
// timer instead of occupying a worker; Close still waits for them.
func (d *Dispatcher) SubmitAfter(delay time.Duration, job Job) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("tracking job submitted after shutdown", "error", ErrDispatcherClosed)
		return false
	}

	if d.workers <= 0 {
		if delay > 0 {
			time.Sleep(delay)
		}
		d.run(job)
		return true
	}

	if delay > 0 {
		d.wg.Add(1)
		time.AfterFunc(delay, func() {
			defer d.wg.Done()
			d.run(job)
		})
		return true
	}

	select {
	case d.jobs <- job:
		return true
	default:
		if d.dropped != nil {
			d.dropped.RecordDispatchDropped()
		}
		d.logger.Warn("tracking queue full, dropping job", "queue_size", cap(d.jobs))
		return false
	}
}

// Close stops accepting jobs and waits for queued ones to finish or ctx to
// expire
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	if d.jobs != nil {
		close(d.jobs)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for job := range d.jobs {
		d.run(job)
	}
}

// run executes a job with its own timeout, detached from any request
func (d *Dispatcher) run(job Job) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("tracking job panicked", "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.jobTimeout)
	defer cancel()
	job(ctx)
}
