// Package notify runs best-effort side effects (cross-service notifications,
// event publishing) off the request path.
package notify

import (
	"context"
	"sync"
	"time"

	"fintrack/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Job is a unit of background work. Its error is logged and otherwise ignored.
type Job func(ctx context.Context) error

// Dispatcher is a bounded background executor. Go never blocks: when every
// slot is busy the job is dropped with a warning. Batch waits for a slot.
type Dispatcher struct {
	sem     *semaphore.Weighted
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(capacity int64, timeout time.Duration) *Dispatcher {
	if capacity <= 0 {
		capacity = 1
	}
	return &Dispatcher{
		sem:     semaphore.NewWeighted(capacity),
		timeout: timeout,
	}
}

// Go schedules job under name and reports whether it was accepted.
func (d *Dispatcher) Go(name string, job Job) bool {
	if !d.sem.TryAcquire(1) {
		logger.Log.Warn("dispatcher saturated, dropping job", zap.String("job", name))
		return false
	}
	d.start(name, []Job{job})
	return true
}

// Batch schedules jobs as one submission holding a single slot. The jobs run
// in order, each under its own timeout. Unlike Go, Batch waits for a free
// slot until ctx is done and reports false only if it never got one.
func (d *Dispatcher) Batch(ctx context.Context, name string, jobs []Job) bool {
	if len(jobs) == 0 {
		return true
	}
	if err := d.sem.Acquire(ctx, 1); err != nil {
		logger.Log.Warn("no dispatcher slot for batch, dropping it",
			zap.String("job", name), zap.Int("jobs", len(jobs)), zap.Error(err))
		return false
	}
	d.start(name, jobs)
	return true
}

// start runs jobs on a new goroutine. The caller holds one semaphore slot,
// which is released when the last job returns.
func (d *Dispatcher) start(name string, jobs []Job) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.sem.Release(1)
		for _, job := range jobs {
			d.run(name, job)
		}
	}()
}

func (d *Dispatcher) run(name string, job Job) {
	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("background job panicked", zap.String("job", name), zap.Any("panic", r))
		}
	}()

	if err := job(ctx); err != nil {
		logger.Log.Warn("background job failed", zap.String("job", name), zap.Error(err))
	}
}

// Wait blocks until every accepted job has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
