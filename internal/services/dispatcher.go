package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"guestregistration/internal/domain"
	"guestregistration/internal/monitoring"
)

const (
	defaultDispatchWorkers   = 4
	defaultDispatchQueueSize = 256
)

type dispatchJob struct {
	ctx context.Context
	msg *domain.RegistrationCommitted
}

// AsyncDispatcher runs side effects on a bounded pool of in-process workers.
// Dispatch never waits: when the queue is full the job is dropped and counted.
type AsyncDispatcher struct {
	handler domain.SideEffectHandler
	logger  *slog.Logger
	jobs    chan dispatchJob
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

var _ domain.SideEffectDispatcher = (*AsyncDispatcher)(nil)

// NewAsyncDispatcher starts workers goroutines consuming a queue of queueSize jobs.
func NewAsyncDispatcher(handler domain.SideEffectHandler, logger *slog.Logger, workers, queueSize int) *AsyncDispatcher {
	if workers <= 0 {
		workers = defaultDispatchWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultDispatchQueueSize
	}
	d := &AsyncDispatcher{
		handler: handler,
		logger:  logger,
		jobs:    make(chan dispatchJob, queueSize),
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.work()
	}
	return d
}

// Dispatch implements domain.SideEffectDispatcher.
func (d *AsyncDispatcher) Dispatch(ctx context.Context, msg *domain.RegistrationCommitted) {
	if msg == nil {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		monitoring.TrackDispatchDropped("closed")
		d.logger.ErrorContext(ctx, "dispatcher closed, side effects dropped",
			"registration_id", msg.Registrant.RegistrationID)
		return
	}
	select {
	case d.jobs <- dispatchJob{ctx: context.WithoutCancel(ctx), msg: msg}:
		monitoring.SetDispatchQueueDepth(len(d.jobs))
	default:
		monitoring.TrackDispatchDropped("queue_full")
		d.logger.ErrorContext(ctx, "dispatch queue full, side effects dropped",
			"registration_id", msg.Registrant.RegistrationID,
			"event_id", msg.Event.ID,
		)
	}
}

func (d *AsyncDispatcher) work() {
	defer d.wg.Done()
	for job := range d.jobs {
		monitoring.SetDispatchQueueDepth(len(d.jobs))
		d.handle(job)
	}
}

func (d *AsyncDispatcher) handle(job dispatchJob) {
	defer func() {
		if p := recover(); p != nil {
			d.logger.ErrorContext(job.ctx, "side effect handler panicked",
				"registration_id", job.msg.Registrant.RegistrationID,
				"panic", fmt.Sprint(p),
			)
		}
	}()
	d.handler.Handle(job.ctx, job.msg)
}

// Close stops accepting jobs and waits for queued ones to finish or for ctx to end.
func (d *AsyncDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
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
