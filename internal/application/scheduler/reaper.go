// Package scheduler runs the periodic liveness sweeps the durable
// execution core needs but doesn't provide for itself, grounded on the
// teacher's internal/application/trigger.CronScheduler (robfig/cron/v3
// driving scheduled work against a repository).
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/worldforge/worldforge/internal/domain/task"
	"github.com/worldforge/worldforge/internal/infrastructure/logger"
)

// StuckTaskReaper resets tasks that have been claimed but never
// completed, because the worker that claimed them died or the process
// crashed before its journal entries caught up. It is a pure liveness
// mechanism: workflow semantics never depend on it running promptly.
type StuckTaskReaper struct {
	tasks    task.Store
	log      *logger.Logger
	timeout  time.Duration
	interval time.Duration

	cron *cron.Cron
}

// NewStuckTaskReaper builds a reaper that resets tasks still
// in_progress after timeout, swept every interval.
func NewStuckTaskReaper(tasks task.Store, log *logger.Logger, timeout, interval time.Duration) *StuckTaskReaper {
	return &StuckTaskReaper{
		tasks:    tasks,
		log:      log,
		timeout:  timeout,
		interval: interval,
		cron:     cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
	}
}

// Start schedules the sweep and begins running it in the background.
// It currently always returns nil.
func (r *StuckTaskReaper) Start(ctx context.Context) error {
	schedule := cron.ConstantDelaySchedule{Delay: r.interval}
	r.cron.Schedule(schedule, cron.FuncJob(func() {
		r.sweep(ctx)
	}))
	r.cron.Start()
	return nil
}

// Stop waits for any in-flight sweep to finish before returning.
func (r *StuckTaskReaper) Stop() {
	stopCtx := r.cron.Stop()
	<-stopCtx.Done()
}

// sweep is also exposed for tests to call synchronously without
// waiting on the cron interval.
func (r *StuckTaskReaper) sweep(ctx context.Context) {
	deadline := time.Now().UTC().Add(-r.timeout)
	ids, err := r.tasks.RequeueStuck(ctx, deadline)
	if err != nil {
		r.log.ErrorContext(ctx, "stuck task sweep failed", "error", err)
		return
	}
	if len(ids) > 0 {
		r.log.WarnContext(ctx, "requeued stuck tasks", "count", len(ids), "task_ids", ids)
	}
}

// Sweep runs one reap pass immediately, outside the cron schedule; the
// tests use it.
func (r *StuckTaskReaper) Sweep(ctx context.Context) {
	r.sweep(ctx)
}
