package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/worldforge/worldforge/internal/domain/task"
	"github.com/worldforge/worldforge/internal/infrastructure/logger"
)

// Dispatcher hands a claimed-or-claimable task id to the Runner. It is
// satisfied by *worldflow.Runner's SpawnDetached.
type Dispatcher interface {
	SpawnDetached(taskID string)
}

// PendingTaskPoller discovers tasks that reached status=pending by some
// route other than Runner.Enqueue (spec.md's external publisher inserting
// an init_world_creation document directly) and hands them to the
// Dispatcher. The atomic test-and-set of task.Store.ClaimTask, which the
// Runner calls before running a task, makes this safe to
// run alongside normal Enqueue traffic: a task already claimed by the
// time the poller reaches it is simply skipped.
type PendingTaskPoller struct {
	tasks      task.Store
	dispatcher Dispatcher
	log        *logger.Logger
	batchSize  int
	interval   time.Duration

	cron *cron.Cron
}

// NewPendingTaskPoller builds a poller that looks for up to batchSize
// pending tasks every interval.
func NewPendingTaskPoller(tasks task.Store, dispatcher Dispatcher, log *logger.Logger, batchSize int, interval time.Duration) *PendingTaskPoller {
	if batchSize < 1 {
		batchSize = 1
	}
	return &PendingTaskPoller{
		tasks:      tasks,
		dispatcher: dispatcher,
		log:        log,
		batchSize:  batchSize,
		interval:   interval,
		cron:       cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
	}
}

// Start schedules the poll and begins running it in the background.
func (p *PendingTaskPoller) Start(ctx context.Context) error {
	schedule := cron.ConstantDelaySchedule{Delay: p.interval}
	p.cron.Schedule(schedule, cron.FuncJob(func() {
		p.poll(ctx)
	}))
	p.cron.Start()
	return nil
}

// Stop waits for any in-flight poll to finish before returning.
func (p *PendingTaskPoller) Stop() {
	stopCtx := p.cron.Stop()
	<-stopCtx.Done()
}

func (p *PendingTaskPoller) poll(ctx context.Context) {
	ids, err := p.tasks.ListPending(ctx, p.batchSize)
	if err != nil {
		p.log.ErrorContext(ctx, "pending task poll failed", "error", err)
		return
	}
	for _, t := range ids {
		p.dispatcher.SpawnDetached(t.ID)
	}
}

// Poll runs one discovery pass immediately, outside the cron schedule;
// the tests use it.
func (p *PendingTaskPoller) Poll(ctx context.Context) {
	p.poll(ctx)
}
