package worldflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/worldforge/worldforge/internal/domain/task"
	"github.com/worldforge/worldforge/internal/infrastructure/logger"
	"github.com/worldforge/worldforge/pkg/engine"
)

// Runner dispatches Tasks to their registered WorkflowFunc, generalizing the
// teacher's dag_executor.go executeWave goroutine/semaphore fan-out from a
// single barrier-joined wave of DAG nodes into an unbounded tree of detached,
// recursively self-scheduling workflow spawns: a workflow kind that creates
// child tasks (e.g. a character batch splitting into per-character tasks)
// hands them back to the same Runner instead of returning to a caller that
// waits on them.
type Runner struct {
	rc           *RunContext
	journalStore JournalStore
	notifier     engine.Notifier
	log          *logger.Logger
	workerID     string

	handlers map[task.Kind]WorkflowFunc

	sem chan struct{}
	wg  sync.WaitGroup
}

// NewRunner creates a Runner bounded to maxActivitiesPerWorker concurrently
// running tasks (MAX_ACTIVITIES_PER_WORKER; each task holds one slot for its
// whole workflow run), mirroring the teacher's maxParallelism-sized channel
// semaphore.
func NewRunner(rc *RunContext, journalStore JournalStore, notifier engine.Notifier, log *logger.Logger, maxActivitiesPerWorker int) *Runner {
	if maxActivitiesPerWorker < 1 {
		maxActivitiesPerWorker = 1
	}
	r := &Runner{
		rc:           rc,
		journalStore: journalStore,
		notifier:     notifier,
		log:          log,
		workerID:     uuid.NewString(),
		handlers:     make(map[task.Kind]WorkflowFunc),
		sem:          make(chan struct{}, maxActivitiesPerWorker),
	}
	rc.Spawn = r.Enqueue
	return r
}

// Register binds a workflow kind to its implementing function. Call before
// the Runner starts accepting spawns.
func (r *Runner) Register(kind task.Kind, fn WorkflowFunc) {
	r.handlers[kind] = fn
}

// Enqueue persists a new task and hands it to the Runner without waiting for
// it to run, returning its id so a caller (a workflow spawning a child
// through RunContext.Spawn) can record it immediately.
func (r *Runner) Enqueue(ctx context.Context, kind task.Kind, worldID string, parameters map[string]any) (string, error) {
	t := task.New(kind, worldID, parameters)
	if err := r.rc.Tasks.CreateTask(ctx, t); err != nil {
		return "", fmt.Errorf("enqueue %s task: %w", kind, err)
	}
	r.SpawnDetached(t.ID)
	return t.ID, nil
}

// SpawnDetached launches taskID's execution on its own goroutine, bounded by
// the Runner's semaphore, and returns immediately. Use Wait to block until
// every spawned task (including any it recursively enqueues) has finished.
func (r *Runner) SpawnDetached(taskID string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		r.sem <- struct{}{}
		defer func() { <-r.sem }()

		ctx := context.Background()
		r.runTask(ctx, taskID)
	}()
}

// Wait blocks until every task this Runner has spawned (directly or
// transitively) has finished. Intended for tests and graceful shutdown, not
// the request path.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) runTask(ctx context.Context, taskID string) {
	t, err := r.rc.Tasks.GetTask(ctx, taskID)
	if err != nil {
		r.log.Error("load task for dispatch failed", "task_id", taskID, "error", err)
		return
	}
	if t == nil {
		r.log.Error("task vanished before dispatch", "task_id", taskID)
		return
	}

	claimed, err := r.rc.Tasks.ClaimTask(ctx, taskID, r.workerID)
	if err != nil {
		r.log.Error("claim task failed", "task_id", taskID, "error", err)
		return
	}
	if !claimed {
		// Another worker (or a prior attempt) already owns this task.
		return
	}

	handler, ok := r.handlers[t.Type]
	if !ok {
		msg := fmt.Sprintf("no workflow registered for kind %q", t.Type)
		_ = r.rc.Tasks.UpdateTaskStatus(ctx, taskID, task.StatusFailed, nil, msg)
		r.notify(ctx, engine.EventWorkflowFailed, t, msg)
		return
	}

	start := time.Now()
	r.notify(ctx, engine.EventWorkflowStarted, t, "")

	j := NewJournal(r.journalStore, t.ID)
	result, err := handler(ctx, r.rc, j, t)
	if err != nil {
		_ = r.rc.Tasks.UpdateTaskStatus(ctx, taskID, task.StatusFailed, nil, err.Error())
		r.notify(ctx, engine.EventWorkflowFailed, t, err.Error())
		return
	}

	if err := r.rc.Tasks.UpdateTaskStatus(ctx, taskID, task.StatusCompleted, result, ""); err != nil {
		r.log.Error("persist task completion failed", "task_id", taskID, "error", err)
		return
	}

	evt := engine.WorkflowEvent{
		Type:         engine.EventWorkflowCompleted,
		WorldID:      t.WorldID,
		TaskID:       t.ID,
		WorkflowKind: string(t.Type),
		Status:       string(task.StatusCompleted),
		DurationMs:   time.Since(start).Milliseconds(),
		Timestamp:    time.Now().UTC(),
	}
	engine.SafeNotify(ctx, r.notifier, evt)
}

func (r *Runner) notify(ctx context.Context, eventType string, t *task.Task, errMsg string) {
	evt := engine.WorkflowEvent{
		Type:         eventType,
		WorldID:      t.WorldID,
		TaskID:       t.ID,
		WorkflowKind: string(t.Type),
		Message:      errMsg,
		Timestamp:    time.Now().UTC(),
	}
	if errMsg != "" {
		evt.Status = string(task.StatusFailed)
	}
	engine.SafeNotify(ctx, r.notifier, evt)
}
