package task

import (
	"context"
	"time"
)

// Store is the Task Store's persistence contract (spec.md §4.6), implemented
// by internal/infrastructure/storage against the document store.
type Store interface {
	// CreateTask inserts task; fails on duplicate id.
	CreateTask(ctx context.Context, t *Task) error

	// GetTask returns the task, or nil if it doesn't exist.
	GetTask(ctx context.Context, taskID string) (*Task, error)

	// UpdateTask applies patch as a $set with an auto-updated updated_at.
	UpdateTask(ctx context.Context, taskID string, patch Patch) error

	// UpdateTaskStatus sets status, and optionally result/errMsg.
	UpdateTaskStatus(ctx context.Context, taskID string, status Status, result map[string]any, errMsg string) error

	// ClaimTask is the atomic test-and-set: succeeds only if status=pending
	// and worker_id is unset; on success it sets status=in_progress,
	// worker_id=workerID, and increments attempt_count.
	ClaimTask(ctx context.Context, taskID, workerID string) (bool, error)

	// RequeueStuck resets every task with status=in_progress and
	// updated_at older than olderThan back to pending with worker_id
	// cleared, returning the ids it reset.
	RequeueStuck(ctx context.Context, olderThan time.Time) ([]string, error)

	// ListByWorld returns every task for worldID, most recently updated
	// first, for operator inspection.
	ListByWorld(ctx context.Context, worldID string) ([]*Task, error)

	// ListPending returns up to limit tasks with status=pending and no
	// worker_id, oldest first, so a discoverer can hand off tasks that
	// were inserted directly rather than through Runner.Enqueue.
	ListPending(ctx context.Context, limit int) ([]*Task, error)
}
