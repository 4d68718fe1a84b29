package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldforge/worldforge/internal/domain/task"
	"github.com/worldforge/worldforge/internal/infrastructure/logger"
)

// fakeTaskStore is an in-memory task.Store stand-in, tracking only what
// the reaper touches.
type fakeTaskStore struct {
	mu        sync.Mutex
	updatedAt map[string]time.Time
	status    map[string]task.Status
	requeued  []string
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{
		updatedAt: make(map[string]time.Time),
		status:    make(map[string]task.Status),
	}
}

func (f *fakeTaskStore) CreateTask(ctx context.Context, t *task.Task) error { return nil }
func (f *fakeTaskStore) GetTask(ctx context.Context, taskID string) (*task.Task, error) {
	return nil, nil
}
func (f *fakeTaskStore) UpdateTask(ctx context.Context, taskID string, patch task.Patch) error {
	return nil
}
func (f *fakeTaskStore) UpdateTaskStatus(ctx context.Context, taskID string, status task.Status, result map[string]any, errMsg string) error {
	return nil
}
func (f *fakeTaskStore) ClaimTask(ctx context.Context, taskID, workerID string) (bool, error) {
	return false, nil
}

func (f *fakeTaskStore) ListByWorld(ctx context.Context, worldID string) ([]*task.Task, error) {
	return nil, nil
}

func (f *fakeTaskStore) ListPending(ctx context.Context, limit int) ([]*task.Task, error) {
	return nil, nil
}

func (f *fakeTaskStore) RequeueStuck(ctx context.Context, olderThan time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var reset []string
	for id, status := range f.status {
		if status != task.StatusInProgress {
			continue
		}
		if f.updatedAt[id].Before(olderThan) {
			f.status[id] = task.StatusPending
			reset = append(reset, id)
		}
	}
	f.requeued = append(f.requeued, reset...)
	return reset, nil
}

func TestStuckTaskReaper_Sweep(t *testing.T) {
	store := newFakeTaskStore()
	store.status["stale"] = task.StatusInProgress
	store.updatedAt["stale"] = time.Now().UTC().Add(-time.Hour)
	store.status["fresh"] = task.StatusInProgress
	store.updatedAt["fresh"] = time.Now().UTC()

	reaper := NewStuckTaskReaper(store, logger.Default(), 10*time.Minute, time.Minute)
	reaper.Sweep(context.Background())

	assert.Equal(t, task.StatusPending, store.status["stale"])
	assert.Equal(t, task.StatusInProgress, store.status["fresh"])
	require.Len(t, store.requeued, 1)
	assert.Equal(t, "stale", store.requeued[0])
}

func TestStuckTaskReaper_SweepNoStuckTasks(t *testing.T) {
	store := newFakeTaskStore()
	store.status["fresh"] = task.StatusInProgress
	store.updatedAt["fresh"] = time.Now().UTC()

	reaper := NewStuckTaskReaper(store, logger.Default(), 10*time.Minute, time.Minute)
	reaper.Sweep(context.Background())

	assert.Empty(t, store.requeued)
}
