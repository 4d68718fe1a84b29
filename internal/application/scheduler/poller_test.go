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

// pendingTaskStore stands in for task.Store, serving a fixed backlog of
// pending tasks and nothing else.
type pendingTaskStore struct {
	fakeTaskStore
	pending []*task.Task
}

func (s *pendingTaskStore) ListPending(ctx context.Context, limit int) ([]*task.Task, error) {
	if limit < len(s.pending) {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

// spyDispatcher records every task id it was asked to spawn.
type spyDispatcher struct {
	mu  sync.Mutex
	ids []string
}

func (d *spyDispatcher) SpawnDetached(taskID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, taskID)
}

func TestPendingTaskPoller_Poll(t *testing.T) {
	store := &pendingTaskStore{
		fakeTaskStore: *newFakeTaskStore(),
		pending: []*task.Task{
			{ID: "t1"},
			{ID: "t2"},
		},
	}
	dispatcher := &spyDispatcher{}

	poller := NewPendingTaskPoller(store, dispatcher, logger.Default(), 10, time.Minute)
	poller.Poll(context.Background())

	require.Len(t, dispatcher.ids, 2)
	assert.ElementsMatch(t, []string{"t1", "t2"}, dispatcher.ids)
}

func TestPendingTaskPoller_PollRespectsBatchSize(t *testing.T) {
	store := &pendingTaskStore{
		fakeTaskStore: *newFakeTaskStore(),
		pending: []*task.Task{
			{ID: "t1"},
			{ID: "t2"},
			{ID: "t3"},
		},
	}
	dispatcher := &spyDispatcher{}

	poller := NewPendingTaskPoller(store, dispatcher, logger.Default(), 2, time.Minute)
	poller.Poll(context.Background())

	assert.Len(t, dispatcher.ids, 2)
}
