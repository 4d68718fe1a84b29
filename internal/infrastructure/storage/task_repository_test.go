package storage

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/worldforge/worldforge/internal/domain/task"
	"github.com/worldforge/worldforge/migrations"
)

func setupTaskRepoTest(t *testing.T) (*TaskRepository, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "worldforge_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections"),
	}

	postgres, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := postgres.Host(ctx)
	require.NoError(t, err)
	port, err := postgres.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/worldforge_test?sslmode=disable", host, port.Port())
	time.Sleep(500 * time.Millisecond)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New(), bun.WithDiscardUnknownColumns())

	migrator, err := NewMigrator(db, migrations.FS)
	require.NoError(t, err)
	require.NoError(t, migrator.Init(ctx))
	require.NoError(t, migrator.Up(ctx))

	repo := NewTaskRepository(db)

	cleanup := func() {
		db.Close()
		_ = postgres.Terminate(ctx)
	}
	return repo, cleanup
}

func TestTaskRepo_CreateAndGet(t *testing.T) {
	repo, cleanup := setupTaskRepoTest(t)
	defer cleanup()
	ctx := context.Background()

	tk := task.New(task.KindInitWorldCreation, "world-1", map[string]any{"seed": "oakhaven"})
	require.NoError(t, repo.CreateTask(ctx, tk))

	got, err := repo.GetTask(ctx, tk.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tk.WorldID, got.WorldID)
	assert.Equal(t, task.StatusPending, got.Status)
}

func TestTaskRepo_GetTask_NotFound(t *testing.T) {
	repo, cleanup := setupTaskRepoTest(t)
	defer cleanup()

	got, err := repo.GetTask(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTaskRepo_ClaimTask_OnlyOneWinner(t *testing.T) {
	repo, cleanup := setupTaskRepoTest(t)
	defer cleanup()
	ctx := context.Background()

	tk := task.New(task.KindInitWorldCreation, "world-1", nil)
	require.NoError(t, repo.CreateTask(ctx, tk))

	claimedA, err := repo.ClaimTask(ctx, tk.ID, "worker-a")
	require.NoError(t, err)
	claimedB, err := repo.ClaimTask(ctx, tk.ID, "worker-b")
	require.NoError(t, err)

	assert.True(t, claimedA)
	assert.False(t, claimedB)

	got, err := repo.GetTask(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, got.Status)
	require.NotNil(t, got.WorkerID)
	assert.Equal(t, "worker-a", *got.WorkerID)
}

func TestTaskRepo_RequeueStuck(t *testing.T) {
	repo, cleanup := setupTaskRepoTest(t)
	defer cleanup()
	ctx := context.Background()

	stale := task.New(task.KindInitWorldCreation, "world-1", nil)
	require.NoError(t, repo.CreateTask(ctx, stale))
	claimed, err := repo.ClaimTask(ctx, stale.ID, "worker-a")
	require.NoError(t, err)
	require.True(t, claimed)

	_, err = repo.db.NewRaw("UPDATE tasks SET updated_at = ? WHERE id = ?", time.Now().UTC().Add(-time.Hour), stale.ID).Exec(ctx)
	require.NoError(t, err)

	fresh := task.New(task.KindInitWorldCreation, "world-1", nil)
	require.NoError(t, repo.CreateTask(ctx, fresh))
	claimed, err = repo.ClaimTask(ctx, fresh.ID, "worker-b")
	require.NoError(t, err)
	require.True(t, claimed)

	ids, err := repo.RequeueStuck(ctx, time.Now().UTC().Add(-10*time.Minute))
	require.NoError(t, err)
	require.Equal(t, []string{stale.ID}, ids)

	got, err := repo.GetTask(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusPending, got.Status)
	assert.Nil(t, got.WorkerID)

	got, err = repo.GetTask(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, got.Status)
}

func TestTaskRepo_ListPending(t *testing.T) {
	repo, cleanup := setupTaskRepoTest(t)
	defer cleanup()
	ctx := context.Background()

	pending := task.New(task.KindInitWorldCreation, "world-1", nil)
	require.NoError(t, repo.CreateTask(ctx, pending))

	claimed := task.New(task.KindInitWorldCreation, "world-1", nil)
	require.NoError(t, repo.CreateTask(ctx, claimed))
	_, err := repo.ClaimTask(ctx, claimed.ID, "worker-a")
	require.NoError(t, err)

	ids, err := repo.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, pending.ID, ids[0].ID)
}

func TestTaskRepo_ListByWorld(t *testing.T) {
	repo, cleanup := setupTaskRepoTest(t)
	defer cleanup()
	ctx := context.Background()

	a := task.New(task.KindInitWorldCreation, "world-1", nil)
	b := task.New(task.KindGenerateCharacterBatch, "world-1", nil)
	other := task.New(task.KindInitWorldCreation, "world-2", nil)
	require.NoError(t, repo.CreateTask(ctx, a))
	require.NoError(t, repo.CreateTask(ctx, b))
	require.NoError(t, repo.CreateTask(ctx, other))

	tasks, err := repo.ListByWorld(ctx, "world-1")
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}
