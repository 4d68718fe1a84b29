package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/worldforge/worldforge/internal/domain/task"
	"github.com/worldforge/worldforge/internal/infrastructure/storage/models"
)

var _ task.Store = (*TaskRepository)(nil)

// TaskRepository implements task.Store using Bun ORM, grounded on the
// teacher's ExecutionRepository.
type TaskRepository struct {
	db *bun.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *bun.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) CreateTask(ctx context.Context, t *task.Task) error {
	m := toTaskModel(t)
	if _, err := r.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetTask(ctx context.Context, taskID string) (*task.Task, error) {
	m := new(models.TaskModel)
	err := r.db.NewSelect().Model(m).Where("id = ?", taskID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return fromTaskModel(m), nil
}

func (r *TaskRepository) UpdateTask(ctx context.Context, taskID string, patch task.Patch) error {
	query := r.db.NewUpdate().Model((*models.TaskModel)(nil)).Set("updated_at = ?", time.Now().UTC())

	if patch.Status != nil {
		query = query.Set("status = ?", string(*patch.Status))
	}
	if patch.Result != nil {
		query = query.Set("result = ?", models.JSONBMap(patch.Result))
	}
	if patch.Error != nil {
		query = query.Set("error = ?", *patch.Error)
	}

	_, err := query.Where("id = ?", taskID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (r *TaskRepository) UpdateTaskStatus(ctx context.Context, taskID string, status task.Status, result map[string]any, errMsg string) error {
	patch := task.Patch{Status: &status}
	if result != nil {
		patch.Result = result
	}
	if errMsg != "" {
		patch.Error = &errMsg
	}
	return r.UpdateTask(ctx, taskID, patch)
}

// ClaimTask is the atomic test-and-set of spec.md §4.6: succeeds only if
// status=pending and worker_id is unset, grounded on the teacher's
// service_key_repository.go single-row conditional update idiom.
func (r *TaskRepository) ClaimTask(ctx context.Context, taskID, workerID string) (bool, error) {
	res, err := r.db.NewUpdate().
		Model((*models.TaskModel)(nil)).
		Set("status = ?", string(task.StatusInProgress)).
		Set("worker_id = ?", workerID).
		Set("attempt_count = attempt_count + 1").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", taskID).
		Where("status = ?", string(task.StatusPending)).
		Where("worker_id IS NULL").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("claim task: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim task rows affected: %w", err)
	}
	return rows == 1, nil
}

// RequeueStuck implements the stuck-task reaper's sweep (spec.md
// expansion §9), grounded on the same conditional-update idiom as
// ClaimTask: only rows still in_progress and past the deadline move,
// so a task a worker finishes mid-sweep is left untouched.
func (r *TaskRepository) RequeueStuck(ctx context.Context, olderThan time.Time) ([]string, error) {
	var ids []string
	err := r.db.NewSelect().
		Model((*models.TaskModel)(nil)).
		Column("id").
		Where("status = ?", string(task.StatusInProgress)).
		Where("updated_at < ?", olderThan).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("select stuck tasks: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	_, err = r.db.NewUpdate().
		Model((*models.TaskModel)(nil)).
		Set("status = ?", string(task.StatusPending)).
		Set("worker_id = NULL").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id IN (?)", bun.In(ids)).
		Where("status = ?", string(task.StatusInProgress)).
		Where("updated_at < ?", olderThan).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("requeue stuck tasks: %w", err)
	}
	return ids, nil
}

// ListByWorld supports the operator inspection surface (spec.md
// expansion §9's read-only HTTP API).
func (r *TaskRepository) ListByWorld(ctx context.Context, worldID string) ([]*task.Task, error) {
	var ms []*models.TaskModel
	err := r.db.NewSelect().
		Model(&ms).
		Where("world_id = ?", worldID).
		OrderExpr("updated_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks by world: %w", err)
	}

	tasks := make([]*task.Task, 0, len(ms))
	for _, m := range ms {
		tasks = append(tasks, fromTaskModel(m))
	}
	return tasks, nil
}

// ListPending supports the pending-task discoverer (spec.md expansion
// §9): tasks created by a direct insert rather than Runner.Enqueue
// still need a worker. Ordered oldest-first so a backlog drains in
// submission order.
func (r *TaskRepository) ListPending(ctx context.Context, limit int) ([]*task.Task, error) {
	var ms []*models.TaskModel
	err := r.db.NewSelect().
		Model(&ms).
		Where("status = ?", string(task.StatusPending)).
		Where("worker_id IS NULL").
		OrderExpr("created_at ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending tasks: %w", err)
	}

	tasks := make([]*task.Task, 0, len(ms))
	for _, m := range ms {
		tasks = append(tasks, fromTaskModel(m))
	}
	return tasks, nil
}

func toTaskModel(t *task.Task) *models.TaskModel {
	return &models.TaskModel{
		ID:           t.ID,
		Type:         string(t.Type),
		WorldID:      t.WorldID,
		Status:       string(t.Status),
		Parameters:   models.JSONBMap(t.Parameters),
		Result:       models.JSONBMap(t.Result),
		Error:        t.Error,
		AttemptCount: t.AttemptCount,
		WorkerID:     t.WorkerID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func fromTaskModel(m *models.TaskModel) *task.Task {
	return &task.Task{
		ID:           m.ID,
		Type:         task.Kind(m.Type),
		WorldID:      m.WorldID,
		Status:       task.Status(m.Status),
		Parameters:   map[string]any(m.Parameters),
		Result:       map[string]any(m.Result),
		Error:        m.Error,
		AttemptCount: m.AttemptCount,
		WorkerID:     m.WorkerID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
