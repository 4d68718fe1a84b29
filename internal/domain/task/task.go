// Package task defines the durable Task record (C6) that carries every
// workflow step's input as opaque storage rather than as in-memory state.
package task

import (
	"time"

	"github.com/google/uuid"
)

// Kind is one of the nine workflow kinds a Task can drive.
type Kind string

const (
	KindInitWorldCreation       Kind = "init_world_creation"
	KindGenerateWorldDescription Kind = "generate_world_description"
	KindGenerateWorldImage      Kind = "generate_world_image"
	KindGenerateCharacterBatch  Kind = "generate_character_batch"
	KindGenerateCharacter       Kind = "generate_character"
	KindGenerateCharacterAvatar Kind = "generate_character_avatar"
	KindGeneratePostBatch       Kind = "generate_post_batch"
	KindGeneratePost            Kind = "generate_post"
	KindGeneratePostImage       Kind = "generate_post_image"
)

// Status is the Task's lifecycle state. Transitions are strictly
// pending -> in_progress -> {completed | failed}; only the holder of the
// claim (matching WorkerID) may move a task out of in_progress.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Ref is the bounded handle passed down the workflow tree in place of the
// full Task, keeping workflow-input size constant regardless of payload
// size (see C6's "durable argument storage" role).
type Ref struct {
	TaskID string `json:"task_id"`
}

// Task is the durable record of one scheduled workflow step.
type Task struct {
	ID           string         `json:"id"`
	Type         Kind           `json:"type"`
	WorldID      string         `json:"world_id"`
	Status       Status         `json:"status"`
	Parameters   map[string]any `json:"parameters"`
	Result       map[string]any `json:"result,omitempty"`
	Error        string         `json:"error,omitempty"`
	AttemptCount int            `json:"attempt_count"`
	WorkerID     *string        `json:"worker_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// New builds a new pending Task with a fresh id.
func New(kind Kind, worldID string, parameters map[string]any) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:         uuid.NewString(),
		Type:       kind,
		WorldID:    worldID,
		Status:     StatusPending,
		Parameters: parameters,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Ref returns the bounded reference to this task.
func (t *Task) Ref() Ref { return Ref{TaskID: t.ID} }

// Patch is a partial update applied via UpdateTask ($set semantics plus an
// automatic updated_at bump).
type Patch struct {
	Status *Status
	Result map[string]any
	Error  *string
}
