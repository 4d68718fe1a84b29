package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TaskModel is the tasks collection row (spec.md §3/§6): durable argument
// storage for one scheduled workflow step. Indexed by world_id, type,
// status and (world_id, type) at the migration level.
type TaskModel struct {
	bun.BaseModel `bun:"table:tasks,alias:tsk"`

	ID           string    `bun:"id,pk" json:"id"`
	Type         string    `bun:"type,notnull" json:"type"`
	WorldID      string    `bun:"world_id,notnull" json:"world_id"`
	Status       string    `bun:"status,notnull,default:'pending'" json:"status"`
	Parameters   JSONBMap  `bun:"parameters,type:jsonb,default:'{}'" json:"parameters"`
	Result       JSONBMap  `bun:"result,type:jsonb" json:"result,omitempty"`
	Error        string    `bun:"error" json:"error,omitempty"`
	AttemptCount int       `bun:"attempt_count,notnull,default:0" json:"attempt_count"`
	WorkerID     *string   `bun:"worker_id" json:"worker_id,omitempty"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}
