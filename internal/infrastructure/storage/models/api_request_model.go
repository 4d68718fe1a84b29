package models

import (
	"time"

	"github.com/uptrace/bun"
)

// APIRequestModel is the api_requests_history collection row: an
// append-only audit log indexed by world_id, task_id, api_type
// (spec.md §3/§6).
type APIRequestModel struct {
	bun.BaseModel `bun:"table:api_requests_history,alias:arh"`

	ID          string    `bun:"id,pk" json:"id"`
	APIType     string    `bun:"api_type,notnull" json:"api_type"`
	TaskID      string    `bun:"task_id,notnull" json:"task_id"`
	WorldID     string    `bun:"world_id,notnull" json:"world_id"`
	RequestType string    `bun:"request_type,notnull" json:"request_type"`
	Request     string    `bun:"request" json:"request"`
	Response    string    `bun:"response" json:"response,omitempty"`
	Error       string    `bun:"error" json:"error,omitempty"`
	DurationMs  int64     `bun:"duration_ms,notnull,default:0" json:"duration_ms"`
	Timestamp   time.Time `bun:"timestamp,notnull,default:current_timestamp" json:"timestamp"`
}
