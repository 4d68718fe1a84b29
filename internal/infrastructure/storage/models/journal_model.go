package models

import (
	"time"

	"github.com/uptrace/bun"
)

// JournalModel is the workflow_journal collection row: one durable record
// per (instance_id, sequence_no), used to replay a workflow deterministically
// after a crash instead of re-invoking its activities.
type JournalModel struct {
	bun.BaseModel `bun:"table:workflow_journal,alias:wfj"`

	InstanceID   string    `bun:"instance_id,pk" json:"instance_id"`
	SequenceNo   int       `bun:"sequence_no,pk" json:"sequence_no"`
	ActivityName string    `bun:"activity_name,notnull" json:"activity_name"`
	ResultJSON   []byte    `bun:"result_json,type:jsonb,notnull" json:"result_json"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
