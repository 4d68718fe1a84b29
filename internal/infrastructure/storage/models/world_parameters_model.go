package models

import (
	"time"

	"github.com/uptrace/bun"
)

// WorldParametersModel is the world_parameters collection row, keyed by
// _id = world_id (spec.md §3/§6). The full Parameters struct is stored as
// a single jsonb document rather than flattened columns, matching the
// document-store shape the rest of the core assumes.
type WorldParametersModel struct {
	bun.BaseModel `bun:"table:world_parameters,alias:wp"`

	WorldID   string    `bun:"world_id,pk" json:"world_id"`
	Document  []byte    `bun:"document,type:jsonb,notnull" json:"document"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}
