package models

import (
	"time"

	"github.com/uptrace/bun"
)

// LedgerModel is the world_generation_status collection row, keyed by
// _id = world_id (spec.md §3/§6).
type LedgerModel struct {
	bun.BaseModel `bun:"table:world_generation_status,alias:wgs"`

	WorldID      string `bun:"world_id,pk" json:"world_id"`
	Status       string `bun:"status,notnull" json:"status"`
	CurrentStage string `bun:"current_stage,notnull" json:"current_stage"`
	// Stages holds the JSON-encoded []ledger.StageEntry; stored as raw JSON
	// rather than JSONBMap since it's an array, not an object.
	Stages []byte `bun:"stages,type:jsonb,default:'[]'" json:"stages"`

	TasksTotal     int `bun:"tasks_total,notnull,default:0" json:"tasks_total"`
	TasksCompleted int `bun:"tasks_completed,notnull,default:0" json:"tasks_completed"`
	TasksFailed    int `bun:"tasks_failed,notnull,default:0" json:"tasks_failed"`

	UsersPredicted int `bun:"users_predicted,notnull,default:0" json:"users_predicted"`
	UsersCreated   int `bun:"users_created,notnull,default:0" json:"users_created"`
	PostsPredicted int `bun:"posts_predicted,notnull,default:0" json:"posts_predicted"`
	PostsCreated   int `bun:"posts_created,notnull,default:0" json:"posts_created"`

	APICallLimitsLLM    int `bun:"api_call_limits_llm,notnull,default:0" json:"api_call_limits_llm"`
	APICallsMadeLLM     int `bun:"api_calls_made_llm,notnull,default:0" json:"api_calls_made_llm"`
	APICallLimitsImages int `bun:"api_call_limits_images,notnull,default:0" json:"api_call_limits_images"`
	APICallsMadeImages  int `bun:"api_calls_made_images,notnull,default:0" json:"api_calls_made_images"`

	CostLLM   float64 `bun:"cost_llm,notnull,default:0" json:"cost_llm"`
	CostImage float64 `bun:"cost_image,notnull,default:0" json:"cost_image"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}
