// Package ledger defines the per-world progress and cost ledger (C5): a
// single document mutated by atomic increments and stage transitions from
// many concurrent workers.
package ledger

import "fmt"

// Stage is one of the six generation phases tracked independently.
type Stage string

const (
	StageInitializing     Stage = "INITIALIZING"
	StageWorldDescription Stage = "WORLD_DESCRIPTION"
	StageWorldImage       Stage = "WORLD_IMAGE"
	StageCharacters       Stage = "CHARACTERS"
	StagePosts            Stage = "POSTS"
	StageFinishing        Stage = "FINISHING"
)

// Stages lists all six stages in their canonical order.
var Stages = []Stage{StageInitializing, StageWorldDescription, StageWorldImage, StageCharacters, StagePosts, StageFinishing}

// Status is the status of the overall world or of one stage.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// StageEntry is one stage's independent status.
type StageEntry struct {
	Stage  Stage  `json:"stage"`
	Status Status `json:"status"`
}

// CounterField names the whitelist of counters IncrementCounter accepts.
// Matching the document's monotonic-non-decreasing invariant, only these
// fields may be atomically incremented.
type CounterField string

const (
	CounterTasksTotal         CounterField = "tasks_total"
	CounterTasksCompleted     CounterField = "tasks_completed"
	CounterTasksFailed        CounterField = "tasks_failed"
	CounterUsersCreated       CounterField = "users_created"
	CounterPostsCreated       CounterField = "posts_created"
	CounterAPICallsMadeLLM    CounterField = "api_calls_made_llm"
	CounterAPICallsMadeImages CounterField = "api_calls_made_images"
)

var validCounters = map[CounterField]bool{
	CounterTasksTotal:         true,
	CounterTasksCompleted:     true,
	CounterTasksFailed:        true,
	CounterUsersCreated:       true,
	CounterPostsCreated:       true,
	CounterAPICallsMadeLLM:    true,
	CounterAPICallsMadeImages: true,
}

// ValidCounter reports whether field belongs to the counter whitelist.
func ValidCounter(field CounterField) bool { return validCounters[field] }

// CostType names the whitelist of IncrementCost spend categories.
type CostType string

const (
	CostLLM   CostType = "llm"
	CostImage CostType = "image"
)

// Ledger is the per-world ledger document (spec.md §3 WorldGenerationStatus).
type Ledger struct {
	WorldID      string       `json:"world_id"`
	Status       Status       `json:"status"`
	CurrentStage Stage        `json:"current_stage"`
	Stages       []StageEntry `json:"stages"`

	TasksTotal     int `json:"tasks_total"`
	TasksCompleted int `json:"tasks_completed"`
	TasksFailed    int `json:"tasks_failed"`

	UsersPredicted int `json:"users_predicted"`
	UsersCreated   int `json:"users_created"`
	PostsPredicted int `json:"posts_predicted"`
	PostsCreated   int `json:"posts_created"`

	APICallLimitsLLM    int `json:"api_call_limits_llm"`
	APICallsMadeLLM     int `json:"api_calls_made_llm"`
	APICallLimitsImages int `json:"api_call_limits_images"`
	APICallsMadeImages  int `json:"api_calls_made_images"`

	CostLLM   float64 `json:"cost_llm"`
	CostImage float64 `json:"cost_image"`
}

// NewLedger initializes a fresh ledger document with all six stages pending
// and INITIALIZING set to in_progress, matching InitializeWorld's contract.
func NewLedger(worldID string, usersPredicted, postsPredicted, llmLimit, imagesLimit int) *Ledger {
	stages := make([]StageEntry, 0, len(Stages))
	for _, s := range Stages {
		status := StatusPending
		if s == StageInitializing {
			status = StatusInProgress
		}
		stages = append(stages, StageEntry{Stage: s, Status: status})
	}
	return &Ledger{
		WorldID:             worldID,
		Status:              StatusInProgress,
		CurrentStage:        StageInitializing,
		Stages:              stages,
		UsersPredicted:      usersPredicted,
		PostsPredicted:      postsPredicted,
		APICallLimitsLLM:    llmLimit,
		APICallLimitsImages: imagesLimit,
	}
}

// SetStage transitions one stage and recomputes the overall status: FAILED
// if any stage is FAILED, COMPLETED iff all stages are COMPLETED, otherwise
// IN_PROGRESS. current_stage is only updated when the new status is
// IN_PROGRESS, matching spec.md §4.5.
func (l *Ledger) SetStage(stage Stage, status Status) error {
	found := false
	for i := range l.Stages {
		if l.Stages[i].Stage == stage {
			l.Stages[i].Status = status
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("unknown stage %q", stage)
	}
	if status == StatusInProgress {
		l.CurrentStage = stage
	}
	l.Status = l.deriveOverallStatus()
	return nil
}

func (l *Ledger) deriveOverallStatus() Status {
	allCompleted := true
	for _, s := range l.Stages {
		if s.Status == StatusFailed {
			return StatusFailed
		}
		if s.Status != StatusCompleted {
			allCompleted = false
		}
	}
	if allCompleted {
		return StatusCompleted
	}
	return StatusInProgress
}

// StageStatus returns the current status of stage, if tracked.
func (l *Ledger) StageStatus(stage Stage) (Status, bool) {
	for _, s := range l.Stages {
		if s.Stage == stage {
			return s.Status, true
		}
	}
	return "", false
}

// AllCompletedExcept reports whether every stage other than except is
// COMPLETED — used by GeneratePostImage to decide whether POSTS/FINISHING
// can be closed out once the last post lands.
func (l *Ledger) AllCompletedExcept(except Stage) bool {
	for _, s := range l.Stages {
		if s.Stage == except {
			continue
		}
		if s.Status != StatusCompleted {
			return false
		}
	}
	return true
}
