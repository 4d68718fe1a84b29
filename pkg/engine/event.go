package engine

import "time"

// WorkflowEvent is a lifecycle event emitted during workflow/activity
// execution, generalized from the teacher's node-oriented ExecutionEvent to
// carry world/task/stage identifiers instead of DAG node identifiers.
type WorkflowEvent struct {
	Type         string
	WorldID      string
	TaskID       string
	WorkflowKind string
	Stage        string
	Status       string
	Error        error
	Message      string
	DurationMs   int64
	Timestamp    time.Time
}

// Event type constants, mirrored from the teacher's wave/node event names.
const (
	EventWorkflowStarted   = "workflow_started"
	EventWorkflowCompleted = "workflow_completed"
	EventWorkflowFailed    = "workflow_failed"
	EventActivityStarted   = "activity_started"
	EventActivityCompleted = "activity_completed"
	EventActivityRetried   = "activity_retried"
	EventStageTransitioned = "stage_transitioned"
)
