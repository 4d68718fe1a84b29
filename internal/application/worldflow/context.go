package worldflow

import (
	"context"

	"github.com/worldforge/worldforge/internal/domain/audit"
	"github.com/worldforge/worldforge/internal/domain/ledger"
	"github.com/worldforge/worldforge/internal/domain/task"
	"github.com/worldforge/worldforge/internal/domain/world"
	"github.com/worldforge/worldforge/internal/infrastructure/gateway"
	"github.com/worldforge/worldforge/internal/infrastructure/logger"
	"github.com/worldforge/worldforge/internal/infrastructure/pool"
	"github.com/worldforge/worldforge/pkg/imagegen"
	"github.com/worldforge/worldforge/pkg/llm"
)

// RunContext is the set of collaborators every workflow kind needs,
// generalized from the teacher's ExecutionContext (which carried a single
// shared DAG state map) into named handles onto each C1-C6 component. One
// RunContext is built per Runner and shared read-only across all activities.
type RunContext struct {
	Tasks    task.Store
	Ledger   ledger.Store
	World    world.Store
	Audit    audit.Recorder
	Gateway  *gateway.Clients
	LLM      *llm.Client
	ImageGen *imagegen.Client
	Log      *logger.Logger
	Schemas  *pool.SchemaRegistry

	// CompletionRule is an expr-lang expression evaluated against a
	// completionEnv to decide whether the POSTS/FINISHING stages close
	// (see maybeCompleteWorld). Falls back to defaultCompletionRule when
	// empty, so a zero-value RunContext in tests still behaves correctly.
	CompletionRule string

	// Spawn schedules a child task for kind against worldID and returns its
	// id once persisted; the Runner picks it up on its own dispatch loop.
	Spawn func(ctx context.Context, kind task.Kind, worldID string, parameters map[string]any) (string, error)
}

// WorkflowFunc implements one of the nine workflow kinds: it reads t's
// parameters, runs its activities through RunActivity for replay safety, and
// returns the result to persist on the task (or an error to fail it).
type WorkflowFunc func(ctx context.Context, rc *RunContext, j *Journal, t *task.Task) (map[string]any, error)
