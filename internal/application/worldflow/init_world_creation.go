package worldflow

import (
	"context"
	"fmt"

	"github.com/worldforge/worldforge/internal/domain/ledger"
	"github.com/worldforge/worldforge/internal/domain/task"
	"github.com/worldforge/worldforge/internal/domain/workflowerr"
)

// InitWorldCreation is workflow kind (a): the root workflow that validates
// the request, initializes the ledger, and hands off to
// GenerateWorldDescription before returning (spec.md §4.7(a)).
func InitWorldCreation(ctx context.Context, rc *RunContext, j *Journal, t *task.Task) (map[string]any, error) {
	in, err := decodeParams[InitWorldCreationInput](t)
	if err != nil {
		return nil, workflowerr.New(workflowerr.Precondition, err)
	}
	if in.WorldPrompt == "" {
		return nil, workflowerr.Newf(workflowerr.Precondition, "world_prompt must not be empty")
	}

	err = RunVoidActivity(ctx, j, "initialize_world", func(ctx context.Context) error {
		return rc.Ledger.InitializeWorld(ctx, in.WorldID, in.CharactersCount, in.PostsCount, in.WorldPrompt, in.LLMLimit, in.ImagesLimit)
	})
	if err != nil {
		return nil, fmt.Errorf("initialize world: %w", err)
	}

	err = RunVoidActivity(ctx, j, "complete_initializing_stage", func(ctx context.Context) error {
		return rc.Ledger.UpdateStage(ctx, in.WorldID, ledger.StageInitializing, ledger.StatusCompleted)
	})
	if err != nil {
		return nil, fmt.Errorf("complete initializing stage: %w", err)
	}

	descParams, err := encodeParams(GenerateWorldDescriptionInput{
		WorldID:         in.WorldID,
		WorldPrompt:     in.WorldPrompt,
		CharactersCount: in.CharactersCount,
		PostsCount:      in.PostsCount,
		Language:        in.Language,
		ExtraPrefs:      in.ExtraPrefs,
	})
	if err != nil {
		return nil, err
	}

	_, err = RunActivity(ctx, j, "spawn_generate_world_description", func(ctx context.Context) (string, error) {
		return rc.Spawn(ctx, task.KindGenerateWorldDescription, in.WorldID, descParams)
	})
	if err != nil {
		return nil, fmt.Errorf("spawn world description workflow: %w", err)
	}

	err = RunVoidActivity(ctx, j, "start_world_description_stage", func(ctx context.Context) error {
		return rc.Ledger.UpdateStage(ctx, in.WorldID, ledger.StageWorldDescription, ledger.StatusInProgress)
	})
	if err != nil {
		return nil, fmt.Errorf("start world description stage: %w", err)
	}

	return map[string]any{"world_id": in.WorldID}, nil
}
