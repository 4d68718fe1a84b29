package worldflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/worldforge/worldforge/internal/domain/ledger"
	"github.com/worldforge/worldforge/internal/domain/task"
	"github.com/worldforge/worldforge/internal/domain/workflowerr"
	"github.com/worldforge/worldforge/internal/domain/world"
	"github.com/worldforge/worldforge/pkg/llm"
)

// GenerateCharacter is workflow kind (e) (spec.md §4.7(e)).
func GenerateCharacter(ctx context.Context, rc *RunContext, j *Journal, t *task.Task) (map[string]any, error) {
	in, err := decodeParams[GenerateCharacterInput](t)
	if err != nil {
		return nil, workflowerr.New(workflowerr.Precondition, err)
	}

	params, err := RunActivity(ctx, j, "load_world_parameters", func(ctx context.Context) (*world.Parameters, error) {
		return rc.World.Get(ctx, in.WorldID)
	})
	if err != nil {
		return nil, fmt.Errorf("load world parameters: %w", err)
	}
	if params == nil {
		return nil, workflowerr.Newf(workflowerr.Precondition, "world parameters not found for %s", in.WorldID)
	}

	prompt := buildCharacterDetailPrompt(params, CharacterBatchItem{
		Concept:           in.Concept,
		ShortConcept:      in.ShortConcept,
		Role:              in.Role,
		PersonalityTraits: in.PersonalityTraits,
		Interests:         in.Interests,
		DesiredPostsCount: in.PostsCount,
	})

	detail, err := RunActivity(ctx, j, "generate_character_detail", func(ctx context.Context) (*CharacterDetailResponse, error) {
		return llm.GenerateStructuredContent[CharacterDetailResponse](ctx, rc.LLM, prompt, SchemaCharacterDetail, "", 0.9, 2000)
	})
	if err != nil {
		return nil, fmt.Errorf("generate character detail: %w", err)
	}

	metaBytes, err := json.Marshal(detail)
	if err != nil {
		return nil, fmt.Errorf("encode character meta: %w", err)
	}

	characterID, err := RunActivity(ctx, j, "create_character", func(ctx context.Context) (string, error) {
		return rc.Gateway.Character.CreateCharacter(ctx, in.WorldID, detail.DisplayName, string(metaBytes), "")
	})
	if err != nil {
		return nil, fmt.Errorf("create character: %w", err)
	}

	if err := RunVoidActivity(ctx, j, "count_character_created", func(ctx context.Context) error {
		return rc.Ledger.IncrementCounter(ctx, in.WorldID, ledger.CounterUsersCreated, 1)
	}); err != nil {
		return nil, fmt.Errorf("count character created: %w", err)
	}

	avatarParams, err := encodeParams(GenerateCharacterAvatarInput{WorldID: in.WorldID, CharacterID: characterID, Detail: *detail})
	if err != nil {
		return nil, err
	}
	if _, err := RunActivity(ctx, j, "spawn_generate_character_avatar", func(ctx context.Context) (string, error) {
		return rc.Spawn(ctx, task.KindGenerateCharacterAvatar, in.WorldID, avatarParams)
	}); err != nil {
		return nil, fmt.Errorf("spawn character avatar workflow: %w", err)
	}

	if err := RunVoidActivity(ctx, j, "start_posts_stage", func(ctx context.Context) error {
		return rc.Ledger.UpdateStage(ctx, in.WorldID, ledger.StagePosts, ledger.StatusInProgress)
	}); err != nil {
		return nil, fmt.Errorf("start posts stage: %w", err)
	}

	if err := RunVoidActivity(ctx, j, "start_finishing_stage", func(ctx context.Context) error {
		return rc.Ledger.UpdateStage(ctx, in.WorldID, ledger.StageFinishing, ledger.StatusInProgress)
	}); err != nil {
		return nil, fmt.Errorf("start finishing stage: %w", err)
	}

	postBatchParams, err := encodeParams(GeneratePostBatchInput{
		WorldID:         in.WorldID,
		CharacterID:     characterID,
		Detail:          *detail,
		PostsCount:      in.PostsCount,
		TotalPostsCount: in.PostsCount,
		GeneratedCount:  0,
		CountRun:        0,
		RecursionDepth:  0,
	})
	if err != nil {
		return nil, err
	}
	if _, err := RunActivity(ctx, j, "spawn_generate_post_batch", func(ctx context.Context) (string, error) {
		return rc.Spawn(ctx, task.KindGeneratePostBatch, in.WorldID, postBatchParams)
	}); err != nil {
		return nil, fmt.Errorf("spawn post batch workflow: %w", err)
	}

	return map[string]any{"character_id": characterID, "display_name": detail.DisplayName}, nil
}
