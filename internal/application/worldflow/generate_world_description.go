package worldflow

import (
	"context"
	"fmt"

	"github.com/worldforge/worldforge/internal/domain/ledger"
	"github.com/worldforge/worldforge/internal/domain/task"
	"github.com/worldforge/worldforge/internal/domain/workflowerr"
	"github.com/worldforge/worldforge/internal/domain/world"
	"github.com/worldforge/worldforge/pkg/llm"
)

// GenerateWorldDescription is workflow kind (b) (spec.md §4.7(b)).
func GenerateWorldDescription(ctx context.Context, rc *RunContext, j *Journal, t *task.Task) (map[string]any, error) {
	in, err := decodeParams[GenerateWorldDescriptionInput](t)
	if err != nil {
		return nil, workflowerr.New(workflowerr.Precondition, err)
	}

	if err := RunVoidActivity(ctx, j, "start_world_description_stage", func(ctx context.Context) error {
		return rc.Ledger.UpdateStage(ctx, in.WorldID, ledger.StageWorldDescription, ledger.StatusInProgress)
	}); err != nil {
		return nil, fmt.Errorf("start world description stage: %w", err)
	}

	prompt := buildWorldDescriptionPrompt(in.WorldPrompt, world.UserPreferences{Language: in.Language, ExtraPrefs: in.ExtraPrefs})

	if err := RunVoidActivity(ctx, j, "count_world_description_llm_call", func(ctx context.Context) error {
		return rc.Ledger.IncrementCounter(ctx, in.WorldID, ledger.CounterAPICallsMadeLLM, 1)
	}); err != nil {
		return nil, fmt.Errorf("count llm call: %w", err)
	}

	resp, err := RunActivity(ctx, j, "generate_world_description", func(ctx context.Context) (*WorldDescriptionResponse, error) {
		return llm.GenerateStructuredContent[WorldDescriptionResponse](ctx, rc.LLM, prompt, SchemaWorldDescription, "", 0.9, 2000)
	})
	if err != nil {
		return nil, fmt.Errorf("generate world description: %w", err)
	}

	params := &world.Parameters{
		WorldID:          in.WorldID,
		Name:             resp.Name,
		ShortDescription: resp.ShortDescription,
		LongDescription:  resp.LongDescription,
		Theme:            resp.Theme,
		TechnologyLevel:  resp.TechnologyLevel,
		SocialStructure:  resp.SocialStructure,
		Culture:          resp.Culture,
		Geography:        resp.Geography,
		VisualStyle:      resp.VisualStyle,
		History:          resp.History,
		CommonActivities: resp.CommonActivities,
		TypicalStories:   resp.TypicalStories,
		AdditionalDetails: world.AdditionalDetails{
			Climate:     resp.AdditionalDetails.Climate,
			Resources:   resp.AdditionalDetails.Resources,
			Conflicts:   resp.AdditionalDetails.Conflicts,
			Traditions:  resp.AdditionalDetails.Traditions,
			Technology:  resp.AdditionalDetails.Technology,
			MagicSystem: resp.AdditionalDetails.MagicSystem,
			TimePeriod:  resp.AdditionalDetails.TimePeriod,
			Language:    resp.AdditionalDetails.Language,
			Extras:      resp.AdditionalDetails.Extras,
		},
		UserPreferences: world.UserPreferences{Language: in.Language, ExtraPrefs: in.ExtraPrefs},
	}

	if err := RunVoidActivity(ctx, j, "persist_world_parameters", func(ctx context.Context) error {
		return rc.World.Save(ctx, params)
	}); err != nil {
		return nil, fmt.Errorf("persist world parameters: %w", err)
	}

	if err := RunVoidActivity(ctx, j, "push_world_parameters_downstream", func(ctx context.Context) error {
		return rc.Gateway.World.UpdateWorldParams(ctx, in.WorldID, *params, t.ID)
	}); err != nil {
		return nil, fmt.Errorf("push world parameters downstream: %w", err)
	}

	if err := RunVoidActivity(ctx, j, "complete_world_description_stage", func(ctx context.Context) error {
		return rc.Ledger.UpdateStage(ctx, in.WorldID, ledger.StageWorldDescription, ledger.StatusCompleted)
	}); err != nil {
		return nil, fmt.Errorf("complete world description stage: %w", err)
	}

	if err := RunVoidActivity(ctx, j, "start_world_image_stage", func(ctx context.Context) error {
		return rc.Ledger.UpdateStage(ctx, in.WorldID, ledger.StageWorldImage, ledger.StatusInProgress)
	}); err != nil {
		return nil, fmt.Errorf("start world image stage: %w", err)
	}

	if err := RunVoidActivity(ctx, j, "start_characters_stage", func(ctx context.Context) error {
		return rc.Ledger.UpdateStage(ctx, in.WorldID, ledger.StageCharacters, ledger.StatusInProgress)
	}); err != nil {
		return nil, fmt.Errorf("start characters stage: %w", err)
	}

	imageParams, err := encodeParams(GenerateWorldImageInput{WorldID: in.WorldID})
	if err != nil {
		return nil, err
	}
	if _, err := RunActivity(ctx, j, "spawn_generate_world_image", func(ctx context.Context) (string, error) {
		return rc.Spawn(ctx, task.KindGenerateWorldImage, in.WorldID, imageParams)
	}); err != nil {
		return nil, fmt.Errorf("spawn world image workflow: %w", err)
	}

	batchParams, err := encodeParams(GenerateCharacterBatchInput{
		WorldID:              in.WorldID,
		UsersCount:           in.CharactersCount,
		RemainingPostsCount:  in.PostsCount,
		TotalUsersCount:      in.CharactersCount,
		GeneratedCount:       0,
		CountRun:             0,
		RecursionDepth:       0,
	})
	if err != nil {
		return nil, err
	}
	if _, err := RunActivity(ctx, j, "spawn_generate_character_batch", func(ctx context.Context) (string, error) {
		return rc.Spawn(ctx, task.KindGenerateCharacterBatch, in.WorldID, batchParams)
	}); err != nil {
		return nil, fmt.Errorf("spawn character batch workflow: %w", err)
	}

	return map[string]any{"world_id": in.WorldID, "name": params.Name}, nil
}
