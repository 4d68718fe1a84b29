package worldflow

import (
	"context"
	"fmt"

	"github.com/worldforge/worldforge/internal/domain/ledger"
	"github.com/worldforge/worldforge/internal/domain/task"
	"github.com/worldforge/worldforge/internal/domain/workflowerr"
	"github.com/worldforge/worldforge/internal/domain/world"
	"github.com/worldforge/worldforge/internal/infrastructure/gateway"
	"github.com/worldforge/worldforge/pkg/imagegen"
	"github.com/worldforge/worldforge/pkg/llm"
)

// worldImagePair is the joint result of generating the header and icon
// images together, journaled as one activity so the pair replays as a unit
// instead of risking its two concurrent legs landing on swapped sequence
// numbers (spec.md §4.7(c): "runs the two image generations in parallel").
type worldImagePair struct {
	Header *imagegen.Result `json:"header"`
	Icon   *imagegen.Result `json:"icon"`
}

// GenerateWorldImage is workflow kind (c) (spec.md §4.7(c)).
func GenerateWorldImage(ctx context.Context, rc *RunContext, j *Journal, t *task.Task) (map[string]any, error) {
	in, err := decodeParams[GenerateWorldImageInput](t)
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

	prompt := buildWorldImagePrompt(params)

	promptResp, err := RunActivity(ctx, j, "generate_world_image_prompts", func(ctx context.Context) (*ImagePromptResponse, error) {
		return llm.GenerateStructuredContent[ImagePromptResponse](ctx, rc.LLM, prompt, SchemaImagePrompt, "", 0.8, 800)
	})
	if err != nil {
		return nil, fmt.Errorf("generate world image prompts: %w", err)
	}

	if err := RunVoidActivity(ctx, j, "count_world_image_calls", func(ctx context.Context) error {
		return rc.Ledger.IncrementCounter(ctx, in.WorldID, ledger.CounterAPICallsMadeImages, 2)
	}); err != nil {
		return nil, fmt.Errorf("count image calls: %w", err)
	}

	pair, err := RunActivity(ctx, j, "generate_world_images", func(ctx context.Context) (*worldImagePair, error) {
		return generateWorldImagePair(ctx, rc, in.WorldID, promptResp)
	})
	if err != nil {
		return nil, fmt.Errorf("generate world images: %w", err)
	}

	if err := RunVoidActivity(ctx, j, "push_world_images_downstream", func(ctx context.Context) error {
		return rc.Gateway.World.UpdateWorldImages(ctx, in.WorldID, pair.Header.MediaID, pair.Icon.MediaID)
	}); err != nil {
		return nil, fmt.Errorf("push world images downstream: %w", err)
	}

	if err := RunVoidActivity(ctx, j, "complete_world_image_stage", func(ctx context.Context) error {
		return rc.Ledger.UpdateStage(ctx, in.WorldID, ledger.StageWorldImage, ledger.StatusCompleted)
	}); err != nil {
		return nil, fmt.Errorf("complete world image stage: %w", err)
	}

	return map[string]any{
		"header_media_id": pair.Header.MediaID,
		"icon_media_id":   pair.Icon.MediaID,
	}, nil
}

func generateWorldImagePair(ctx context.Context, rc *RunContext, worldID string, prompts *ImagePromptResponse) (*worldImagePair, error) {
	type outcome struct {
		result *imagegen.Result
		err    error
	}
	headerCh := make(chan outcome, 1)
	iconCh := make(chan outcome, 1)

	go func() {
		r, err := rc.ImageGen.GenerateImage(ctx, imagegen.Request{
			Prompt:    prompts.HeaderPrompt,
			WorldID:   worldID,
			MediaType: gateway.MediaTypeWorldHeader,
			Width:     1024,
			Height:    512,
		})
		headerCh <- outcome{r, err}
	}()
	go func() {
		r, err := rc.ImageGen.GenerateImage(ctx, imagegen.Request{
			Prompt:    prompts.IconPrompt,
			WorldID:   worldID,
			MediaType: gateway.MediaTypeWorldIcon,
			Width:     512,
			Height:    512,
		})
		iconCh <- outcome{r, err}
	}()

	header := <-headerCh
	icon := <-iconCh

	if header.err != nil {
		return nil, fmt.Errorf("generate header image: %w", header.err)
	}
	if icon.err != nil {
		return nil, fmt.Errorf("generate icon image: %w", icon.err)
	}

	return &worldImagePair{Header: header.result, Icon: icon.result}, nil
}
