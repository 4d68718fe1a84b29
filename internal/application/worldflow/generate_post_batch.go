package worldflow

import (
	"context"
	"fmt"

	"github.com/worldforge/worldforge/internal/domain/task"
	"github.com/worldforge/worldforge/internal/domain/workflowerr"
	"github.com/worldforge/worldforge/internal/domain/world"
	"github.com/worldforge/worldforge/pkg/llm"
)

// GeneratePostBatch is workflow kind (g), mirroring (d)'s recursive
// self-splitting scheduler over a single posts-count dimension instead of
// the character batch's joint users/posts dimensions (spec.md §4.7(g)).
func GeneratePostBatch(ctx context.Context, rc *RunContext, j *Journal, t *task.Task) (map[string]any, error) {
	in, err := decodeParams[GeneratePostBatchInput](t)
	if err != nil {
		return nil, workflowerr.New(workflowerr.Precondition, err)
	}

	maxAllowedDepth := MaxAllowedDepth(in.TotalPostsCount, MaxPostRecursionDepth)
	if in.RecursionDepth >= maxAllowedDepth {
		return map[string]any{
			"diagnostic": fmt.Sprintf("post recursion depth cap %d reached at run %d", maxAllowedDepth, in.CountRun),
		}, nil
	}

	currentBatchSize := CurrentBatchSize(in.PostsCount, MaxPostsPerBatch)
	if currentBatchSize <= 0 {
		return map[string]any{"diagnostic": "no posts remaining for this batch"}, nil
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

	prompt := buildPostBatchPrompt(params, in.Detail, in.CountRun == 0, currentBatchSize)

	resp, err := RunActivity(ctx, j, "generate_post_batch", func(ctx context.Context) (*PostBatchResponse, error) {
		return llm.GenerateStructuredContent[PostBatchResponse](ctx, rc.LLM, prompt, SchemaPostBatch, "", 0.9, 3000)
	})
	if err != nil {
		return nil, fmt.Errorf("generate post batch: %w", err)
	}

	if len(resp.Posts) == 0 {
		return map[string]any{"diagnostic": "LLM returned zero posts for this batch"}, nil
	}

	posts := PadByCyclicDuplication(resp.Posts, currentBatchSize, func(item PostBatchItem, variant int) PostBatchItem {
		item.Topic = fmt.Sprintf("%s (variant %d)", item.Topic, variant)
		item.ContentBrief = fmt.Sprintf("%s (variant %d)", item.ContentBrief, variant)
		return item
	})

	for i, item := range posts {
		postParams, err := encodeParams(GeneratePostInput{
			WorldID:     in.WorldID,
			CharacterID: in.CharacterID,
			Detail:      in.Detail,
			Item:        item,
		})
		if err != nil {
			return nil, err
		}

		activityName := fmt.Sprintf("spawn_generate_post_%d_%d", in.CountRun, i)
		if _, err := RunActivity(ctx, j, activityName, func(ctx context.Context) (string, error) {
			return rc.Spawn(ctx, task.KindGeneratePost, in.WorldID, postParams)
		}); err != nil {
			return nil, fmt.Errorf("spawn post %d: %w", i, err)
		}
	}

	produced := len(posts)
	remainingPosts := in.PostsCount - produced

	if remainingPosts > 0 && in.RecursionDepth+1 < maxAllowedDepth {
		contParams, err := encodeParams(GeneratePostBatchInput{
			WorldID:         in.WorldID,
			CharacterID:     in.CharacterID,
			Detail:          in.Detail,
			PostsCount:      remainingPosts,
			TotalPostsCount: in.TotalPostsCount,
			GeneratedCount:  in.GeneratedCount + produced,
			CountRun:        in.CountRun + 1,
			RecursionDepth:  in.RecursionDepth + 1,
		})
		if err != nil {
			return nil, err
		}

		if _, err := RunActivity(ctx, j, "spawn_post_batch_continuation", func(ctx context.Context) (string, error) {
			return rc.Spawn(ctx, task.KindGeneratePostBatch, in.WorldID, contParams)
		}); err != nil {
			return nil, fmt.Errorf("spawn post batch continuation: %w", err)
		}
	}

	return map[string]any{"generated_count": in.GeneratedCount + produced}, nil
}
