package worldflow

import (
	"context"
	"fmt"

	"github.com/worldforge/worldforge/internal/domain/ledger"
	"github.com/worldforge/worldforge/internal/domain/task"
	"github.com/worldforge/worldforge/internal/domain/workflowerr"
	"github.com/worldforge/worldforge/internal/infrastructure/gateway"
	"github.com/worldforge/worldforge/pkg/imagegen"
	"github.com/worldforge/worldforge/pkg/llm"
)

// GeneratePostImage is workflow kind (i): the leaf of the tree, the only
// step that actually calls Post.CreateAIPost, and the one that decides
// whether the whole world is done (spec.md §4.7(i)).
func GeneratePostImage(ctx context.Context, rc *RunContext, j *Journal, t *task.Task) (map[string]any, error) {
	in, err := decodeParams[GeneratePostImageInput](t)
	if err != nil {
		return nil, workflowerr.New(workflowerr.Precondition, err)
	}

	if in.Post.ImagePrompt == "" {
		return map[string]any{"diagnostic": "no image prompt; post created without image is not supported by this core"}, nil
	}

	optimized, err := RunActivity(ctx, j, "optimize_post_image_prompt", func(ctx context.Context) (*PostImagePromptResponse, error) {
		return llm.GenerateStructuredContent[PostImagePromptResponse](ctx, rc.LLM, buildPostImagePrompt(in.Post), SchemaPostImagePrompt, "", 0.8, 500)
	})
	if err != nil {
		return nil, fmt.Errorf("optimize post image prompt: %w", err)
	}

	image, err := RunActivity(ctx, j, "generate_post_image", func(ctx context.Context) (*imagegen.Result, error) {
		return rc.ImageGen.GenerateImage(ctx, imagegen.Request{
			Prompt:      optimized.Prompt,
			WorldID:     in.WorldID,
			MediaType:   gateway.MediaTypePostImage,
			CharacterID: in.CharacterID,
			Width:       512,
			Height:      512,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("generate post image: %w", err)
	}

	type createdPost struct {
		PostID string `json:"post_id"`
	}
	created, err := RunActivity(ctx, j, "create_ai_post", func(ctx context.Context) (*createdPost, error) {
		postID, _, err := rc.Gateway.Post.CreateAIPost(ctx, in.CharacterID, in.Post.Content, image.MediaID, in.WorldID, in.Post.Hashtags)
		if err != nil {
			return nil, err
		}
		return &createdPost{PostID: postID}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("create ai post: %w", err)
	}

	if err := RunVoidActivity(ctx, j, "count_post_created", func(ctx context.Context) error {
		return rc.Ledger.IncrementCounter(ctx, in.WorldID, ledger.CounterPostsCreated, 1)
	}); err != nil {
		return nil, fmt.Errorf("count post created: %w", err)
	}

	if err := RunVoidActivity(ctx, j, "maybe_complete_posts_and_finishing", func(ctx context.Context) error {
		return maybeCompleteWorld(ctx, rc, in.WorldID)
	}); err != nil {
		return nil, fmt.Errorf("evaluate world completion: %w", err)
	}

	return map[string]any{"post_id": created.PostID, "media_id": image.MediaID}, nil
}

// maybeCompleteWorld implements spec.md §4.7(i)'s closing condition: once
// every stage but POSTS is done, or the predicted post count has been hit,
// POSTS and FINISHING both complete.
func maybeCompleteWorld(ctx context.Context, rc *RunContext, worldID string) error {
	l, err := rc.Ledger.Get(ctx, worldID)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	done, err := evalCompletionRule(rc.CompletionRule, completionEnv{
		AllCompletedExceptPosts: l.AllCompletedExcept(ledger.StagePosts),
		PostsCreated:            l.PostsCreated,
		PostsPredicted:          l.PostsPredicted,
	})
	if err != nil {
		return fmt.Errorf("evaluate completion rule: %w", err)
	}
	if !done {
		return nil
	}

	if err := rc.Ledger.UpdateStage(ctx, worldID, ledger.StagePosts, ledger.StatusCompleted); err != nil {
		return fmt.Errorf("complete posts stage: %w", err)
	}
	if err := rc.Ledger.UpdateStage(ctx, worldID, ledger.StageFinishing, ledger.StatusCompleted); err != nil {
		return fmt.Errorf("complete finishing stage: %w", err)
	}
	return nil
}
