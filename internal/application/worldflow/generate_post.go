package worldflow

import (
	"context"
	"fmt"

	"github.com/worldforge/worldforge/internal/domain/task"
	"github.com/worldforge/worldforge/internal/domain/workflowerr"
	"github.com/worldforge/worldforge/internal/domain/world"
	"github.com/worldforge/worldforge/pkg/llm"
)

// GeneratePost is workflow kind (h). It produces the post's content and
// hands off image generation (and the actual Post.CreateAIPost call) to a
// detached GeneratePostImage child (spec.md §4.7(h)).
func GeneratePost(ctx context.Context, rc *RunContext, j *Journal, t *task.Task) (map[string]any, error) {
	in, err := decodeParams[GeneratePostInput](t)
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

	prompt := buildPostDetailPrompt(params, in.Detail, in.Item)

	post, err := RunActivity(ctx, j, "generate_post_detail", func(ctx context.Context) (*PostDetailResponse, error) {
		return llm.GenerateStructuredContent[PostDetailResponse](ctx, rc.LLM, prompt, SchemaPostDetail, "", 0.95, 1500)
	})
	if err != nil {
		return nil, fmt.Errorf("generate post detail: %w", err)
	}

	imageParams, err := encodeParams(GeneratePostImageInput{WorldID: in.WorldID, CharacterID: in.CharacterID, Post: *post})
	if err != nil {
		return nil, err
	}
	if _, err := RunActivity(ctx, j, "spawn_generate_post_image", func(ctx context.Context) (string, error) {
		return rc.Spawn(ctx, task.KindGeneratePostImage, in.WorldID, imageParams)
	}); err != nil {
		return nil, fmt.Errorf("spawn post image workflow: %w", err)
	}

	return map[string]any{"content": post.Content, "hashtags": post.Hashtags}, nil
}
