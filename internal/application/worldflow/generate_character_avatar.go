package worldflow

import (
	"context"
	"fmt"

	"github.com/worldforge/worldforge/internal/domain/task"
	"github.com/worldforge/worldforge/internal/domain/workflowerr"
	"github.com/worldforge/worldforge/internal/infrastructure/gateway"
	"github.com/worldforge/worldforge/pkg/imagegen"
	"github.com/worldforge/worldforge/pkg/llm"
)

// GenerateCharacterAvatar is workflow kind (f) (spec.md §4.7(f)).
func GenerateCharacterAvatar(ctx context.Context, rc *RunContext, j *Journal, t *task.Task) (map[string]any, error) {
	in, err := decodeParams[GenerateCharacterAvatarInput](t)
	if err != nil {
		return nil, workflowerr.New(workflowerr.Precondition, err)
	}

	if in.Detail.AvatarDescription == "" {
		return map[string]any{"diagnostic": "no avatar description; skipping avatar generation"}, nil
	}

	prompt := buildCharacterAvatarPrompt(in.Detail)

	optimized, err := RunActivity(ctx, j, "optimize_avatar_prompt", func(ctx context.Context) (*CharacterAvatarPromptResponse, error) {
		return llm.GenerateStructuredContent[CharacterAvatarPromptResponse](ctx, rc.LLM, prompt, SchemaCharacterAvatar, "", 0.8, 500)
	})
	if err != nil {
		return nil, fmt.Errorf("optimize avatar prompt: %w", err)
	}

	result, err := RunActivity(ctx, j, "generate_avatar_image", func(ctx context.Context) (*imagegen.Result, error) {
		return rc.ImageGen.GenerateImage(ctx, imagegen.Request{
			Prompt:      optimized.Prompt,
			WorldID:     in.WorldID,
			MediaType:   gateway.MediaTypeCharacterAvatar,
			CharacterID: in.CharacterID,
			Width:       512,
			Height:      512,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("generate avatar image: %w", err)
	}

	mediaID := result.MediaID
	if err := RunVoidActivity(ctx, j, "set_character_avatar", func(ctx context.Context) error {
		return rc.Gateway.Character.UpdateCharacter(ctx, in.CharacterID, gateway.CharacterPatch{AvatarMediaID: &mediaID})
	}); err != nil {
		return nil, fmt.Errorf("set character avatar: %w", err)
	}

	return map[string]any{"avatar_media_id": mediaID}, nil
}
