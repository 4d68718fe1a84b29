package worldflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/worldforge/worldforge/internal/domain/ledger"
	"github.com/worldforge/worldforge/internal/domain/task"
	"github.com/worldforge/worldforge/internal/domain/workflowerr"
	"github.com/worldforge/worldforge/internal/domain/world"
	"github.com/worldforge/worldforge/pkg/llm"
)

// GenerateCharacterBatch is workflow kind (d), the recursive self-splitting
// character scheduler (spec.md §4.7(d)).
func GenerateCharacterBatch(ctx context.Context, rc *RunContext, j *Journal, t *task.Task) (map[string]any, error) {
	in, err := decodeParams[GenerateCharacterBatchInput](t)
	if err != nil {
		return nil, workflowerr.New(workflowerr.Precondition, err)
	}

	maxAllowedDepth := MaxAllowedDepth(in.TotalUsersCount, MaxCharacterRecursionDepth)
	if in.RecursionDepth >= maxAllowedDepth {
		if err := RunVoidActivity(ctx, j, "complete_characters_stage", func(ctx context.Context) error {
			return rc.Ledger.UpdateStage(ctx, in.WorldID, ledger.StageCharacters, ledger.StatusCompleted)
		}); err != nil {
			return nil, fmt.Errorf("complete characters stage: %w", err)
		}
		return map[string]any{
			"diagnostic": fmt.Sprintf("character recursion depth cap %d reached at run %d", maxAllowedDepth, in.CountRun),
		}, nil
	}

	currentBatchSize := CurrentBatchSize(in.UsersCount, MaxCharactersPerBatch)
	if currentBatchSize <= 0 {
		return map[string]any{"diagnostic": "no characters remaining for this batch"}, nil
	}

	postsCountForBatch := PostsCountForBatch(currentBatchSize, in.RemainingPostsCount, in.UsersCount)

	params, err := RunActivity(ctx, j, "load_world_parameters", func(ctx context.Context) (*world.Parameters, error) {
		return rc.World.Get(ctx, in.WorldID)
	})
	if err != nil {
		return nil, fmt.Errorf("load world parameters: %w", err)
	}
	if params == nil {
		return nil, workflowerr.Newf(workflowerr.Precondition, "world parameters not found for %s", in.WorldID)
	}

	prompt := buildCharacterBatchPrompt(params, in.CountRun == 0, in.GeneratedCharactersDescription, currentBatchSize)

	resp, err := RunActivity(ctx, j, "generate_character_batch", func(ctx context.Context) (*CharacterBatchResponse, error) {
		return llm.GenerateStructuredContent[CharacterBatchResponse](ctx, rc.LLM, prompt, SchemaCharacterBatch, "", 0.9, 3000)
	})
	if err != nil {
		return nil, fmt.Errorf("generate character batch: %w", err)
	}

	characters := resp.Characters
	if len(characters) == 0 {
		return map[string]any{"diagnostic": "LLM returned zero characters for this batch"}, nil
	}
	characters = TruncateItems(characters, currentBatchSize)

	desiredPosts := make([]int, len(characters))
	for i, c := range characters {
		desiredPosts[i] = c.DesiredPostsCount
	}
	normalizedPosts := NormalizeCounts(desiredPosts, postsCountForBatch)

	postsAllocated := 0
	var summaryLines []string
	for i, c := range characters {
		postsAllocated += normalizedPosts[i]

		charParams, err := encodeParams(GenerateCharacterInput{
			WorldID:           in.WorldID,
			Concept:           c.Concept,
			ShortConcept:      c.ShortConcept,
			Role:              c.Role,
			PersonalityTraits: c.PersonalityTraits,
			Interests:         c.Interests,
			PostsCount:        normalizedPosts[i],
		})
		if err != nil {
			return nil, err
		}

		activityName := fmt.Sprintf("spawn_generate_character_%d_%d", in.CountRun, i)
		if _, err := RunActivity(ctx, j, activityName, func(ctx context.Context) (string, error) {
			return rc.Spawn(ctx, task.KindGenerateCharacter, in.WorldID, charParams)
		}); err != nil {
			return nil, fmt.Errorf("spawn character %d: %w", i, err)
		}

		summaryLines = append(summaryLines, fmt.Sprintf("- %s (%s): %s", c.Role, c.ShortConcept, c.Concept))
	}

	produced := len(characters)
	remainingUsers := in.UsersCount - produced

	if remainingUsers > 0 && in.RecursionDepth+1 < maxAllowedDepth {
		newRemainingPosts := in.RemainingPostsCount - postsAllocated
		if newRemainingPosts < remainingUsers {
			newRemainingPosts = remainingUsers
		}

		description := in.GeneratedCharactersDescription
		if len(summaryLines) > 0 {
			description = strings.TrimSpace(description + "\n" + strings.Join(summaryLines, "\n"))
		}

		contParams, err := encodeParams(GenerateCharacterBatchInput{
			WorldID:                        in.WorldID,
			UsersCount:                     remainingUsers,
			RemainingPostsCount:            newRemainingPosts,
			TotalUsersCount:                in.TotalUsersCount,
			GeneratedCount:                 in.GeneratedCount + produced,
			CountRun:                       in.CountRun + 1,
			RecursionDepth:                 in.RecursionDepth + 1,
			GeneratedCharactersDescription: description,
		})
		if err != nil {
			return nil, err
		}

		if _, err := RunActivity(ctx, j, "spawn_character_batch_continuation", func(ctx context.Context) (string, error) {
			return rc.Spawn(ctx, task.KindGenerateCharacterBatch, in.WorldID, contParams)
		}); err != nil {
			return nil, fmt.Errorf("spawn character batch continuation: %w", err)
		}
	} else {
		// Either every requested character has been produced, or the
		// recursion depth cap stops us from spawning a continuation that
		// would produce the rest — either way, this is as far as character
		// generation goes for this world, so the stage is done.
		if err := RunVoidActivity(ctx, j, "complete_characters_stage", func(ctx context.Context) error {
			return rc.Ledger.UpdateStage(ctx, in.WorldID, ledger.StageCharacters, ledger.StatusCompleted)
		}); err != nil {
			return nil, fmt.Errorf("complete characters stage: %w", err)
		}
	}

	return map[string]any{
		"generated_count": in.GeneratedCount + produced,
		"posts_allocated": postsAllocated,
	}, nil
}
