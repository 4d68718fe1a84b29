package worldflow

import (
	"encoding/json"
	"fmt"

	"github.com/worldforge/worldforge/internal/domain/task"
)

// decodeParams round-trips t.Parameters through JSON into T, since Task
// stores its arguments as an opaque map[string]any (spec.md §4.6's "durable
// argument storage" role) rather than typed fields.
func decodeParams[T any](t *task.Task) (T, error) {
	var out T
	data, err := json.Marshal(t.Parameters)
	if err != nil {
		return out, fmt.Errorf("encode task parameters: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode task parameters: %w", err)
	}
	return out, nil
}

// encodeParams is decodeParams' inverse, used to build the parameters map
// for a freshly spawned child task.
func encodeParams(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode parameters: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode parameters: %w", err)
	}
	return out, nil
}

// InitWorldCreationInput is (a)'s task parameters.
type InitWorldCreationInput struct {
	WorldID         string `json:"world_id"`
	WorldPrompt     string `json:"world_prompt"`
	CharactersCount int    `json:"characters_count"`
	PostsCount      int    `json:"posts_count"`
	LLMLimit        int    `json:"llm_limit,omitempty"`
	ImagesLimit     int    `json:"images_limit,omitempty"`
	Language        string `json:"language,omitempty"`
	ExtraPrefs      string `json:"extra_prefs,omitempty"`
}

// GenerateWorldDescriptionInput is (b)'s task parameters.
type GenerateWorldDescriptionInput struct {
	WorldID         string `json:"world_id"`
	WorldPrompt     string `json:"world_prompt"`
	CharactersCount int    `json:"characters_count"`
	PostsCount      int    `json:"posts_count"`
	Language        string `json:"language,omitempty"`
	ExtraPrefs      string `json:"extra_prefs,omitempty"`
}

// GenerateWorldImageInput is (c)'s task parameters.
type GenerateWorldImageInput struct {
	WorldID string `json:"world_id"`
}

// GenerateCharacterBatchInput is (d)'s task parameters.
type GenerateCharacterBatchInput struct {
	WorldID                        string `json:"world_id"`
	UsersCount                     int    `json:"users_count"`
	RemainingPostsCount            int    `json:"remaining_posts_count"`
	TotalUsersCount                int    `json:"total_users_count"`
	GeneratedCount                 int    `json:"generated_count"`
	CountRun                       int    `json:"count_run"`
	RecursionDepth                 int    `json:"recursion_depth"`
	GeneratedCharactersDescription string `json:"generated_characters_description,omitempty"`
}

// GenerateCharacterInput is (e)'s task parameters.
type GenerateCharacterInput struct {
	WorldID           string   `json:"world_id"`
	Concept           string   `json:"concept"`
	ShortConcept      string   `json:"short_concept"`
	Role              string   `json:"role"`
	PersonalityTraits []string `json:"personality_traits"`
	Interests         []string `json:"interests"`
	PostsCount        int      `json:"posts_count"`
}

// GenerateCharacterAvatarInput is (f)'s task parameters.
type GenerateCharacterAvatarInput struct {
	WorldID     string                  `json:"world_id"`
	CharacterID string                  `json:"character_id"`
	Detail      CharacterDetailResponse `json:"detail"`
}

// GeneratePostBatchInput is (g)'s task parameters.
type GeneratePostBatchInput struct {
	WorldID         string                  `json:"world_id"`
	CharacterID     string                  `json:"character_id"`
	Detail          CharacterDetailResponse `json:"detail"`
	PostsCount      int                     `json:"posts_count"`
	TotalPostsCount int                     `json:"total_posts_count"`
	GeneratedCount  int                     `json:"generated_count"`
	CountRun        int                     `json:"count_run"`
	RecursionDepth  int                     `json:"recursion_depth"`
}

// GeneratePostInput is (h)'s task parameters.
type GeneratePostInput struct {
	WorldID     string                  `json:"world_id"`
	CharacterID string                  `json:"character_id"`
	Detail      CharacterDetailResponse `json:"detail"`
	Item        PostBatchItem           `json:"item"`
}

// GeneratePostImageInput is (i)'s task parameters.
type GeneratePostImageInput struct {
	WorldID     string              `json:"world_id"`
	CharacterID string              `json:"character_id"`
	Post        PostDetailResponse  `json:"post"`
}
