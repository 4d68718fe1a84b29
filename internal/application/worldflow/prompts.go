package worldflow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/worldforge/worldforge/internal/domain/world"
	"github.com/worldforge/worldforge/pkg/llm"
)

// schemaHint renders T's normalized JSON schema as an indented document to
// embed in a prompt, reinforcing the response_format contract with a
// human-readable shape the model can mirror (spec.md §4.7(d) step 5: "the
// rendered response schema").
func schemaHint[T any]() string {
	var zero T
	schema := llm.Normalize(llm.SchemaFromType(zero))
	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

func buildWorldDescriptionPrompt(userPrompt string, prefs world.UserPreferences) string {
	extra := ""
	if prefs.ExtraPrefs != "" {
		extra = "\nAdditional preferences: " + prefs.ExtraPrefs
	}
	lang := prefs.Language
	if lang == "" {
		lang = "English"
	}
	return fmt.Sprintf(`You are a world-building assistant creating a coherent fictional setting.

User request: %s
Respond in: %s%s

Invent a complete world consistent with the request: name, short and long descriptions, theme, technology level, social structure, culture, geography, visual style, history, common activities, typical stories, and additional flavor details (climate, resources, conflicts, traditions, technology, magic system, time period, language, extras).

Respond with JSON matching this schema:
%s`, userPrompt, lang, extra, schemaHint[WorldDescriptionResponse]())
}

func buildWorldImagePrompt(params *world.Parameters) string {
	return fmt.Sprintf(`You are an art director producing image-generation prompts for a fictional world.

World: %s

Produce two prompts: a wide header image (1024x512, banner composition) and a square icon (512x512, centered emblem/portrait composition), both consistent with the world's visual style, plus a shared style reference, key visual elements, mood, and color palette.

Respond with JSON matching this schema:
%s`, params.FormatForPrompt(), schemaHint[ImagePromptResponse]())
}

func buildCharacterBatchPrompt(params *world.Parameters, firstBatch bool, generatedDescription string, batchSize int) string {
	context := fmt.Sprintf("This is the first batch of characters; invent %d characters from scratch.", batchSize)
	if !firstBatch {
		context = fmt.Sprintf("Characters already generated so far:\n%s\n\nInvent %d more characters, distinct from the above and consistent with the world.", generatedDescription, batchSize)
	}

	return fmt.Sprintf(`You are a character designer populating a fictional world with residents.

World: %s

%s

For each character, provide: a concept, a short concept (one line), a role in the world, a desired posts count (how active they should be on social media, 1-10), personality traits, and interests. Also describe how the characters connect to one another and how they interpret/fit the world.

Respond with JSON matching this schema:
%s`, params.FormatForPrompt(), context, schemaHint[CharacterBatchResponse]())
}

func buildCharacterDetailPrompt(params *world.Parameters, item CharacterBatchItem) string {
	return fmt.Sprintf(`You are a character writer fleshing out a full profile for a world resident.

World: %s

Concept: %s
Role: %s
Personality traits: %s
Interests: %s

Write a full profile: display name, bio, background story, personality, appearance, interests, speaking style, common topics, an avatar description and avatar art style, a secret, a daily routine, and relationships to other residents.

Respond with JSON matching this schema:
%s`, params.FormatForPrompt(), item.Concept, item.Role, strings.Join(item.PersonalityTraits, ", "), strings.Join(item.Interests, ", "), schemaHint[CharacterDetailResponse]())
}

func buildCharacterAvatarPrompt(detail CharacterDetailResponse) string {
	return fmt.Sprintf(`You are an illustrator optimizing an avatar image prompt.

Character: %s
Avatar description: %s
Avatar style: %s

Rewrite this into a single, detailed, model-ready image generation prompt (square portrait composition, 512x512).

Respond with JSON matching this schema:
%s`, detail.DisplayName, detail.AvatarDescription, detail.AvatarStyle, schemaHint[CharacterAvatarPromptResponse]())
}

func buildPostBatchPrompt(params *world.Parameters, detail CharacterDetailResponse, firstBatch bool, batchSize int) string {
	context := fmt.Sprintf("This is the first batch of posts for this character; invent %d posts.", batchSize)
	if !firstBatch {
		context = fmt.Sprintf("Continue the character's posting history; invent %d more posts.", batchSize)
	}

	return fmt.Sprintf(`You are a social-media ghostwriter planning posts for a fictional character.

World: %s

Character: %s
Bio: %s
Speaking style: %s
Common topics: %s

%s

For each post, provide: a topic, a content brief, an emotional tone, a post type, and its relevance to the character. Also describe the narrative arc across these posts, the character development they show, and recurring themes.

Respond with JSON matching this schema:
%s`, params.FormatForPrompt(), detail.DisplayName, detail.Bio, detail.SpeakingStyle, strings.Join(detail.CommonTopics, ", "), context, schemaHint[PostBatchResponse]())
}

func buildPostDetailPrompt(params *world.Parameters, detail CharacterDetailResponse, item PostBatchItem) string {
	return fmt.Sprintf(`You are writing one in-character social media post.

World: %s

Character: %s
Speaking style: %s

Post topic: %s
Content brief: %s
Emotional tone: %s
Post type: %s
Relevance to character: %s

Write the post content in the character's voice, an optional image prompt and style describing an accompanying photo/illustration, hashtags, mood, context, any mentions, and optionally location and time of day.

Respond with JSON matching this schema:
%s`, params.FormatForPrompt(), detail.DisplayName, detail.SpeakingStyle, item.Topic, item.ContentBrief, item.EmotionalTone, item.PostType, item.RelevanceToCharacter, schemaHint[PostDetailResponse]())
}

func buildPostImagePrompt(post PostDetailResponse) string {
	return fmt.Sprintf(`You are an illustrator optimizing an image prompt for a social media post.

Post content: %s
Image prompt: %s
Image style: %s

Rewrite this into a single, detailed, model-ready image generation prompt (square composition, 512x512).

Respond with JSON matching this schema:
%s`, post.Content, post.ImagePrompt, post.ImageStyle, schemaHint[PostImagePromptResponse]())
}
