package worldflow

import "github.com/worldforge/worldforge/internal/infrastructure/pool"

// Schema names, stable across workflow replays, resolved against the
// shared SchemaRegistry before every structured LLM call so an unknown name
// fails as a business-logic precondition (spec.md §7 class 4) rather than a
// decode error deep in the LLM client.
const (
	SchemaWorldDescription   = "world_description"
	SchemaImagePrompt        = "image_prompt"
	SchemaCharacterBatch     = "character_batch"
	SchemaCharacterDetail    = "character_detail"
	SchemaCharacterAvatar    = "character_avatar_prompt"
	SchemaPostBatch          = "post_batch"
	SchemaPostDetail         = "post_detail"
	SchemaPostImagePrompt    = "post_image_prompt"
)

// RegisterSchemas binds every workflow-kind schema name onto r. Call once
// during wiring, before the Runner accepts any task.
func RegisterSchemas(r *pool.SchemaRegistry) {
	pool.RegisterSchema[WorldDescriptionResponse](r, SchemaWorldDescription)
	pool.RegisterSchema[ImagePromptResponse](r, SchemaImagePrompt)
	pool.RegisterSchema[CharacterBatchResponse](r, SchemaCharacterBatch)
	pool.RegisterSchema[CharacterDetailResponse](r, SchemaCharacterDetail)
	pool.RegisterSchema[CharacterAvatarPromptResponse](r, SchemaCharacterAvatar)
	pool.RegisterSchema[PostBatchResponse](r, SchemaPostBatch)
	pool.RegisterSchema[PostDetailResponse](r, SchemaPostDetail)
	pool.RegisterSchema[PostImagePromptResponse](r, SchemaPostImagePrompt)
}

// These are the structured-output contracts (spec.md §4.7) every workflow
// kind forces onto the LLM via pkg/llm.GenerateStructuredContent; field tags
// double as the JSON schema property names pkg/llm/schema.go derives by
// reflection.

// WorldDescriptionResponse is GenerateWorldDescription's LLM contract.
type WorldDescriptionResponse struct {
	Name              string                     `json:"name"`
	ShortDescription  string                     `json:"short_description"`
	LongDescription   string                     `json:"long_description"`
	Theme             string                     `json:"theme"`
	TechnologyLevel   string                     `json:"technology_level"`
	SocialStructure   string                     `json:"social_structure"`
	Culture           string                     `json:"culture"`
	Geography         string                     `json:"geography"`
	VisualStyle       string                     `json:"visual_style"`
	History           string                     `json:"history"`
	CommonActivities  []string                   `json:"common_activities"`
	TypicalStories    []string                   `json:"typical_stories"`
	AdditionalDetails WorldAdditionalDetailsLLM  `json:"additional_details"`
}

// WorldAdditionalDetailsLLM mirrors world.AdditionalDetails as a nested
// schema object (the LLM never sees UserPreferences, which is carried
// through from the request instead of generated).
type WorldAdditionalDetailsLLM struct {
	Climate     string   `json:"climate"`
	Resources   string   `json:"resources"`
	Conflicts   string   `json:"conflicts"`
	Traditions  string   `json:"traditions"`
	Technology  string   `json:"technology"`
	MagicSystem string   `json:"magic_system"`
	TimePeriod  string   `json:"time_period"`
	Language    string   `json:"language"`
	Extras      []string `json:"extras,omitempty"`
}

// ImagePromptResponse is GenerateWorldImage's LLM contract: two prompts
// (header 1024x512, icon 512x512) plus the shared visual language.
type ImagePromptResponse struct {
	HeaderPrompt   string `json:"header_prompt"`
	IconPrompt     string `json:"icon_prompt"`
	StyleReference string `json:"style_reference"`
	VisualElements string `json:"visual_elements"`
	Mood           string `json:"mood"`
	ColorPalette   string `json:"color_palette"`
}

// CharacterBatchItem is one entry of CharacterBatchResponse.Characters.
type CharacterBatchItem struct {
	Concept           string   `json:"concept"`
	ShortConcept      string   `json:"short_concept"`
	Role              string   `json:"role"`
	DesiredPostsCount int      `json:"desired_posts_count"`
	PersonalityTraits []string `json:"personality_traits"`
	Interests         []string `json:"interests"`
}

// CharacterBatchResponse is GenerateCharacterBatch's LLM contract (spec.md
// §4.7(d) step 6).
type CharacterBatchResponse struct {
	Characters             []CharacterBatchItem `json:"characters"`
	InterCharacterConnections string             `json:"inter_character_connections"`
	WorldInterpretation     string                `json:"world_interpretation"`
}

// CharacterDetailResponse is GenerateCharacter's LLM contract; its fields
// become the character service's `meta` JSON document verbatim.
type CharacterDetailResponse struct {
	DisplayName        string   `json:"display_name"`
	Bio                string   `json:"bio"`
	BackgroundStory    string   `json:"background_story"`
	Personality        string   `json:"personality"`
	Appearance         string   `json:"appearance"`
	Interests          []string `json:"interests"`
	SpeakingStyle      string   `json:"speaking_style"`
	CommonTopics       []string `json:"common_topics"`
	AvatarDescription  string   `json:"avatar_description"`
	AvatarStyle        string   `json:"avatar_style"`
	Secret             string   `json:"secret"`
	DailyRoutine       string   `json:"daily_routine"`
	Relationships      string   `json:"relationships"`
}

// CharacterAvatarPromptResponse is GenerateCharacterAvatar's LLM contract.
type CharacterAvatarPromptResponse struct {
	Prompt string `json:"prompt"`
}

// PostBatchItem is one entry of PostBatchResponse.Posts.
type PostBatchItem struct {
	Topic               string `json:"topic"`
	ContentBrief        string `json:"content_brief"`
	EmotionalTone       string `json:"emotional_tone"`
	PostType            string `json:"post_type"`
	RelevanceToCharacter string `json:"relevance_to_character"`
}

// PostBatchResponse is GeneratePostBatch's LLM contract (spec.md §4.7(g)).
type PostBatchResponse struct {
	Posts               []PostBatchItem `json:"posts"`
	NarrativeArc        string          `json:"narrative_arc"`
	CharacterDevelopment string         `json:"character_development"`
	RecurringThemes     string          `json:"recurring_themes"`
}

// PostDetailResponse is GeneratePost's LLM contract.
type PostDetailResponse struct {
	Content      string   `json:"content"`
	ImagePrompt  string   `json:"image_prompt,omitempty"`
	ImageStyle   string   `json:"image_style,omitempty"`
	Hashtags     []string `json:"hashtags"`
	Mood         string   `json:"mood"`
	Context      string   `json:"context"`
	Mentions     []string `json:"mentions,omitempty"`
	Location     string   `json:"location,omitempty"`
	TimeOfDay    string   `json:"time_of_day,omitempty"`
}

// PostImagePromptResponse is GeneratePostImage's LLM contract.
type PostImagePromptResponse struct {
	Prompt string `json:"prompt"`
}
