// Package character holds the thin opaque-id types the orchestrator passes
// through workflow arguments. Characters themselves are owned by the
// downstream Character service, never persisted by the core.
package character

// Ref is an opaque handle to a character owned by the Character service.
type Ref struct {
	CharacterID string `json:"character_id"`
}

// Detail is the full profile the LLM generates for a character, with the
// same fields as worldflow.CharacterDetailResponse. It never persists in the
// core's own storage. The workflows build the CreateCharacter meta payload
// and their child-task inputs from CharacterDetailResponse, not from Detail.
type Detail struct {
	DisplayName       string   `json:"display_name"`
	Bio               string   `json:"bio"`
	BackgroundStory   string   `json:"background_story"`
	Personality       string   `json:"personality"`
	Appearance        string   `json:"appearance"`
	Interests         []string `json:"interests"`
	SpeakingStyle     string   `json:"speaking_style"`
	CommonTopics      []string `json:"common_topics"`
	AvatarDescription string   `json:"avatar_description"`
	AvatarStyle       string   `json:"avatar_style"`
	Secret            string   `json:"secret"`
	DailyRoutine      string   `json:"daily_routine"`
	Relationships     string   `json:"relationships"`
}

// FormatForPrompt renders a compact summary suitable for embedding into
// post-generation prompts.
func (d *Detail) FormatForPrompt() string {
	if d == nil {
		return ""
	}
	return d.DisplayName + ": " + d.Bio + "\nPersonality: " + d.Personality +
		"\nSpeaking style: " + d.SpeakingStyle
}
