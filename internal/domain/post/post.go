// Package post holds the thin opaque-id types for posts owned by the
// downstream Post service.
package post

import "time"

// Ref is an opaque handle to a post owned by the Post service.
type Ref struct {
	PostID    string    `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Concept is one LLM-generated post idea inside a post batch
// (spec.md §4.7(g)).
type Concept struct {
	Topic               string `json:"topic"`
	ContentBrief        string `json:"content_brief"`
	EmotionalTone       string `json:"emotional_tone"`
	PostType            string `json:"post_type"`
	RelevanceToCharacter string `json:"relevance_to_character"`
}

// Detail is the full generated post content (spec.md §4.7(h)
// PostDetailResponse).
type Detail struct {
	Content     string   `json:"content"`
	ImagePrompt string   `json:"image_prompt,omitempty"`
	ImageStyle  string   `json:"image_style,omitempty"`
	Hashtags    []string `json:"hashtags"`
	Mood        string   `json:"mood"`
	Context     string   `json:"context"`
	Mentions    []string `json:"mentions,omitempty"`
	Location    string   `json:"location,omitempty"`
	TimeOfDay   string   `json:"time_of_day,omitempty"`
}
