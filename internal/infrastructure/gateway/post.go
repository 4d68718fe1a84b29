package gateway

import (
	"context"
	"time"
)

// PostClient wraps the Post downstream service (spec.md §4.2).
type PostClient struct {
	svc *service
}

type createAIPostRequest struct {
	CharacterID string   `json:"character_id"`
	Caption     string   `json:"caption"`
	MediaID     string   `json:"media_id"`
	WorldID     string   `json:"world_id"`
	Tags        []string `json:"tags"`
}

type createAIPostResponse struct {
	PostID    string    `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateAIPost creates one AI-generated post, bundled with its image
// (spec.md §9 Open Question: bundled post+image creation).
func (c *PostClient) CreateAIPost(ctx context.Context, characterID, caption, mediaID, worldID string, tags []string) (postID string, createdAt time.Time, err error) {
	req := &createAIPostRequest{CharacterID: characterID, Caption: caption, MediaID: mediaID, WorldID: worldID, Tags: tags}
	var resp createAIPostResponse
	if err := c.svc.invoke(ctx, "/post.PostService/CreateAIPost", req, &resp); err != nil {
		return "", time.Time{}, err
	}
	return resp.PostID, resp.CreatedAt, nil
}
