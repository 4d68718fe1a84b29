package gateway

import "context"

// CharacterClient wraps the Character downstream service (spec.md §4.2).
type CharacterClient struct {
	svc *service
}

// CharacterInfo is the minimal character projection the core reads back.
type CharacterInfo struct {
	CharacterID    string `json:"character_id"`
	WorldID        string `json:"world_id"`
	DisplayName    string `json:"display_name"`
	MetaJSON       string `json:"meta_json"`
	AvatarMediaID  string `json:"avatar_media_id,omitempty"`
}

type createCharacterRequest struct {
	WorldID       string `json:"world_id"`
	DisplayName   string `json:"display_name"`
	MetaJSON      string `json:"meta_json"`
	AvatarMediaID string `json:"avatar_media_id,omitempty"`
}

type createCharacterResponse struct {
	CharacterID string `json:"character_id"`
}

// CreateCharacter registers a new character under worldID. avatarMediaID may
// be empty when the avatar hasn't been generated yet.
func (c *CharacterClient) CreateCharacter(ctx context.Context, worldID, displayName, metaJSON, avatarMediaID string) (string, error) {
	req := &createCharacterRequest{WorldID: worldID, DisplayName: displayName, MetaJSON: metaJSON, AvatarMediaID: avatarMediaID}
	var resp createCharacterResponse
	if err := c.svc.invoke(ctx, "/character.CharacterService/CreateCharacter", req, &resp); err != nil {
		return "", err
	}
	return resp.CharacterID, nil
}

type getCharacterRequest struct {
	CharacterID string `json:"character_id"`
}

// GetCharacter fetches a character by id.
func (c *CharacterClient) GetCharacter(ctx context.Context, characterID string) (*CharacterInfo, error) {
	var resp CharacterInfo
	if err := c.svc.invoke(ctx, "/character.CharacterService/GetCharacter", &getCharacterRequest{CharacterID: characterID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CharacterPatch carries the optional fields UpdateCharacter may set.
type CharacterPatch struct {
	DisplayName   *string `json:"display_name,omitempty"`
	AvatarMediaID *string `json:"avatar_media_id,omitempty"`
	MetaJSON      *string `json:"meta,omitempty"`
}

type updateCharacterRequest struct {
	CharacterID string `json:"character_id"`
	CharacterPatch
}

// UpdateCharacter patches a subset of a character's fields.
func (c *CharacterClient) UpdateCharacter(ctx context.Context, characterID string, patch CharacterPatch) error {
	req := &updateCharacterRequest{CharacterID: characterID, CharacterPatch: patch}
	return c.svc.invoke(ctx, "/character.CharacterService/UpdateCharacter", req, &struct{}{})
}
