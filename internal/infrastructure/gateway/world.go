package gateway

import (
	"context"

	"github.com/worldforge/worldforge/internal/domain/world"
)

// WorldClient wraps the World downstream service (spec.md §4.2).
type WorldClient struct {
	svc *service
}

type getWorldRequest struct {
	WorldID string `json:"world_id"`
}

type getWorldResponse struct {
	Params world.Parameters `json:"params"`
}

// GetWorld fetches the persisted world parameters.
func (c *WorldClient) GetWorld(ctx context.Context, worldID string) (*world.Parameters, error) {
	var resp getWorldResponse
	if err := c.svc.invoke(ctx, "/world.WorldService/GetWorld", &getWorldRequest{WorldID: worldID}, &resp); err != nil {
		return nil, err
	}
	return &resp.Params, nil
}

type updateWorldImagesRequest struct {
	WorldID       string `json:"world_id"`
	HeaderMediaID string `json:"header_media_id"`
	IconMediaID   string `json:"icon_media_id"`
}

// UpdateWorldImages records the header and icon media ids generated for a
// world.
func (c *WorldClient) UpdateWorldImages(ctx context.Context, worldID, headerMediaID, iconMediaID string) error {
	req := &updateWorldImagesRequest{WorldID: worldID, HeaderMediaID: headerMediaID, IconMediaID: iconMediaID}
	return c.svc.invoke(ctx, "/world.WorldService/UpdateWorldImages", req, &struct{}{})
}

type updateWorldParamsRequest struct {
	WorldID string           `json:"world_id"`
	Params  world.Parameters `json:"params"`
	TaskID  string           `json:"task_id"`
}

// UpdateWorldParams pushes the generated world description to the
// downstream service once the core has persisted it.
func (c *WorldClient) UpdateWorldParams(ctx context.Context, worldID string, params world.Parameters, taskID string) error {
	req := &updateWorldParamsRequest{WorldID: worldID, Params: params, TaskID: taskID}
	return c.svc.invoke(ctx, "/world.WorldService/UpdateWorldParams", req, &struct{}{})
}
