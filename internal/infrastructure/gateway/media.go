package gateway

import (
	"context"
	"time"
)

// MediaClient wraps the Media downstream service (spec.md §4.2).
type MediaClient struct {
	svc *service
}

type getPresignedUploadURLRequest struct {
	WorldID     string    `json:"world_id"`
	CharacterID string    `json:"character_id,omitempty"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	MediaType   MediaType `json:"media_type_enum"`
}

// PresignedUpload is the result of GetPresignedUploadURL.
type PresignedUpload struct {
	MediaID   string    `json:"media_id"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GetPresignedUploadURL requests a presigned PUT URL for uploading
// generated media. size is 0 until the bytes are known (spec.md §4.4 step
// 4 calls this before the download completes).
func (c *MediaClient) GetPresignedUploadURL(ctx context.Context, worldID, characterID, filename, contentType string, size int64, mediaType MediaType) (*PresignedUpload, error) {
	req := &getPresignedUploadURLRequest{
		WorldID:     worldID,
		CharacterID: characterID,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		MediaType:   mediaType,
	}
	var resp PresignedUpload
	if err := c.svc.invoke(ctx, "/media.MediaService/GetPresignedUploadURL", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type confirmUploadRequest struct {
	MediaID string `json:"media_id"`
}

type confirmUploadResponse struct {
	Success bool `json:"success"`
}

// ConfirmUpload marks a media upload complete. Idempotent: re-confirming an
// already-confirmed id is a harmless no-op returning success=true, matching
// the original upload flow where confirm retries are common after network
// blips (spec.md §8, §9).
func (c *MediaClient) ConfirmUpload(ctx context.Context, mediaID string) (bool, error) {
	var resp confirmUploadResponse
	if err := c.svc.invoke(ctx, "/media.MediaService/ConfirmUpload", &confirmUploadRequest{MediaID: mediaID}, &resp); err != nil {
		return false, err
	}
	return resp.Success, nil
}
