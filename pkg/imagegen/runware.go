package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/worldforge/worldforge/internal/domain/workflowerr"
)

// RunwareProvider issues text-to-image submissions over HTTP, grounded on
// the same request/response envelope idiom as pkg/llm.OpenAIProvider
// (status-code classification, JSON body, single bearer token).
type RunwareProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewRunwareProvider builds a RunwareProvider.
func NewRunwareProvider(apiKey, baseURL string, httpClient *http.Client) (*RunwareProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("image provider api key is required")
	}
	if baseURL == "" {
		baseURL = "https://api.runware.ai/v1"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &RunwareProvider{apiKey: apiKey, baseURL: baseURL, client: httpClient}, nil
}

type runwareTask struct {
	TaskType       string `json:"taskType"`
	TaskUUID       string `json:"taskUUID"`
	PositivePrompt string `json:"positivePrompt"`
	NegativePrompt string `json:"negativePrompt"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Model          string `json:"model"`
	NumberResults  int    `json:"numberResults"`
}

type runwareResponseEnvelope struct {
	Data []struct {
		TaskUUID  string `json:"taskUUID"`
		ImageURL  string `json:"imageURL"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"errors"`
}

// GenerateImage submits one text-to-image task and returns the ephemeral
// result URL.
func (p *RunwareProvider) GenerateImage(ctx context.Context, req *TextToImageRequest) (*TextToImageResult, error) {
	task := runwareTask{
		TaskType:       "imageInference",
		TaskUUID:       uuid.NewString(),
		PositivePrompt: req.PositivePrompt,
		NegativePrompt: req.NegativePrompt,
		Width:          req.Width,
		Height:         req.Height,
		Model:          req.Model,
		NumberResults:  1,
	}

	payload, err := json.Marshal([]runwareTask{task})
	if err != nil {
		return nil, fmt.Errorf("marshal image request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, workflowerr.New(workflowerr.Transient, fmt.Errorf("image request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, workflowerr.New(workflowerr.Transient, fmt.Errorf("read image response: %w", err))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, workflowerr.Newf(workflowerr.RateLimited, "image provider rate limited")
	}
	if resp.StatusCode >= 500 {
		return nil, workflowerr.Newf(workflowerr.Transient, "image provider error (status %d)", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, workflowerr.Newf(workflowerr.Validation, "image provider rejected request (status %d): %s", resp.StatusCode, string(body))
	}

	var envelope runwareResponseEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, workflowerr.New(workflowerr.Validation, fmt.Errorf("parse image response: %w", err))
	}
	if len(envelope.Errors) > 0 {
		return nil, workflowerr.Newf(workflowerr.Validation, "image provider error: %s", envelope.Errors[0].Message)
	}
	if len(envelope.Data) == 0 || envelope.Data[0].ImageURL == "" {
		return nil, workflowerr.Newf(workflowerr.Validation, "image provider returned no image")
	}

	return &TextToImageResult{ImageURL: envelope.Data[0].ImageURL}, nil
}
