package imagegen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/worldforge/worldforge/internal/domain/audit"
	"github.com/worldforge/worldforge/internal/domain/ledger"
	"github.com/worldforge/worldforge/internal/domain/workflowerr"
	"github.com/worldforge/worldforge/internal/infrastructure/gateway"
	"github.com/worldforge/worldforge/internal/infrastructure/logger"
	"github.com/worldforge/worldforge/internal/infrastructure/pool"
	"github.com/worldforge/worldforge/pkg/engine"
	"github.com/worldforge/worldforge/pkg/llm"
)

// Request describes one image to generate.
type Request struct {
	Prompt      string
	WorldID     string
	MediaType   gateway.MediaType
	CharacterID string
	Width       int
	Height      int
	Filename    string
	Enhance     bool
	Model       string
}

// Result is the stable output of one GenerateImage call.
type Result struct {
	MediaID  string
	ImageURL string
	Cost     float64
}

// enhancePromptResponse is the structured shape the optional
// prompt-enhancement LLM call returns (spec.md §4.4 step 1).
type enhancePromptResponse struct {
	Prompts []string `json:"prompts"`
}

// Client implements the Image Client (C4).
type Client struct {
	provider      Provider
	llm           *llm.Client
	media         *gateway.MediaClient
	ledger        ledger.Store
	audit         audit.Recorder
	pool          *pool.Pool
	log           *logger.Logger
	defaultModel  string
}

// New builds an imagegen Client.
func New(provider Provider, llmClient *llm.Client, media *gateway.MediaClient, ledgerStore ledger.Store, auditRecorder audit.Recorder, p *pool.Pool, log *logger.Logger, defaultModel string) *Client {
	return &Client{
		provider:     provider,
		llm:          llmClient,
		media:        media,
		ledger:       ledgerStore,
		audit:        auditRecorder,
		pool:         p,
		log:          log,
		defaultModel: defaultModel,
	}
}

// retryPolicy implements "retried twice with exponential backoff" (spec.md
// §4.4): the initial attempt plus two retries.
func retryPolicy() *engine.ActivityRetryPolicy {
	return &engine.ActivityRetryPolicy{
		MaxAttempts:     3,
		InitialDelay:    2 * time.Second,
		MaxDelay:        30 * time.Second,
		BackoffStrategy: engine.BackoffExponential,
	}
}

// GenerateImage runs the six-step pipeline of spec.md §4.4, gated by the
// pool's image permit.
func (c *Client) GenerateImage(ctx context.Context, req Request) (*Result, error) {
	if err := c.pool.AcquireImage(ctx); err != nil {
		return nil, workflowerr.New(workflowerr.Transient, fmt.Errorf("acquire image permit: %w", err))
	}
	defer c.pool.ReleaseImage()

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	positivePrompt := req.Prompt
	if req.Enhance && c.llm != nil {
		enhanced, err := llm.GenerateStructuredContent[enhancePromptResponse](ctx, c.llm, enhancePromptRequest(req.Prompt), "enhance_prompt", "", 0.7, 500)
		if err != nil {
			c.log.Warn("prompt enhancement failed, using original prompt", "error", err)
		} else if len(enhanced.Prompts) > 0 {
			positivePrompt = enhanced.Prompts[0]
		}
	}

	filename := req.Filename
	if filename == "" {
		filename = uuid.NewString() + ".png"
	}
	contentType := "image/png"

	result := &Result{}

	err := retryPolicy().Execute(ctx, func() error {
		ttResult, err := c.provider.GenerateImage(ctx, &TextToImageRequest{
			PositivePrompt: positivePrompt,
			NegativePrompt: NegativePrompt,
			Width:          req.Width,
			Height:         req.Height,
			Model:          model,
		})
		if err != nil {
			return err
		}

		if err := c.ledger.IncrementCost(ctx, req.WorldID, ledger.CostImage, audit.ImageGenerationCostUSD); err != nil {
			return fmt.Errorf("increment image cost: %w", err)
		}

		presigned, err := c.media.GetPresignedUploadURL(ctx, req.WorldID, req.CharacterID, filename, contentType, 0, req.MediaType)
		if err != nil {
			return fmt.Errorf("presign upload: %w", err)
		}

		if err := c.downloadAndUpload(ctx, ttResult.ImageURL, presigned.UploadURL, contentType); err != nil {
			return fmt.Errorf("upload image: %w", err)
		}

		success, err := c.media.ConfirmUpload(ctx, presigned.MediaID)
		if err != nil {
			return fmt.Errorf("confirm upload: %w", err)
		}
		if !success {
			return workflowerr.Newf(workflowerr.Transient, "media confirm returned success=false")
		}

		result.MediaID = presigned.MediaID
		result.ImageURL = ttResult.ImageURL
		result.Cost = audit.ImageGenerationCostUSD
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// downloadAndUpload fetches the ephemeral image bytes and PUTs them to the
// presigned URL, accepting 200/201/204 (spec.md §6's media upload contract).
func (c *Client) downloadAndUpload(ctx context.Context, sourceURL, uploadURL, contentType string) error {
	getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}

	getResp, err := c.pool.HTTP.Do(getReq)
	if err != nil {
		return workflowerr.New(workflowerr.Transient, fmt.Errorf("download image: %w", err))
	}
	defer getResp.Body.Close()

	if getResp.StatusCode != http.StatusOK {
		return workflowerr.Newf(workflowerr.Transient, "image download failed with status %d", getResp.StatusCode)
	}

	body, err := io.ReadAll(getResp.Body)
	if err != nil {
		return workflowerr.New(workflowerr.Transient, fmt.Errorf("read downloaded image: %w", err))
	}

	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	putReq.Header.Set("Content-Type", contentType)

	putResp, err := c.pool.HTTP.Do(putReq)
	if err != nil {
		return workflowerr.New(workflowerr.Transient, fmt.Errorf("upload image: %w", err))
	}
	defer putResp.Body.Close()

	switch putResp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	default:
		return workflowerr.Newf(workflowerr.Transient, "image upload failed with status %d", putResp.StatusCode)
	}
}

func enhancePromptRequest(prompt string) string {
	return "Generate 3 alternative, more detailed rewrites of this image prompt, ordered best first: " + prompt
}
