package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/worldforge/worldforge/internal/domain/workflowerr"
)

// OpenAIProvider issues chat-completions requests over HTTP, grounded
// directly on the teacher's builtin OpenAI executor: same request shape
// (model, messages, temperature, max_tokens, response_format), same error
// classification from the choices[0] envelope.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOpenAIProvider builds an OpenAIProvider. baseURL defaults to
// OpenRouter's OpenAI-compatible endpoint, matching the teacher's default
// fallback pattern.
func NewOpenAIProvider(apiKey, baseURL string, httpClient *http.Client) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm api key is required")
	}
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	return &OpenAIProvider{apiKey: apiKey, baseURL: baseURL, client: httpClient}, nil
}

// Complete issues one chat-completions request.
func (p *OpenAIProvider) Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	body := p.buildRequestBody(req)

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal llm request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build llm request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, workflowerr.New(workflowerr.Transient, fmt.Errorf("llm request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, workflowerr.New(workflowerr.Transient, fmt.Errorf("read llm response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, p.classifyHTTPError(resp.StatusCode, respBody)
	}

	var apiResp chatCompletionResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, workflowerr.New(workflowerr.Validation, fmt.Errorf("parse llm response: %w", err))
	}

	if len(apiResp.Choices) == 0 {
		return nil, workflowerr.New(workflowerr.Validation, fmt.Errorf("llm response missing choices"))
	}

	choice := apiResp.Choices[0]
	if choice.Message.Content == "" {
		return nil, workflowerr.New(workflowerr.Validation, fmt.Errorf("llm response missing message content"))
	}

	return &ChatResponse{Content: choice.Message.Content, FinishReason: choice.FinishReason}, nil
}

func (p *OpenAIProvider) classifyHTTPError(status int, body []byte) error {
	var errResp map[string]any
	msg := string(body)
	if err := json.Unmarshal(body, &errResp); err == nil {
		if e, ok := errResp["error"].(map[string]any); ok {
			msg = fmt.Sprintf("%v", e["message"])
		}
	}

	switch {
	case status == http.StatusTooManyRequests:
		return workflowerr.Newf(workflowerr.RateLimited, "llm provider rate limited: %s", msg)
	case status >= 500:
		return workflowerr.Newf(workflowerr.Transient, "llm provider error (status %d): %s", status, msg)
	default:
		return workflowerr.Newf(workflowerr.Validation, "llm provider error (status %d): %s", status, msg)
	}
}

func (p *OpenAIProvider) buildRequestBody(req *ChatRequest) map[string]any {
	body := map[string]any{
		"model": req.Model,
		"messages": []map[string]any{
			{"role": "user", "content": req.Prompt},
		},
	}
	if req.MaxOutputTokens > 0 {
		body["max_tokens"] = req.MaxOutputTokens
	}
	if req.Temperature > 0 {
		body["temperature"] = req.Temperature
	}
	if req.ResponseFormat != nil {
		body["response_format"] = p.buildResponseFormat(req.ResponseFormat)
	}
	return body
}

func (p *OpenAIProvider) buildResponseFormat(format *ResponseFormat) map[string]any {
	result := map[string]any{"type": format.Type}
	if format.Type == "json_schema" && format.JSONSchema != nil {
		result["json_schema"] = map[string]any{
			"name":   format.JSONSchema.Name,
			"strict": format.JSONSchema.Strict,
			"schema": format.JSONSchema.Schema,
		}
	}
	return result
}

type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Created int64  `json:"created"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
