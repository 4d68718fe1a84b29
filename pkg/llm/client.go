// Package llm implements the LLM Client (C3): structured-output
// chat-completions against a JSON schema derived from a typed response
// shape, with the exact schema normalizations the downstream API requires.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/worldforge/worldforge/internal/domain/workflowerr"
	"github.com/worldforge/worldforge/internal/infrastructure/logger"
	"github.com/worldforge/worldforge/internal/infrastructure/pool"
)

// ContentResult is the plain-text completion result (spec.md §4.3 op 1).
type ContentResult struct {
	Text         string
	FinishReason string
}

// Provider is the HTTP transport backing a Client; OpenAIProvider is the
// only implementation, grounded on the teacher's builtin OpenAI executor.
type Provider interface {
	Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// ChatRequest is the normalized request shape passed to a Provider.
type ChatRequest struct {
	Model          string
	Prompt         string
	Temperature    float64
	MaxOutputTokens int
	ResponseFormat *ResponseFormat
}

// ResponseFormat mirrors the OpenAI response_format wire shape.
type ResponseFormat struct {
	Type       string
	JSONSchema *JSONSchemaFormat
}

// JSONSchemaFormat is the json_schema member of response_format.
type JSONSchemaFormat struct {
	Name   string
	Strict bool
	Schema map[string]any
}

// ChatResponse is the normalized provider response.
type ChatResponse struct {
	Content      string
	FinishReason string
}

// Client issues structured and plain chat completions and is gated by the
// pool's LLM permit (spec.md §4.3: "every LLM call is gated by the LLM
// permit of C1").
type Client struct {
	provider     Provider
	pool         *pool.Pool
	schemas      *pool.SchemaRegistry
	log          *logger.Logger
	defaultModel string
}

// New builds a Client over the given Provider. schemas is consulted by
// GenerateStructuredContent to reject an unregistered schema name before
// any request is built.
func New(provider Provider, p *pool.Pool, schemas *pool.SchemaRegistry, log *logger.Logger, defaultModel string) *Client {
	return &Client{provider: provider, pool: p, schemas: schemas, log: log, defaultModel: defaultModel}
}

// GenerateContent issues a plain text completion (spec.md §4.3 op 1).
func (c *Client) GenerateContent(ctx context.Context, prompt, model string, temperature float64, maxOutputTokens int) (*ContentResult, error) {
	if model == "" {
		model = c.defaultModel
	}

	if err := c.pool.AcquireLLM(ctx); err != nil {
		return nil, workflowerr.New(workflowerr.Transient, fmt.Errorf("acquire llm permit: %w", err))
	}
	defer c.pool.ReleaseLLM()

	start := time.Now()
	resp, err := c.provider.Complete(ctx, &ChatRequest{
		Model:           model,
		Prompt:          prompt,
		Temperature:     temperature,
		MaxOutputTokens: maxOutputTokens,
	})
	duration := time.Since(start)
	c.log.Debug("llm content request", "model", model, "duration_ms", duration.Milliseconds())
	if err != nil {
		return nil, err
	}

	return &ContentResult{Text: resp.Content, FinishReason: resp.FinishReason}, nil
}

// GenerateStructuredContent issues a structured-output completion against
// the JSON schema of T, registered under schemaName in the pool's schema
// registry, and parses+validates the result back into a T (spec.md §4.3
// op 2).
func GenerateStructuredContent[T any](ctx context.Context, c *Client, prompt, schemaName, model string, temperature float64, maxOutputTokens int) (*T, error) {
	if model == "" {
		model = c.defaultModel
	}

	if _, err := c.schemas.Resolve(schemaName); err != nil {
		return nil, workflowerr.New(workflowerr.Precondition, err)
	}

	var zero T
	schema := SchemaFromType(zero)
	normalized := Normalize(schema)

	if err := c.pool.AcquireLLM(ctx); err != nil {
		return nil, workflowerr.New(workflowerr.Transient, fmt.Errorf("acquire llm permit: %w", err))
	}
	defer c.pool.ReleaseLLM()

	start := time.Now()
	resp, err := c.provider.Complete(ctx, &ChatRequest{
		Model:           model,
		Prompt:          prompt,
		Temperature:     temperature,
		MaxOutputTokens: maxOutputTokens,
		ResponseFormat: &ResponseFormat{
			Type: "json_schema",
			JSONSchema: &JSONSchemaFormat{
				Name:   "response",
				Strict: true,
				Schema: normalized,
			},
		},
	})
	duration := time.Since(start)
	c.log.Debug("llm structured request", "model", model, "schema", schemaName, "duration_ms", duration.Milliseconds())
	if err != nil {
		return nil, err
	}

	if resp.Content == "" {
		return nil, workflowerr.Newf(workflowerr.Validation, "llm response missing content for schema %q", schemaName)
	}

	var out T
	if err := json.Unmarshal([]byte(resp.Content), &out); err != nil {
		return nil, workflowerr.Newf(workflowerr.Validation, "failed to parse structured response for schema %q: %v", schemaName, err)
	}

	return &out, nil
}
