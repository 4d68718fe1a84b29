// Package audit defines the append-only API-request audit log (spec.md §3
// ApiRequestHistory) plus a cost-summary helper derived from it.
package audit

import "time"

// APIType names the kind of external call an APIRequest records.
type APIType string

const (
	APITypeLLM   APIType = "llm"
	APITypeImage APIType = "image"
	APITypeGRPC  APIType = "grpc"
)

// APIRequest is one append-only audit record of an external call.
type APIRequest struct {
	ID          string    `json:"id"`
	APIType     APIType   `json:"api_type"`
	TaskID      string    `json:"task_id"`
	WorldID     string    `json:"world_id"`
	RequestType string    `json:"request_type"`
	Request     string    `json:"request"`
	Response    string    `json:"response,omitempty"`
	Error       string    `json:"error,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
	Timestamp   time.Time `json:"timestamp"`
}

// CostSummary is a per-world spend rollup, recomputed from the audit log as
// a cross-check against the ledger's own running cost fields (the ledger is
// authoritative; this helper exists to reconcile drift, not to replace it).
type CostSummary struct {
	LLMCost   float64
	ImageCost float64
}

// ImageGenerationCostUSD is the single flat per-image cost charged regardless
// of size or model (spec.md §9 Open Question resolution).
const ImageGenerationCostUSD = 0.02
