package audit

import "context"

// Recorder is the append-only audit log's persistence contract, implemented
// by internal/infrastructure/storage.
type Recorder interface {
	// Record appends one API call to the log.
	Record(ctx context.Context, req APIRequest) error

	// Summarize recomputes a per-world spend rollup from the log, used as a
	// cross-check against the ledger's own running cost fields (spec.md §9
	// "API request cost rollups").
	Summarize(ctx context.Context, worldID string) (CostSummary, error)
}
