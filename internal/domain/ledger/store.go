package ledger

import "context"

// Store is the Progress Ledger's persistence contract (spec.md §4.5),
// implemented by internal/infrastructure/storage against the document
// store. Every operation acquires a DB permit and uses atomic
// update primitives; no operation holds a long-lived lock.
type Store interface {
	// InitializeWorld creates the ledger document; fails if one already
	// exists for worldID.
	InitializeWorld(ctx context.Context, worldID string, usersPredicted, postsPredicted int, userPrompt string, llmLimit, imagesLimit int) error

	// UpdateStage transitions one stage and recomputes overall status.
	UpdateStage(ctx context.Context, worldID string, stage Stage, status Status) error

	// IncrementCounter atomically adds delta to field; field must satisfy
	// ValidCounter.
	IncrementCounter(ctx context.Context, worldID string, field CounterField, delta int) error

	// IncrementCost atomically adds cost to the ledger's costType field.
	IncrementCost(ctx context.Context, worldID string, costType CostType, cost float64) error

	// UpdateProgress applies a generic multi-field $set patch with an
	// auto-updated timestamp.
	UpdateProgress(ctx context.Context, worldID string, fields map[string]any) error

	// Get returns the current ledger document for worldID.
	Get(ctx context.Context, worldID string) (*Ledger, error)
}
