package world

import "context"

// Store is the world_parameters collection's persistence contract
// (spec.md §3/§6), implemented by internal/infrastructure/storage.
type Store interface {
	// Save upserts the canonical world document, keyed by WorldID.
	Save(ctx context.Context, params *Parameters) error

	// Get returns the persisted world parameters, or nil if none exist.
	Get(ctx context.Context, worldID string) (*Parameters, error)
}
