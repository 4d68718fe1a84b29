package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/worldforge/worldforge/internal/domain/audit"
	"github.com/worldforge/worldforge/internal/infrastructure/storage/models"
)

var _ audit.Recorder = (*AuditRepository)(nil)

// AuditRepository implements audit.Recorder using Bun ORM against the
// append-only api_requests_history collection.
type AuditRepository struct {
	db *bun.DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *bun.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Record(ctx context.Context, req audit.APIRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	m := &models.APIRequestModel{
		ID:          req.ID,
		APIType:     string(req.APIType),
		TaskID:      req.TaskID,
		WorldID:     req.WorldID,
		RequestType: req.RequestType,
		Request:     req.Request,
		Response:    req.Response,
		Error:       req.Error,
		DurationMs:  req.DurationMs,
		Timestamp:   req.Timestamp,
	}
	if _, err := r.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("record api request: %w", err)
	}
	return nil
}

// Summarize reconciles call volume against the flat per-image cost constant
// (the only fixed-cost figure the core knows outside the ledger's own
// running totals), used to cross-check the ledger's cost_image field.
func (r *AuditRepository) Summarize(ctx context.Context, worldID string) (audit.CostSummary, error) {
	var summary audit.CostSummary

	imageCount, err := r.db.NewSelect().
		Model((*models.APIRequestModel)(nil)).
		Where("world_id = ?", worldID).
		Where("api_type = ?", string(audit.APITypeImage)).
		Count(ctx)
	if err != nil {
		return summary, fmt.Errorf("count image requests: %w", err)
	}

	summary.ImageCost = float64(imageCount) * audit.ImageGenerationCostUSD
	return summary, nil
}
