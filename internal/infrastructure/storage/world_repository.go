package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/worldforge/worldforge/internal/domain/world"
	"github.com/worldforge/worldforge/internal/infrastructure/storage/models"
)

var _ world.Store = (*WorldParametersRepository)(nil)

// WorldParametersRepository implements world.Store using Bun ORM, storing
// the full Parameters document as a single jsonb blob keyed by world_id.
type WorldParametersRepository struct {
	db *bun.DB
}

// NewWorldParametersRepository creates a new WorldParametersRepository.
func NewWorldParametersRepository(db *bun.DB) *WorldParametersRepository {
	return &WorldParametersRepository{db: db}
}

func (r *WorldParametersRepository) Save(ctx context.Context, params *world.Parameters) error {
	doc, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode world parameters: %w", err)
	}

	m := &models.WorldParametersModel{
		WorldID:   params.WorldID,
		Document:  doc,
		UpdatedAt: time.Now().UTC(),
	}

	_, err = r.db.NewInsert().
		Model(m).
		On("CONFLICT (world_id) DO UPDATE").
		Set("document = EXCLUDED.document").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save world parameters: %w", err)
	}
	return nil
}

func (r *WorldParametersRepository) Get(ctx context.Context, worldID string) (*world.Parameters, error) {
	m := new(models.WorldParametersModel)
	err := r.db.NewSelect().Model(m).Where("world_id = ?", worldID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get world parameters: %w", err)
	}

	var params world.Parameters
	if err := json.Unmarshal(m.Document, &params); err != nil {
		return nil, fmt.Errorf("decode world parameters: %w", err)
	}
	return &params, nil
}
