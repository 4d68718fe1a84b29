package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/worldforge/worldforge/internal/domain/ledger"
	"github.com/worldforge/worldforge/internal/infrastructure/storage/models"
)

var _ ledger.Store = (*LedgerRepository)(nil)

// LedgerRepository implements ledger.Store using Bun ORM. Counter and cost
// increments use raw SQL arithmetic (`field = field + ?`) so concurrent
// workers compose correctly, grounded on the teacher's
// service_key_repository.go `Set("usage_count = usage_count + 1")` idiom.
type LedgerRepository struct {
	db *bun.DB
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db *bun.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) InitializeWorld(ctx context.Context, worldID string, usersPredicted, postsPredicted int, userPrompt string, llmLimit, imagesLimit int) error {
	l := ledger.NewLedger(worldID, usersPredicted, postsPredicted, llmLimit, imagesLimit)
	m, err := toLedgerModel(l)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	_, err = r.db.NewInsert().Model(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("initialize world %s: %w", worldID, err)
	}
	return nil
}

func (r *LedgerRepository) Get(ctx context.Context, worldID string) (*ledger.Ledger, error) {
	m := new(models.LedgerModel)
	err := r.db.NewSelect().Model(m).Where("world_id = ?", worldID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("ledger not found for world %s", worldID)
		}
		return nil, fmt.Errorf("get ledger: %w", err)
	}
	return fromLedgerModel(m)
}

// UpdateStage loads, mutates in Go (deriving overall status via
// ledger.Ledger.SetStage) and writes back the stage list plus status under
// a transaction, since the derivation needs the full stage list rather than
// a single-column arithmetic update.
func (r *LedgerRepository) UpdateStage(ctx context.Context, worldID string, stage ledger.Stage, status ledger.Status) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		m := new(models.LedgerModel)
		if err := tx.NewSelect().Model(m).Where("world_id = ?", worldID).For("UPDATE").Scan(ctx); err != nil {
			return fmt.Errorf("load ledger for stage update: %w", err)
		}

		l, err := fromLedgerModel(m)
		if err != nil {
			return err
		}
		if err := l.SetStage(stage, status); err != nil {
			return err
		}

		stagesJSON, err := json.Marshal(l.Stages)
		if err != nil {
			return fmt.Errorf("encode stages: %w", err)
		}

		_, err = tx.NewUpdate().
			Model((*models.LedgerModel)(nil)).
			Set("status = ?", string(l.Status)).
			Set("current_stage = ?", string(l.CurrentStage)).
			Set("stages = ?", stagesJSON).
			Set("updated_at = ?", time.Now().UTC()).
			Where("world_id = ?", worldID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("write stage update: %w", err)
		}
		return nil
	})
}

func (r *LedgerRepository) IncrementCounter(ctx context.Context, worldID string, field ledger.CounterField, delta int) error {
	if !ledger.ValidCounter(field) {
		return fmt.Errorf("invalid counter field %q", field)
	}

	column := string(field)
	_, err := r.db.NewUpdate().
		Model((*models.LedgerModel)(nil)).
		Set(fmt.Sprintf("%s = %s + ?", column, column), delta).
		Set("updated_at = ?", time.Now().UTC()).
		Where("world_id = ?", worldID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("increment counter %s: %w", field, err)
	}
	return nil
}

func (r *LedgerRepository) IncrementCost(ctx context.Context, worldID string, costType ledger.CostType, cost float64) error {
	var column string
	switch costType {
	case ledger.CostLLM:
		column = "cost_llm"
	case ledger.CostImage:
		column = "cost_image"
	default:
		return fmt.Errorf("invalid cost type %q", costType)
	}

	_, err := r.db.NewUpdate().
		Model((*models.LedgerModel)(nil)).
		Set(fmt.Sprintf("%s = %s + ?", column, column), cost).
		Set("updated_at = ?", time.Now().UTC()).
		Where("world_id = ?", worldID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("increment cost %s: %w", costType, err)
	}
	return nil
}

func (r *LedgerRepository) UpdateProgress(ctx context.Context, worldID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	query := r.db.NewUpdate().Model((*models.LedgerModel)(nil)).Set("updated_at = ?", time.Now().UTC())
	for column, value := range fields {
		query = query.Set(fmt.Sprintf("%s = ?", column), value)
	}

	_, err := query.Where("world_id = ?", worldID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

func toLedgerModel(l *ledger.Ledger) (*models.LedgerModel, error) {
	stagesJSON, err := json.Marshal(l.Stages)
	if err != nil {
		return nil, err
	}
	return &models.LedgerModel{
		WorldID:             l.WorldID,
		Status:              string(l.Status),
		CurrentStage:        string(l.CurrentStage),
		Stages:              stagesJSON,
		TasksTotal:          l.TasksTotal,
		TasksCompleted:      l.TasksCompleted,
		TasksFailed:         l.TasksFailed,
		UsersPredicted:      l.UsersPredicted,
		UsersCreated:        l.UsersCreated,
		PostsPredicted:      l.PostsPredicted,
		PostsCreated:        l.PostsCreated,
		APICallLimitsLLM:    l.APICallLimitsLLM,
		APICallsMadeLLM:     l.APICallsMadeLLM,
		APICallLimitsImages: l.APICallLimitsImages,
		APICallsMadeImages:  l.APICallsMadeImages,
		CostLLM:             l.CostLLM,
		CostImage:           l.CostImage,
	}, nil
}

func fromLedgerModel(m *models.LedgerModel) (*ledger.Ledger, error) {
	var stages []ledger.StageEntry
	if len(m.Stages) > 0 {
		if err := json.Unmarshal(m.Stages, &stages); err != nil {
			return nil, fmt.Errorf("decode stages: %w", err)
		}
	}
	return &ledger.Ledger{
		WorldID:             m.WorldID,
		Status:              ledger.Status(m.Status),
		CurrentStage:        ledger.Stage(m.CurrentStage),
		Stages:              stages,
		TasksTotal:          m.TasksTotal,
		TasksCompleted:      m.TasksCompleted,
		TasksFailed:         m.TasksFailed,
		UsersPredicted:      m.UsersPredicted,
		UsersCreated:        m.UsersCreated,
		PostsPredicted:      m.PostsPredicted,
		PostsCreated:        m.PostsCreated,
		APICallLimitsLLM:    m.APICallLimitsLLM,
		APICallsMadeLLM:     m.APICallsMadeLLM,
		APICallLimitsImages: m.APICallLimitsImages,
		APICallsMadeImages:  m.APICallsMadeImages,
		CostLLM:             m.CostLLM,
		CostImage:           m.CostImage,
	}, nil
}
