package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/worldforge/worldforge/internal/application/worldflow"
	"github.com/worldforge/worldforge/internal/infrastructure/storage/models"
)

var _ worldflow.JournalStore = (*JournalRepository)(nil)

// JournalRepository implements worldflow.JournalStore using Bun ORM against
// the workflow_journal collection.
type JournalRepository struct {
	db *bun.DB
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(db *bun.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

func (r *JournalRepository) Get(ctx context.Context, instanceID string, seq int) (*worldflow.JournalEntry, bool, error) {
	m := new(models.JournalModel)
	err := r.db.NewSelect().
		Model(m).
		Where("instance_id = ?", instanceID).
		Where("sequence_no = ?", seq).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get journal entry: %w", err)
	}

	return &worldflow.JournalEntry{
		InstanceID:   m.InstanceID,
		SequenceNo:   m.SequenceNo,
		ActivityName: m.ActivityName,
		ResultJSON:   m.ResultJSON,
		CreatedAt:    m.CreatedAt,
	}, true, nil
}

func (r *JournalRepository) Put(ctx context.Context, entry worldflow.JournalEntry) error {
	m := &models.JournalModel{
		InstanceID:   entry.InstanceID,
		SequenceNo:   entry.SequenceNo,
		ActivityName: entry.ActivityName,
		ResultJSON:   entry.ResultJSON,
		CreatedAt:    entry.CreatedAt,
	}

	_, err := r.db.NewInsert().
		Model(m).
		On("CONFLICT (instance_id, sequence_no) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("put journal entry: %w", err)
	}
	return nil
}
