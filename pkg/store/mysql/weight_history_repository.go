package mysql

import (
	"context"
	"fmt"

	"lineflow/pkg/store/mysql/model"

	"gorm.io/gorm"
)

// WeightHistoryRepository handles the append-only weight adaptation audit trail
type WeightHistoryRepository struct {
	ds *Datastore
}

// NewWeightHistoryRepository creates a new weight history repository
func NewWeightHistoryRepository(ds *Datastore) *WeightHistoryRepository {
	return &WeightHistoryRepository{ds: ds}
}

// Append records one adaptation event
func (r *WeightHistoryRepository) Append(ctx context.Context, history *model.WeightHistory) error {
	return r.ds.DB(ctx).Create(history).Error
}

// ListByFactory retrieves adaptation events for a factory, newest first
func (r *WeightHistoryRepository) ListByFactory(ctx context.Context, factoryID string, limit int) ([]*model.WeightHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	var histories []*model.WeightHistory
	err := r.ds.DB(ctx).Where("factory_id = ?", factoryID).
		Order("created_at DESC").Limit(limit).Find(&histories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list weight history: %w", err)
	}
	return histories, nil
}

// Latest retrieves the most recent adaptation event for a factory, nil if none.
// Its timestamp is the "since the last adaptation" boundary for the sample gate.
func (r *WeightHistoryRepository) Latest(ctx context.Context, factoryID string) (*model.WeightHistory, error) {
	var history model.WeightHistory
	err := r.ds.DB(ctx).Where("factory_id = ?", factoryID).
		Order("created_at DESC").First(&history).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest weight history: %w", err)
	}
	return &history, nil
}
