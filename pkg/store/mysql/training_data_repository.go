package mysql

import (
	"context"
	"fmt"
	"time"

	"lineflow/pkg/store/mysql/model"
)

// TrainingDataRepository handles the immutable training corpus.
// Append and read only: there is deliberately no update or delete method.
type TrainingDataRepository struct {
	ds *Datastore
}

// NewTrainingDataRepository creates a new training data repository
func NewTrainingDataRepository(ds *Datastore) *TrainingDataRepository {
	return &TrainingDataRepository{ds: ds}
}

// Append adds one completed-batch sample. The unique index on batch_id makes
// re-delivered completion events idempotent.
func (r *TrainingDataRepository) Append(ctx context.Context, record *model.TrainingDataRecord) error {
	return r.ds.DB(ctx).Create(record).Error
}

// CountSince counts samples for a factory created after the given time
func (r *TrainingDataRepository) CountSince(ctx context.Context, factoryID string, since time.Time) (int64, error) {
	var count int64
	err := r.ds.DB(ctx).Model(&model.TrainingDataRecord{}).
		Where("factory_id = ? AND created_at > ?", factoryID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count training records: %w", err)
	}
	return count, nil
}

// ListSince retrieves samples for a factory created after the given time, oldest first
func (r *TrainingDataRepository) ListSince(ctx context.Context, factoryID string, since time.Time) ([]*model.TrainingDataRecord, error) {
	var records []*model.TrainingDataRecord
	err := r.ds.DB(ctx).
		Where("factory_id = ? AND created_at > ?", factoryID, since).
		Order("created_at").Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list training records: %w", err)
	}
	return records, nil
}

// ListRecent retrieves the latest n samples for a factory, newest first.
// Feeds the consecutive-anomaly check of the adaptive tuner.
func (r *TrainingDataRepository) ListRecent(ctx context.Context, factoryID string, n int) ([]*model.TrainingDataRecord, error) {
	var records []*model.TrainingDataRecord
	err := r.ds.DB(ctx).
		Where("factory_id = ?", factoryID).
		Order("created_at DESC").Limit(n).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent training records: %w", err)
	}
	return records, nil
}
