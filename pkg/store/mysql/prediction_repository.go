package mysql

import (
	"context"
	"fmt"

	"lineflow/pkg/store/mysql/model"

	"gorm.io/gorm/clause"
)

// PredictionRepository handles stored assignment prediction persistence
type PredictionRepository struct {
	ds *Datastore
}

// NewPredictionRepository creates a new prediction repository
func NewPredictionRepository(ds *Datastore) *PredictionRepository {
	return &PredictionRepository{ds: ds}
}

// SaveBatch upserts predictions; plan rebuilds overwrite prior rows per
// (assignment, model_type) instead of accumulating duplicates.
func (r *PredictionRepository) SaveBatch(ctx context.Context, predictions []*model.AssignmentPrediction) error {
	if len(predictions) == 0 {
		return nil
	}
	return r.ds.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "model_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "confidence", "model_version"}),
	}).Create(predictions).Error
}

// ListByAssignment retrieves all predictions for one assignment
func (r *PredictionRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]*model.AssignmentPrediction, error) {
	var predictions []*model.AssignmentPrediction
	err := r.ds.DB(ctx).Where("assignment_id = ?", assignmentID).
		Order("model_type").Find(&predictions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions by assignment: %w", err)
	}
	return predictions, nil
}

// ListBySchedule retrieves all predictions belonging to one line schedule
func (r *PredictionRepository) ListBySchedule(ctx context.Context, scheduleID string) ([]*model.AssignmentPrediction, error) {
	var predictions []*model.AssignmentPrediction
	err := r.ds.DB(ctx).Where("line_schedule_id = ?", scheduleID).
		Order("assignment_id, model_type").Find(&predictions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions by schedule: %w", err)
	}
	return predictions, nil
}
