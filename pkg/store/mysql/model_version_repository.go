package mysql

import (
	"context"
	"fmt"
	"time"

	"lineflow/pkg/constants"
	"lineflow/pkg/store/mysql/model"

	"gorm.io/gorm"
)

// ModelVersionRepository handles trained model version persistence
type ModelVersionRepository struct {
	ds *Datastore
}

// NewModelVersionRepository creates a new model version repository
func NewModelVersionRepository(ds *Datastore) *ModelVersionRepository {
	return &ModelVersionRepository{ds: ds}
}

// Create registers a new model version (typically status TRAINING or TRAINED, inactive)
func (r *ModelVersionRepository) Create(ctx context.Context, mv *model.ModelVersion) error {
	return r.ds.DB(ctx).Create(mv).Error
}

// Get retrieves a model version by ID, nil if none exists
func (r *ModelVersionRepository) Get(ctx context.Context, id int64) (*model.ModelVersion, error) {
	var mv model.ModelVersion
	err := r.ds.DB(ctx).Where("id = ?", id).First(&mv).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get model version: %w", err)
	}
	return &mv, nil
}

// GetActive retrieves the single active version for (factory, model_type), nil if none
func (r *ModelVersionRepository) GetActive(ctx context.Context, factoryID string, modelType constants.ModelType) (*model.ModelVersion, error) {
	var mv model.ModelVersion
	err := r.ds.DB(ctx).
		Where("factory_id = ? AND model_type = ? AND active = ?", factoryID, modelType, true).
		First(&mv).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active model version: %w", err)
	}
	return &mv, nil
}

// ListByFactory retrieves all versions for a factory, newest first
func (r *ModelVersionRepository) ListByFactory(ctx context.Context, factoryID string) ([]*model.ModelVersion, error) {
	var versions []*model.ModelVersion
	err := r.ds.DB(ctx).Where("factory_id = ?", factoryID).
		Order("created_at DESC").Find(&versions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list model versions: %w", err)
	}
	return versions, nil
}

// Promote atomically makes the given version the active one for its
// (factory, model_type): the previous active version is demoted to DEPRECATED in
// the same transaction, so the unique index on (factory, model_type, active)
// never sees two active rows.
func (r *ModelVersionRepository) Promote(ctx context.Context, id int64) error {
	return r.ds.ExecTx(ctx, func(txCtx context.Context) error {
		var mv model.ModelVersion
		if err := r.ds.DB(txCtx).Where("id = ?", id).First(&mv).Error; err != nil {
			return fmt.Errorf("model version %d not found: %w", id, err)
		}
		if mv.Status != constants.ModelStatusTrained {
			return fmt.Errorf("model version %d is %s, only trained models can be promoted", id, mv.Status)
		}

		// Demote current active version, if any
		err := r.ds.DB(txCtx).Model(&model.ModelVersion{}).
			Where("factory_id = ? AND model_type = ? AND active = ?", mv.FactoryID, mv.ModelType, true).
			Updates(map[string]interface{}{
				"active": nil,
				"status": constants.ModelStatusDeprecated,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to demote active model version: %w", err)
		}

		now := time.Now()
		active := true
		err = r.ds.DB(txCtx).Model(&model.ModelVersion{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"active":      &active,
				"promoted_at": &now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to promote model version: %w", err)
		}
		return nil
	})
}

// MarkTrained records training completion with its metrics
func (r *ModelVersionRepository) MarkTrained(ctx context.Context, id int64, rmse, rSquared, mae float64, sampleCount int, artifactRef string) error {
	now := time.Now()
	return r.ds.DB(ctx).Model(&model.ModelVersion{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       constants.ModelStatusTrained,
			"rmse":         rmse,
			"r_squared":    rSquared,
			"mae":          mae,
			"sample_count": sampleCount,
			"artifact_ref": artifactRef,
			"trained_at":   &now,
		}).Error
}
