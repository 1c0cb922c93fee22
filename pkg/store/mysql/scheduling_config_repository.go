package mysql

import (
	"context"
	"fmt"

	"lineflow/pkg/store/mysql/model"

	"gorm.io/gorm"
)

// SchedulingConfigRepository handles per-factory scheduling configuration persistence
type SchedulingConfigRepository struct {
	ds *Datastore
}

// NewSchedulingConfigRepository creates a new scheduling config repository
func NewSchedulingConfigRepository(ds *Datastore) *SchedulingConfigRepository {
	return &SchedulingConfigRepository{ds: ds}
}

// Create creates a new scheduling configuration
func (r *SchedulingConfigRepository) Create(ctx context.Context, config *model.SchedulingConfig) error {
	return r.ds.DB(ctx).Create(config).Error
}

// Get retrieves the scheduling configuration for a factory, nil if none exists
func (r *SchedulingConfigRepository) Get(ctx context.Context, factoryID string) (*model.SchedulingConfig, error) {
	var config model.SchedulingConfig
	err := r.ds.DB(ctx).Where("factory_id = ?", factoryID).First(&config).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get scheduling config: %w", err)
	}
	return &config, nil
}

// List retrieves all scheduling configurations
func (r *SchedulingConfigRepository) List(ctx context.Context) ([]*model.SchedulingConfig, error) {
	var configs []*model.SchedulingConfig
	err := r.ds.DB(ctx).Find(&configs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduling configs: %w", err)
	}
	return configs, nil
}

// ListAdaptive retrieves all configurations with adaptive learning enabled
func (r *SchedulingConfigRepository) ListAdaptive(ctx context.Context) ([]*model.SchedulingConfig, error) {
	var configs []*model.SchedulingConfig
	err := r.ds.DB(ctx).Where("adaptive_learning_enabled = ?", true).Find(&configs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list adaptive scheduling configs: %w", err)
	}
	return configs, nil
}

// UpdateVersioned writes the configuration only if the stored version still matches
// expectedVersion, bumping the version in the same statement. Returns false when a
// concurrent writer won; the caller re-reads and retries.
func (r *SchedulingConfigRepository) UpdateVersioned(ctx context.Context, config *model.SchedulingConfig, expectedVersion int64) (bool, error) {
	config.Version = expectedVersion + 1
	res := r.ds.DB(ctx).Model(&model.SchedulingConfig{}).
		Where("factory_id = ? AND version = ?", config.FactoryID, expectedVersion).
		Select("*").Omit("id", "factory_id", "created_at").
		Updates(config)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update scheduling config: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
