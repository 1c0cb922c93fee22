package mysql

import (
	"context"
	"fmt"

	"lineflow/pkg/store/mysql/model"

	"gorm.io/gorm"
)

// WorkerProfileRepository handles worker profile persistence
type WorkerProfileRepository struct {
	ds *Datastore
}

// NewWorkerProfileRepository creates a new worker profile repository
func NewWorkerProfileRepository(ds *Datastore) *WorkerProfileRepository {
	return &WorkerProfileRepository{ds: ds}
}

// Create creates a new worker profile
func (r *WorkerProfileRepository) Create(ctx context.Context, profile *model.WorkerProfile) error {
	return r.ds.DB(ctx).Create(profile).Error
}

// Get retrieves a worker profile by worker ID, nil if none exists
func (r *WorkerProfileRepository) Get(ctx context.Context, workerID string) (*model.WorkerProfile, error) {
	var profile model.WorkerProfile
	err := r.ds.DB(ctx).Where("worker_id = ?", workerID).First(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get worker profile: %w", err)
	}
	return &profile, nil
}

// ListByFactory retrieves all worker profiles for a factory
func (r *WorkerProfileRepository) ListByFactory(ctx context.Context, factoryID string) ([]*model.WorkerProfile, error) {
	var profiles []*model.WorkerProfile
	err := r.ds.DB(ctx).Where("factory_id = ?", factoryID).Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list worker profiles: %w", err)
	}
	return profiles, nil
}

// UpdateSkill updates a worker's skill level and reliability after a completed assignment
func (r *WorkerProfileRepository) UpdateSkill(ctx context.Context, workerID string, skillLevel, reliabilityScore float64) error {
	return r.ds.DB(ctx).Model(&model.WorkerProfile{}).
		Where("worker_id = ?", workerID).
		Updates(map[string]interface{}{
			"skill_level":       skillLevel,
			"reliability_score": reliabilityScore,
		}).Error
}

// MakePermanent transitions a temp worker to permanent. The transition is terminal:
// rows already permanent are left untouched.
func (r *WorkerProfileRepository) MakePermanent(ctx context.Context, workerID string) error {
	return r.ds.DB(ctx).Model(&model.WorkerProfile{}).
		Where("worker_id = ? AND is_temp = ?", workerID, true).
		Updates(map[string]interface{}{
			"is_temp":           false,
			"expected_end_date": nil,
		}).Error
}
