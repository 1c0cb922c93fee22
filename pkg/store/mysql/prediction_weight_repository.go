package mysql

import (
	"context"
	"fmt"

	"lineflow/pkg/constants"
	"lineflow/pkg/store/mysql/model"

	"gorm.io/gorm/clause"
)

// PredictionWeightRepository handles fallback linear model weight persistence
type PredictionWeightRepository struct {
	ds *Datastore
}

// NewPredictionWeightRepository creates a new prediction weight repository
func NewPredictionWeightRepository(ds *Datastore) *PredictionWeightRepository {
	return &PredictionWeightRepository{ds: ds}
}

// GetWeights retrieves the fallback linear weights for (factory, model_type) as a
// feature name -> weight map. An empty map means no fallback has been configured.
func (r *PredictionWeightRepository) GetWeights(ctx context.Context, factoryID string, modelType constants.ModelType) (map[string]float64, error) {
	var rows []*model.PredictionModelWeight
	err := r.ds.DB(ctx).
		Where("factory_id = ? AND model_type = ?", factoryID, modelType).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction weights: %w", err)
	}

	weights := make(map[string]float64, len(rows))
	for _, row := range rows {
		weights[row.FeatureName] = row.Weight
	}
	return weights, nil
}

// SetWeights replaces the weight set for (factory, model_type) via upsert
func (r *PredictionWeightRepository) SetWeights(ctx context.Context, factoryID string, modelType constants.ModelType, weights map[string]float64) error {
	if len(weights) == 0 {
		return nil
	}

	rows := make([]*model.PredictionModelWeight, 0, len(weights))
	for name, w := range weights {
		rows = append(rows, &model.PredictionModelWeight{
			FactoryID:   factoryID,
			ModelType:   modelType,
			FeatureName: name,
			Weight:      w,
		})
	}

	return r.ds.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "factory_id"}, {Name: "model_type"}, {Name: "feature_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"weight"}),
	}).Create(rows).Error
}
