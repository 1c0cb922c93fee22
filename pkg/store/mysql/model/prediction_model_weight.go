package model

import (
	"time"

	"lineflow/pkg/constants"
)

// PredictionModelWeight MySQL model for prediction_model_weights table.
// Fallback linear feature weights used when no usable trained model exists
// for a (factory, model_type) pair.
type PredictionModelWeight struct {
	ID          int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	FactoryID   string              `gorm:"column:factory_id;type:varchar(64);not null;uniqueIndex:idx_factory_type_feature" json:"factory_id"`
	ModelType   constants.ModelType `gorm:"column:model_type;type:varchar(20);not null;uniqueIndex:idx_factory_type_feature" json:"model_type"`
	FeatureName string              `gorm:"column:feature_name;type:varchar(64);not null;uniqueIndex:idx_factory_type_feature" json:"feature_name"`
	Weight      float64             `gorm:"column:weight;type:double;not null;default:0" json:"weight"`

	CreatedAt time.Time `gorm:"column:created_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"updated_at"`
}

// TableName specifies the table name for PredictionModelWeight
func (PredictionModelWeight) TableName() string {
	return "prediction_model_weights"
}
