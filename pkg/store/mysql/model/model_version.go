package model

import (
	"time"

	"lineflow/pkg/constants"
)

// ModelVersion MySQL model for model_versions table.
// At most one active version per (factory, model_type); superseded versions are
// deprecated, never deleted. Active is nullable so the partial unique index only
// applies to rows where it is set.
type ModelVersion struct {
	ID        int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	FactoryID string              `gorm:"column:factory_id;type:varchar(64);not null;uniqueIndex:idx_factory_type_active" json:"factory_id"`
	ModelType constants.ModelType `gorm:"column:model_type;type:varchar(20);not null;uniqueIndex:idx_factory_type_active" json:"model_type"`
	Version   string              `gorm:"column:version;type:varchar(64);not null" json:"version"`

	Status constants.ModelStatus `gorm:"column:status;type:varchar(20);not null;default:'TRAINING'" json:"status"`

	// nil for inactive rows, true for the single active row; MySQL treats NULLs as
	// distinct in unique indexes, which enforces the one-active invariant
	Active *bool `gorm:"column:active;type:boolean;uniqueIndex:idx_factory_type_active" json:"active,omitempty"`

	// Training metrics
	RMSE     float64 `gorm:"column:rmse;type:double;not null;default:0" json:"rmse"`
	RSquared float64 `gorm:"column:r_squared;type:double;not null;default:0" json:"r_squared"`
	MAE      float64 `gorm:"column:mae;type:double;not null;default:0" json:"mae"`

	SampleCount int    `gorm:"column:sample_count;type:int;not null;default:0" json:"sample_count"`
	ArtifactRef string `gorm:"column:artifact_ref;type:varchar(512)" json:"artifact_ref"`

	TrainedAt  *time.Time `gorm:"column:trained_at;type:datetime(3)" json:"trained_at,omitempty"`
	PromotedAt *time.Time `gorm:"column:promoted_at;type:datetime(3)" json:"promoted_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:datetime(3);not null;default:CURRENT_TIMESTAMP(3)" json:"updated_at"`
}

// TableName specifies the table name for ModelVersion
func (ModelVersion) TableName() string {
	return "model_versions"
}

// Usable reports whether this version may serve predictions: it must be the
// active version, fully trained, and carry a resolvable artifact reference.
func (m *ModelVersion) Usable() bool {
	return m != nil && m.Active != nil && *m.Active &&
		m.Status == constants.ModelStatusTrained && m.ArtifactRef != ""
}
