package model

// ConfigOverrideRequest is a partial admin update of a factory's scheduling
// configuration. Nil fields are left untouched. Version must match the stored
// row; a stale version is rejected so an override never clobbers a concurrent
// adaptation.
type ConfigOverrideRequest struct {
	LinUCBWeight           *float64 `json:"linucb_weight,omitempty"`
	FairnessWeight         *float64 `json:"fairness_weight,omitempty"`
	SkillMaintenanceWeight *float64 `json:"skill_maintenance_weight,omitempty"`
	RepetitionWeight       *float64 `json:"repetition_weight,omitempty"`
	SKUComplexityWeight    *float64 `json:"sku_complexity_weight,omitempty"`

	ExplorationAlpha *float64 `json:"exploration_alpha,omitempty"`

	AdaptiveLearningEnabled *bool    `json:"adaptive_learning_enabled,omitempty"`
	LearningRate            *float64 `json:"learning_rate,omitempty"`
	EfficiencyTarget        *float64 `json:"efficiency_target,omitempty"`
	DiversityTarget         *float64 `json:"diversity_target,omitempty"`

	Version int64  `json:"version"`
	Actor   string `json:"actor" binding:"required"`
}

// RegisterModelRequest registers a new offline-trained model version.
type RegisterModelRequest struct {
	FactoryID string `json:"factory_id" binding:"required"`
	ModelType string `json:"model_type" binding:"required"`
	Version   string `json:"version" binding:"required"`
}

// MarkTrainedRequest records training metrics and the artifact for a version.
type MarkTrainedRequest struct {
	RMSE        float64 `json:"rmse"`
	RSquared    float64 `json:"r_squared"`
	MAE         float64 `json:"mae"`
	SampleCount int     `json:"sample_count"`
	ArtifactRef string  `json:"artifact_ref" binding:"required"`
}
