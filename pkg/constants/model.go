package constants

// ModelType prediction target of a trained model
type ModelType string

const (
	ModelTypeEfficiency     ModelType = "EFFICIENCY"
	ModelTypeDuration       ModelType = "DURATION"
	ModelTypeCompletionProb ModelType = "COMPLETION_PROB"
	ModelTypeQuality        ModelType = "QUALITY"
)

func (t ModelType) String() string {
	return string(t)
}

// AllModelTypes lists every prediction target, in the order predictions are produced.
func AllModelTypes() []ModelType {
	return []ModelType{ModelTypeEfficiency, ModelTypeDuration, ModelTypeCompletionProb, ModelTypeQuality}
}

// ModelStatus training lifecycle of a model version
type ModelStatus string

const (
	ModelStatusTraining   ModelStatus = "TRAINING"
	ModelStatusTrained    ModelStatus = "TRAINED"
	ModelStatusFailed     ModelStatus = "FAILED"
	ModelStatusDeprecated ModelStatus = "DEPRECATED"
)

func (s ModelStatus) String() string {
	return string(s)
}

// Confidence qualitative confidence of a prediction, derived from model R²
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

func (c Confidence) String() string {
	return string(c)
}
