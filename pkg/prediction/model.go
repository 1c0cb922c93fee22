package prediction

import (
	"encoding/json"
	"fmt"
	"os"

	"lineflow/pkg/constants"
)

// Model is a resolved prediction model artifact.
type Model interface {
	Predict(v Vector) float64
}

// LinearModel predicts intercept + Σ weight·feature. Both trained artifacts and
// the per-factory fallback weights evaluate through it.
type LinearModel struct {
	Intercept float64            `json:"intercept"`
	Weights   map[string]float64 `json:"weights"`
}

// Predict evaluates the linear combination; features missing from the vector
// contribute 0.
func (m *LinearModel) Predict(v Vector) float64 {
	sum := m.Intercept
	for name, w := range m.Weights {
		sum += w * v.Get(name)
	}
	return sum
}

// NewFallbackModel wraps a factory's stored fallback weights as a model.
func NewFallbackModel(weights map[string]float64) *LinearModel {
	return &LinearModel{Weights: weights}
}

// ArtifactResolver turns a model version's artifact reference into a runnable
// model. A resolution failure makes the version unusable, which downgrades the
// prediction to the linear fallback rather than failing the pipeline.
type ArtifactResolver interface {
	Resolve(ref string) (Model, error)
}

// FileArtifactResolver loads linear model artifacts stored as JSON files
// (intercept + named weights), the format the offline trainer exports.
type FileArtifactResolver struct{}

// Resolve loads and parses the artifact file.
func (FileArtifactResolver) Resolve(ref string) (Model, error) {
	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact %s: %w", ref, err)
	}
	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact %s: %w", ref, err)
	}
	return &m, nil
}

// ConfidenceFromR2 maps a model's R² to the qualitative confidence tier.
func ConfidenceFromR2(r2 float64) constants.Confidence {
	switch {
	case r2 >= 0.8:
		return constants.ConfidenceHigh
	case r2 >= 0.6:
		return constants.ConfidenceMedium
	default:
		return constants.ConfidenceLow
	}
}
