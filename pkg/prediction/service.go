package prediction

import (
	"context"

	"lineflow/pkg/constants"
	"lineflow/pkg/logger"
	"lineflow/pkg/store/mysql/model"
)

// FallbackVersionName is recorded as the model version when the linear
// fallback served a prediction.
const FallbackVersionName = "linear-fallback"

// VersionSource provides the active model version per (factory, model type).
type VersionSource interface {
	GetActive(ctx context.Context, factoryID string, modelType constants.ModelType) (*model.ModelVersion, error)
}

// WeightSource provides the factory's fallback linear weights per model type.
type WeightSource interface {
	GetWeights(ctx context.Context, factoryID string, modelType constants.ModelType) (map[string]float64, error)
}

// Result is one forecast value with its provenance.
type Result struct {
	ModelType    constants.ModelType  `json:"model_type"`
	Value        float64              `json:"value"`
	Confidence   constants.Confidence `json:"confidence"`
	ModelVersion string               `json:"model_version"`
	Fallback     bool                 `json:"fallback"`
}

// Service forecasts efficiency, duration, completion probability and quality
// for planned assignments. Pure with respect to its stores: safe to invoke
// concurrently for independent plans. Predictions are advisory and never block
// plan commitment.
type Service struct {
	versions  VersionSource
	weights   WeightSource
	artifacts ArtifactResolver
}

// NewService creates a prediction service.
func NewService(versions VersionSource, weights WeightSource, artifacts ArtifactResolver) *Service {
	return &Service{versions: versions, weights: weights, artifacts: artifacts}
}

// Predict produces one Result per model type for the feature vector. Every
// degradation path lands on the linear fallback with low confidence; the only
// errors surfaced are store failures.
func (s *Service) Predict(ctx context.Context, factoryID string, v Vector) ([]Result, error) {
	results := make([]Result, 0, len(constants.AllModelTypes()))
	for _, mt := range constants.AllModelTypes() {
		r, err := s.predictOne(ctx, factoryID, mt, v)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *Service) predictOne(ctx context.Context, factoryID string, mt constants.ModelType, v Vector) (Result, error) {
	mv, err := s.versions.GetActive(ctx, factoryID, mt)
	if err != nil {
		return Result{}, err
	}

	if mv.Usable() {
		m, resolveErr := s.artifacts.Resolve(mv.ArtifactRef)
		if resolveErr == nil {
			return Result{
				ModelType:    mt,
				Value:        m.Predict(v),
				Confidence:   ConfidenceFromR2(mv.RSquared),
				ModelVersion: mv.Version,
			}, nil
		}
		logger.WarnCtx(ctx, "model artifact %s unresolvable for factory %s type %s, using linear fallback: %v",
			mv.ArtifactRef, factoryID, mt, resolveErr)
	}

	weights, err := s.weights.GetWeights(ctx, factoryID, mt)
	if err != nil {
		return Result{}, err
	}

	return Result{
		ModelType:    mt,
		Value:        NewFallbackModel(weights).Predict(v),
		Confidence:   constants.ConfidenceLow, // the fallback always reports low
		ModelVersion: FallbackVersionName,
		Fallback:     true,
	}, nil
}
