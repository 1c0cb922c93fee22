package service

import (
	"context"
	"fmt"

	"lineflow/internal/model"
	"lineflow/pkg/constants"
	"lineflow/pkg/logger"
	"lineflow/pkg/store/mysql"
	mysqlModel "lineflow/pkg/store/mysql/model"
)

// ModelService manages the lifecycle of offline-trained prediction models:
// registration, metric recording, and promotion to serving.
type ModelService struct {
	versionRepo *mysql.ModelVersionRepository
}

// NewModelService creates a new model service
func NewModelService(versionRepo *mysql.ModelVersionRepository) *ModelService {
	return &ModelService{versionRepo: versionRepo}
}

// Register records a new version in TRAINING state.
func (s *ModelService) Register(ctx context.Context, req *model.RegisterModelRequest) (*mysqlModel.ModelVersion, error) {
	modelType := constants.ModelType(req.ModelType)
	valid := false
	for _, mt := range constants.AllModelTypes() {
		if mt == modelType {
			valid = true
			break
		}
	}
	if !valid {
		return nil, fmt.Errorf("unknown model type %q", req.ModelType)
	}

	mv := &mysqlModel.ModelVersion{
		FactoryID: req.FactoryID,
		ModelType: modelType,
		Version:   req.Version,
		Status:    constants.ModelStatusTraining,
	}
	if err := s.versionRepo.Create(ctx, mv); err != nil {
		return nil, err
	}
	logger.InfoCtx(ctx, "registered model version %s for factory %s type %s", req.Version, req.FactoryID, modelType)
	return mv, nil
}

// MarkTrained records training metrics and the artifact reference.
func (s *ModelService) MarkTrained(ctx context.Context, id int64, req *model.MarkTrainedRequest) error {
	return s.versionRepo.MarkTrained(ctx, id, req.RMSE, req.RSquared, req.MAE, req.SampleCount, req.ArtifactRef)
}

// Promote makes a trained version the single active one for its
// (factory, model type); the previous active version is deprecated in the
// same transaction.
func (s *ModelService) Promote(ctx context.Context, id int64) error {
	if err := s.versionRepo.Promote(ctx, id); err != nil {
		return err
	}
	logger.InfoCtx(ctx, "promoted model version %d to active", id)
	return nil
}

// ListByFactory lists every version of a factory, newest first.
func (s *ModelService) ListByFactory(ctx context.Context, factoryID string) ([]*mysqlModel.ModelVersion, error) {
	return s.versionRepo.ListByFactory(ctx, factoryID)
}
