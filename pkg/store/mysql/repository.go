package mysql

// Repository aggregates all MySQL repositories
type Repository struct {
	ds *Datastore

	SchedulingConfig *SchedulingConfigRepository
	WorkerProfile    *WorkerProfileRepository
	Plan             *PlanRepository
	Assignment       *AssignmentRepository
	ModelVersion     *ModelVersionRepository
	PredictionWeight *PredictionWeightRepository
	Prediction       *PredictionRepository
	TrainingData     *TrainingDataRepository
	WeightHistory    *WeightHistoryRepository
	Alert            *AlertRepository
}

// NewRepository creates a new MySQL repository with all sub-repositories
func NewRepository(dsn string) (*Repository, error) {
	ds, err := NewDatastore(dsn)
	if err != nil {
		return nil, err
	}

	return &Repository{
		ds:               ds,
		SchedulingConfig: NewSchedulingConfigRepository(ds),
		WorkerProfile:    NewWorkerProfileRepository(ds),
		Plan:             NewPlanRepository(ds),
		Assignment:       NewAssignmentRepository(ds),
		ModelVersion:     NewModelVersionRepository(ds),
		PredictionWeight: NewPredictionWeightRepository(ds),
		Prediction:       NewPredictionRepository(ds),
		TrainingData:     NewTrainingDataRepository(ds),
		WeightHistory:    NewWeightHistoryRepository(ds),
		Alert:            NewAlertRepository(ds),
	}, nil
}

// GetDatastore returns the underlying datastore for transaction support
func (r *Repository) GetDatastore() *Datastore {
	return r.ds
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.ds.Close()
}
