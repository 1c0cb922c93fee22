package jobs

import (
	"context"

	"lineflow/pkg/logger"
	"lineflow/pkg/store/mysql"
	"lineflow/pkg/tuner"
)

// TunerJob runs one adaptation cycle for every factory with adaptive learning
// enabled. Factories adapt independently; one failing factory never blocks
// the others.
type TunerJob struct {
	spec       string
	configRepo *mysql.SchedulingConfigRepository
	tuner      *tuner.Tuner
}

// NewTunerJob creates the scheduled adaptation job
func NewTunerJob(cronSpec string, configRepo *mysql.SchedulingConfigRepository, weightTuner *tuner.Tuner) *TunerJob {
	return &TunerJob{spec: cronSpec, configRepo: configRepo, tuner: weightTuner}
}

func (j *TunerJob) Name() string { return "weight-adaptation" }

func (j *TunerJob) CronSpec() string { return j.spec }

func (j *TunerJob) Run(ctx context.Context) error {
	configs, err := j.configRepo.ListAdaptive(ctx)
	if err != nil {
		return err
	}

	for _, cfg := range configs {
		if err := j.tuner.AdaptCycle(ctx, cfg.FactoryID); err != nil {
			logger.ErrorCtx(ctx, "adaptation cycle failed for factory %s: %v", cfg.FactoryID, err)
		}
	}
	return nil
}
