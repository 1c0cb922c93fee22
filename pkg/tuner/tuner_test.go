package tuner

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lineflow/pkg/lock"
	"lineflow/pkg/store/mysql/model"
)

type fakeLock struct {
	held    bool
	granted bool
}

func (f *fakeLock) TryLock(ctx context.Context) (bool, error) {
	if f.granted {
		f.held = true
	}
	return f.granted, nil
}

func (f *fakeLock) Unlock(ctx context.Context) error {
	f.held = false
	return nil
}

func (f *fakeLock) IsHeld() bool { return f.held }

type fakeConfigStore struct {
	cfg       *model.SchedulingConfig
	conflicts int // number of UpdateVersioned calls rejected before success
	updates   int
}

func (f *fakeConfigStore) Get(ctx context.Context, factoryID string) (*model.SchedulingConfig, error) {
	if f.cfg == nil {
		return nil, nil
	}
	copied := *f.cfg
	return &copied, nil
}

func (f *fakeConfigStore) UpdateVersioned(ctx context.Context, config *model.SchedulingConfig, expectedVersion int64) (bool, error) {
	f.updates++
	if f.conflicts > 0 {
		f.conflicts--
		f.cfg.Version++ // someone else won the race
		return false, nil
	}
	updated := *config
	updated.Version = expectedVersion + 1
	f.cfg = &updated
	return true, nil
}

type fakeTrainingStore struct {
	records []*model.TrainingDataRecord
}

func (f *fakeTrainingStore) CountSince(ctx context.Context, factoryID string, since time.Time) (int64, error) {
	return int64(len(f.records)), nil
}

func (f *fakeTrainingStore) ListSince(ctx context.Context, factoryID string, since time.Time) ([]*model.TrainingDataRecord, error) {
	return f.records, nil
}

type fakeHistoryStore struct {
	appended []*model.WeightHistory
	latest   *model.WeightHistory
}

func (f *fakeHistoryStore) Append(ctx context.Context, history *model.WeightHistory) error {
	f.appended = append(f.appended, history)
	return nil
}

func (f *fakeHistoryStore) Latest(ctx context.Context, factoryID string) (*model.WeightHistory, error) {
	return f.latest, nil
}

type fakeAssignmentSource struct {
	assignments []*model.WorkerAssignment
}

func (f *fakeAssignmentSource) ListRecentByFactory(ctx context.Context, factoryID string, since time.Time) ([]*model.WorkerAssignment, error) {
	return f.assignments, nil
}

type fakeAlertRaiser struct {
	raised []float64
}

func (f *fakeAlertRaiser) RaiseEfficiencyDrop(ctx context.Context, factoryID string, avgEfficiency float64, sampleCount int) error {
	f.raised = append(f.raised, avgEfficiency)
	return nil
}

func adaptiveConfig() *model.SchedulingConfig {
	return &model.SchedulingConfig{
		FactoryID:              "f1",
		LinUCBWeight:           0.60,
		FairnessWeight:         0.15,
		SkillMaintenanceWeight: 0.10,
		RepetitionWeight:       0.10,
		SKUComplexityWeight:    0.05,
		WeightMin:              0.01,
		WeightMax:              0.95,

		AdaptiveLearningEnabled:    true,
		LearningRate:               0.02,
		MinSamplesForAdaptation:    3,
		EfficiencyTarget:           0.85,
		DiversityTarget:            0.6,
		EfficiencyAnomalyThreshold: 0.50,
		AnomalyCountForCalibration: 3,
	}
}

func records(efficiencies ...float64) []*model.TrainingDataRecord {
	out := make([]*model.TrainingDataRecord, len(efficiencies))
	for i, e := range efficiencies {
		out[i] = &model.TrainingDataRecord{FactoryID: "f1", ActualEfficiency: e}
	}
	return out
}

// evenSpread yields a perfectly even assignment distribution so DiversityIndex
// is 1 and never triggers adjustments in these tests.
func evenSpread() []*model.WorkerAssignment {
	return []*model.WorkerAssignment{
		{WorkerID: "w1"}, {WorkerID: "w2"}, {WorkerID: "w3"},
		{WorkerID: "w1"}, {WorkerID: "w2"}, {WorkerID: "w3"},
	}
}

func newTestTuner(configs *fakeConfigStore, training *fakeTrainingStore, histories *fakeHistoryStore,
	assignments *fakeAssignmentSource, alerts *fakeAlertRaiser, grantLock bool) *Tuner {
	return NewTuner(configs, training, histories, assignments, alerts,
		func(factoryID string) lock.DistributedLock { return &fakeLock{granted: grantLock} })
}

func TestAdaptCycleNudgesWeightsBelowEfficiencyTarget(t *testing.T) {
	configs := &fakeConfigStore{cfg: adaptiveConfig()}
	histories := &fakeHistoryStore{}
	tn := newTestTuner(configs, &fakeTrainingStore{records: records(0.7, 0.72, 0.68)},
		histories, &fakeAssignmentSource{assignments: evenSpread()}, &fakeAlertRaiser{}, true)

	err := tn.AdaptCycle(context.Background(), "f1")

	assert.NoError(t, err)
	assert.InDelta(t, 0.62, configs.cfg.LinUCBWeight, 1e-9)
	assert.InDelta(t, 0.13, configs.cfg.FairnessWeight, 1e-9)
	assert.InDelta(t, 0.07, configs.cfg.SKUComplexityWeight, 1e-9)
	assert.Equal(t, int64(1), configs.cfg.Version)

	if assert.Len(t, histories.appended, 1) {
		h := histories.appended[0]
		assert.Equal(t, "below_efficiency_target", h.TriggerReason)
		assert.Equal(t, 3, h.SampleCount)
		assert.InDelta(t, 0.7, h.AvgEfficiency, 0.01)
		var before, after WeightSet
		assert.NoError(t, json.Unmarshal([]byte(h.WeightsBefore), &before))
		assert.NoError(t, json.Unmarshal([]byte(h.WeightsAfter), &after))
		assert.InDelta(t, 0.60, before.LinUCB, 1e-9)
		assert.InDelta(t, 0.62, after.LinUCB, 1e-9)
	}
}

func TestAdaptCycleNoOpWhenOnTarget(t *testing.T) {
	configs := &fakeConfigStore{cfg: adaptiveConfig()}
	histories := &fakeHistoryStore{}
	tn := newTestTuner(configs, &fakeTrainingStore{records: records(0.9, 0.88, 0.92)},
		histories, &fakeAssignmentSource{assignments: evenSpread()}, &fakeAlertRaiser{}, true)

	err := tn.AdaptCycle(context.Background(), "f1")

	assert.NoError(t, err)
	assert.Equal(t, 0, configs.updates)
	assert.Empty(t, histories.appended)
}

func TestAdaptCycleSkipsThinSampleWindow(t *testing.T) {
	configs := &fakeConfigStore{cfg: adaptiveConfig()}
	histories := &fakeHistoryStore{}
	tn := newTestTuner(configs, &fakeTrainingStore{records: records(0.5, 0.5)},
		histories, &fakeAssignmentSource{}, &fakeAlertRaiser{}, true)

	err := tn.AdaptCycle(context.Background(), "f1")

	assert.NoError(t, err)
	assert.Equal(t, 0, configs.updates)
}

func TestAdaptCycleSkipsWhenDisabled(t *testing.T) {
	cfg := adaptiveConfig()
	cfg.AdaptiveLearningEnabled = false
	configs := &fakeConfigStore{cfg: cfg}
	tn := newTestTuner(configs, &fakeTrainingStore{records: records(0.5, 0.5, 0.5)},
		&fakeHistoryStore{}, &fakeAssignmentSource{}, &fakeAlertRaiser{}, true)

	err := tn.AdaptCycle(context.Background(), "f1")

	assert.NoError(t, err)
	assert.Equal(t, 0, configs.updates)
}

func TestAdaptCycleSkipsWhenLockContended(t *testing.T) {
	configs := &fakeConfigStore{cfg: adaptiveConfig()}
	tn := newTestTuner(configs, &fakeTrainingStore{records: records(0.5, 0.5, 0.5)},
		&fakeHistoryStore{}, &fakeAssignmentSource{}, &fakeAlertRaiser{}, false)

	err := tn.AdaptCycle(context.Background(), "f1")

	assert.NoError(t, err)
	assert.Equal(t, 0, configs.updates)
}

func TestAdaptCycleRetriesVersionConflict(t *testing.T) {
	configs := &fakeConfigStore{cfg: adaptiveConfig(), conflicts: 2}
	histories := &fakeHistoryStore{}
	tn := newTestTuner(configs, &fakeTrainingStore{records: records(0.7, 0.72, 0.68)},
		histories, &fakeAssignmentSource{assignments: evenSpread()}, &fakeAlertRaiser{}, true)

	err := tn.AdaptCycle(context.Background(), "f1")

	assert.NoError(t, err)
	assert.Equal(t, 3, configs.updates)
	assert.Len(t, histories.appended, 1)
	assert.InDelta(t, 0.62, configs.cfg.LinUCBWeight, 1e-9)
}

func TestAdaptCycleGivesUpAfterRepeatedConflicts(t *testing.T) {
	configs := &fakeConfigStore{cfg: adaptiveConfig(), conflicts: 10}
	histories := &fakeHistoryStore{}
	tn := newTestTuner(configs, &fakeTrainingStore{records: records(0.7, 0.72, 0.68)},
		histories, &fakeAssignmentSource{assignments: evenSpread()}, &fakeAlertRaiser{}, true)

	err := tn.AdaptCycle(context.Background(), "f1")

	// Deferring to the next cycle is not an error, and no audit row is
	// written for an adjustment that never landed
	assert.NoError(t, err)
	assert.Equal(t, updateRetries, configs.updates)
	assert.Empty(t, histories.appended)
}

func TestOnBatchCompletedAnomalyForcesRecalibration(t *testing.T) {
	configs := &fakeConfigStore{cfg: adaptiveConfig()}
	histories := &fakeHistoryStore{}
	alerts := &fakeAlertRaiser{}
	// Two healthy batches, then three consecutive below the 0.50 threshold
	training := &fakeTrainingStore{records: records(0.8, 0.9, 0.4, 0.35, 0.3)}
	tn := newTestTuner(configs, training, histories, &fakeAssignmentSource{assignments: evenSpread()}, alerts, true)

	err := tn.OnBatchCompleted(context.Background(), "f1")

	assert.NoError(t, err)
	if assert.Len(t, histories.appended, 1) {
		assert.Contains(t, histories.appended[0].TriggerReason, "anomaly_recalibration")
		assert.Equal(t, 3, histories.appended[0].SampleCount)
		assert.InDelta(t, 0.35, histories.appended[0].AvgEfficiency, 0.01)
	}
	if assert.Len(t, alerts.raised, 1) {
		assert.InDelta(t, 0.35, alerts.raised[0], 0.01)
	}
	// Forced recalibration leans toward exploitation
	assert.Greater(t, configs.cfg.LinUCBWeight, 0.60)
}

func TestOnBatchCompletedNoAnomalyWhileRunIsBroken(t *testing.T) {
	tests := []struct {
		name    string
		records []*model.TrainingDataRecord
	}{
		{name: "too few batches", records: records(0.3, 0.3)},
		{name: "healthy batch inside the tail", records: records(0.3, 0.3, 0.7)},
		{name: "only older batches low", records: records(0.3, 0.3, 0.3, 0.9, 0.8, 0.7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configs := &fakeConfigStore{cfg: adaptiveConfig()}
			histories := &fakeHistoryStore{}
			alerts := &fakeAlertRaiser{}
			tn := newTestTuner(configs, &fakeTrainingStore{records: tt.records},
				histories, &fakeAssignmentSource{}, alerts, true)

			err := tn.OnBatchCompleted(context.Background(), "f1")

			assert.NoError(t, err)
			assert.Empty(t, histories.appended)
			assert.Empty(t, alerts.raised)
		})
	}
}

func TestOnBatchCompletedAnomalyOnThirdLowBatch(t *testing.T) {
	// The window resets at each adaptation event, so the run has to rebuild
	// from scratch: only the third consecutive low batch after the last event
	// trips the recalibration.
	configs := &fakeConfigStore{cfg: adaptiveConfig()}
	histories := &fakeHistoryStore{}
	alerts := &fakeAlertRaiser{}
	training := &fakeTrainingStore{}
	tn := newTestTuner(configs, training, histories, &fakeAssignmentSource{assignments: evenSpread()}, alerts, true)

	for i, eff := range []float64{0.3, 0.35, 0.32} {
		training.records = append(training.records, &model.TrainingDataRecord{FactoryID: "f1", ActualEfficiency: eff})
		assert.NoError(t, tn.OnBatchCompleted(context.Background(), "f1"))
		if i < 2 {
			assert.Empty(t, histories.appended, "batch %d must not trigger recalibration", i+1)
		}
	}

	assert.Len(t, histories.appended, 1)
	assert.Len(t, alerts.raised, 1)
}

func TestApplyAndRecordMarksClampedWeights(t *testing.T) {
	cfg := adaptiveConfig()
	cfg.SKUComplexityWeight = 0.015 // one nudge below the floor
	configs := &fakeConfigStore{cfg: cfg}
	histories := &fakeHistoryStore{}
	tn := newTestTuner(configs, &fakeTrainingStore{}, histories, &fakeAssignmentSource{}, &fakeAlertRaiser{}, true)

	err := tn.applyAndRecord(context.Background(), configs.cfg,
		[]Delta{{Weight: "sku_complexity", Amount: -0.02}}, []string{"below_diversity_target"}, 0.9, 0.4, 25)

	assert.NoError(t, err)
	assert.Equal(t, 0.01, configs.cfg.SKUComplexityWeight)
	if assert.Len(t, histories.appended, 1) {
		assert.True(t, strings.HasPrefix(histories.appended[0].TriggerReason, "below_diversity_target"))
		assert.Contains(t, histories.appended[0].TriggerReason, "clamped: sku_complexity")
	}
}
