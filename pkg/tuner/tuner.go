package tuner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lineflow/pkg/lock"
	"lineflow/pkg/logger"
	"lineflow/pkg/store/mysql/model"

	"github.com/google/uuid"
)

// adaptationLookback bounds the sample window when a factory has no
// adaptation history yet.
const adaptationLookback = 30 * 24 * time.Hour

// updateRetries bounds the optimistic-lock retry loop; a cycle that keeps
// losing the race defers to the next cycle rather than spinning.
const updateRetries = 3

// ConfigStore reads and versions scheduling configurations.
type ConfigStore interface {
	Get(ctx context.Context, factoryID string) (*model.SchedulingConfig, error)
	UpdateVersioned(ctx context.Context, config *model.SchedulingConfig, expectedVersion int64) (bool, error)
}

// TrainingStore reads the accumulated training samples.
type TrainingStore interface {
	CountSince(ctx context.Context, factoryID string, since time.Time) (int64, error)
	ListSince(ctx context.Context, factoryID string, since time.Time) ([]*model.TrainingDataRecord, error)
}

// HistoryStore persists the adaptation audit trail.
type HistoryStore interface {
	Append(ctx context.Context, history *model.WeightHistory) error
	Latest(ctx context.Context, factoryID string) (*model.WeightHistory, error)
}

// AssignmentSource supplies recent assignments for the diversity index.
type AssignmentSource interface {
	ListRecentByFactory(ctx context.Context, factoryID string, since time.Time) ([]*model.WorkerAssignment, error)
}

// AlertRaiser raises an efficiency-drop alert when anomaly recalibration fires.
type AlertRaiser interface {
	RaiseEfficiencyDrop(ctx context.Context, factoryID string, avgEfficiency float64, sampleCount int) error
}

// Tuner runs the adaptive weight loop: periodic cycles nudge scoring weights
// toward the factory's efficiency and diversity targets, and a run of
// anomalously low-efficiency batches forces a recalibration between cycles.
type Tuner struct {
	configs     ConfigStore
	training    TrainingStore
	histories   HistoryStore
	assignments AssignmentSource
	alerts      AlertRaiser
	newLock     func(factoryID string) lock.DistributedLock
}

func NewTuner(configs ConfigStore, training TrainingStore, histories HistoryStore, assignments AssignmentSource, alerts AlertRaiser, newLock func(factoryID string) lock.DistributedLock) *Tuner {
	return &Tuner{
		configs:     configs,
		training:    training,
		histories:   histories,
		assignments: assignments,
		alerts:      alerts,
		newLock:     newLock,
	}
}

// AdaptCycle runs one scheduled adaptation pass for a factory. It is a no-op
// when adaptive learning is disabled or the sample window is too thin.
func (t *Tuner) AdaptCycle(ctx context.Context, factoryID string) error {
	lk := t.newLock(factoryID)
	acquired, err := lk.TryLock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire tuner lock: %w", err)
	}
	if !acquired {
		logger.InfoCtx(ctx, "tuner cycle for factory %s skipped, another instance holds the lock", factoryID)
		return nil
	}
	defer func() {
		if err := lk.Unlock(ctx); err != nil {
			logger.WarnCtx(ctx, "failed to release tuner lock for factory %s: %v", factoryID, err)
		}
	}()

	cfg, err := t.configs.Get(ctx, factoryID)
	if err != nil {
		return fmt.Errorf("failed to load scheduling config: %w", err)
	}
	if cfg == nil {
		logger.InfoCtx(ctx, "no scheduling config for factory %s, skipping adaptation", factoryID)
		return nil
	}
	if !cfg.AdaptiveLearningEnabled {
		logger.DebugCtx(ctx, "adaptive learning disabled for factory %s", factoryID)
		return nil
	}

	since, err := t.windowStart(ctx, factoryID)
	if err != nil {
		return err
	}

	count, err := t.training.CountSince(ctx, factoryID, since)
	if err != nil {
		return fmt.Errorf("failed to count training samples: %w", err)
	}
	if count < int64(cfg.MinSamplesForAdaptation) {
		logger.InfoCtx(ctx, "factory %s has %d samples since last adaptation, need %d, skipping",
			factoryID, count, cfg.MinSamplesForAdaptation)
		return nil
	}

	records, err := t.training.ListSince(ctx, factoryID, since)
	if err != nil {
		return fmt.Errorf("failed to load training samples: %w", err)
	}

	avgEfficiency := averageEfficiency(records)
	diversity, err := t.diversitySince(ctx, factoryID, since)
	if err != nil {
		return err
	}

	deltas, reasons := ComputeDeltas(avgEfficiency, cfg.EfficiencyTarget, diversity, cfg.DiversityTarget, cfg.LearningRate)
	if len(deltas) == 0 {
		logger.InfoCtx(ctx, "factory %s on target (efficiency %.3f, diversity %.3f), no adjustment",
			factoryID, avgEfficiency, diversity)
		return nil
	}

	return t.applyAndRecord(ctx, cfg, deltas, reasons, avgEfficiency, diversity, len(records))
}

// OnBatchCompleted checks the anomaly condition after a new training sample
// lands. When the trailing AnomalyCountForCalibration samples since the last
// adaptation event all fall below EfficiencyAnomalyThreshold, it forces a
// recalibration immediately instead of waiting for the next cycle.
func (t *Tuner) OnBatchCompleted(ctx context.Context, factoryID string) error {
	cfg, err := t.configs.Get(ctx, factoryID)
	if err != nil {
		return fmt.Errorf("failed to load scheduling config: %w", err)
	}
	if cfg == nil || !cfg.AdaptiveLearningEnabled {
		return nil
	}

	since, err := t.windowStart(ctx, factoryID)
	if err != nil {
		return err
	}

	records, err := t.training.ListSince(ctx, factoryID, since)
	if err != nil {
		return fmt.Errorf("failed to load training samples: %w", err)
	}

	n := cfg.AnomalyCountForCalibration
	if n <= 0 || len(records) < n {
		return nil
	}
	tail := records[len(records)-n:]
	for _, rec := range tail {
		if rec.ActualEfficiency >= cfg.EfficiencyAnomalyThreshold {
			return nil
		}
	}

	lk := t.newLock(factoryID)
	acquired, err := lk.TryLock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire tuner lock: %w", err)
	}
	if !acquired {
		return nil
	}
	defer func() {
		if err := lk.Unlock(ctx); err != nil {
			logger.WarnCtx(ctx, "failed to release tuner lock for factory %s: %v", factoryID, err)
		}
	}()

	avgEfficiency := averageEfficiency(tail)
	diversity, err := t.diversitySince(ctx, factoryID, since)
	if err != nil {
		return err
	}

	logger.WarnCtx(ctx, "efficiency anomaly for factory %s: last %d batches below %.2f (avg %.3f), forcing recalibration",
		factoryID, n, cfg.EfficiencyAnomalyThreshold, avgEfficiency)

	// Recalibration always leans toward exploitation; both target checks
	// may contribute on top when diversity is also off.
	deltas, _ := ComputeDeltas(avgEfficiency, cfg.EfficiencyTarget, diversity, cfg.DiversityTarget, cfg.LearningRate)
	if len(deltas) == 0 {
		deltas = []Delta{
			{Weight: "linucb", Amount: cfg.LearningRate},
			{Weight: "sku_complexity", Amount: cfg.LearningRate},
		}
	}

	if err := t.applyAndRecord(ctx, cfg, deltas, []string{"anomaly_recalibration"}, avgEfficiency, diversity, n); err != nil {
		return err
	}

	if t.alerts != nil {
		if err := t.alerts.RaiseEfficiencyDrop(ctx, factoryID, avgEfficiency, n); err != nil {
			logger.ErrorCtx(ctx, "failed to raise efficiency drop alert for factory %s: %v", factoryID, err)
		}
	}
	return nil
}

// applyAndRecord applies deltas under optimistic locking and appends the
// audit row. Losing the version race updateRetries times defers to the next
// cycle; the history append happens only after a successful config write so
// the event boundary stays consistent with what was actually applied.
func (t *Tuner) applyAndRecord(ctx context.Context, cfg *model.SchedulingConfig, deltas []Delta, reasons []string, avgEfficiency, diversity float64, sampleCount int) error {
	var before, after WeightSet
	var clamped []string

	applied := false
	for attempt := 0; attempt < updateRetries; attempt++ {
		before = WeightsFromConfig(cfg)
		after, clamped = ApplyDeltas(before, deltas, cfg.WeightMin, cfg.WeightMax)
		after.Apply(cfg)

		ok, err := t.configs.UpdateVersioned(ctx, cfg, cfg.Version)
		if err != nil {
			return fmt.Errorf("failed to update scheduling config: %w", err)
		}
		if ok {
			applied = true
			break
		}

		logger.WarnCtx(ctx, "version conflict updating config for factory %s, attempt %d", cfg.FactoryID, attempt+1)
		fresh, err := t.configs.Get(ctx, cfg.FactoryID)
		if err != nil {
			return fmt.Errorf("failed to reload scheduling config: %w", err)
		}
		if fresh == nil {
			return nil
		}
		cfg = fresh
	}
	if !applied {
		logger.WarnCtx(ctx, "giving up config update for factory %s after %d conflicts, deferring to next cycle",
			cfg.FactoryID, updateRetries)
		return nil
	}

	trigger := strings.Join(reasons, ",")
	if len(clamped) > 0 {
		trigger += " (clamped: " + strings.Join(clamped, ",") + ")"
	}

	history := &model.WeightHistory{
		ID:             uuid.New().String(),
		FactoryID:      cfg.FactoryID,
		WeightsBefore:  before.JSON(),
		WeightsAfter:   after.JSON(),
		TriggerReason:  trigger,
		AvgEfficiency:  avgEfficiency,
		DiversityIndex: diversity,
		SampleCount:    sampleCount,
	}
	if err := t.histories.Append(ctx, history); err != nil {
		return fmt.Errorf("failed to append weight history: %w", err)
	}

	logger.InfoCtx(ctx, "adapted weights for factory %s: %s -> %s (%s)",
		cfg.FactoryID, history.WeightsBefore, history.WeightsAfter, trigger)
	return nil
}

// windowStart returns the start of the current sample window: the moment of
// the last adaptation event, or a bounded lookback when there is none.
func (t *Tuner) windowStart(ctx context.Context, factoryID string) (time.Time, error) {
	latest, err := t.histories.Latest(ctx, factoryID)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to load weight history: %w", err)
	}
	if latest != nil {
		return latest.CreatedAt, nil
	}
	return time.Now().Add(-adaptationLookback), nil
}

func (t *Tuner) diversitySince(ctx context.Context, factoryID string, since time.Time) (float64, error) {
	if t.assignments == nil {
		return 0, nil
	}
	recent, err := t.assignments.ListRecentByFactory(ctx, factoryID, since)
	if err != nil {
		return 0, fmt.Errorf("failed to load recent assignments: %w", err)
	}
	perWorker := map[string]int{}
	for _, a := range recent {
		perWorker[a.WorkerID]++
	}
	counts := make([]int, 0, len(perWorker))
	for _, c := range perWorker {
		counts = append(counts, c)
	}
	return DiversityIndex(counts), nil
}

func averageEfficiency(records []*model.TrainingDataRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.ActualEfficiency
	}
	return sum / float64(len(records))
}
