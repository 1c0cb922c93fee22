package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lineflow/pkg/constants"
	mysqlModel "lineflow/pkg/store/mysql/model"
)

// fakeAlertStore mirrors the repository's dedup semantics in memory: at most
// one active alert per (schedule, type), transitions gated by the state machine.
type fakeAlertStore struct {
	alerts    map[string]*mysqlModel.SchedulingAlert
	completed []string // alert IDs returned by ListActiveForCompletedSchedules
}

func newFakeAlertStore() *fakeAlertStore {
	return &fakeAlertStore{alerts: make(map[string]*mysqlModel.SchedulingAlert)}
}

func (f *fakeAlertStore) CreateIfAbsent(ctx context.Context, alert *mysqlModel.SchedulingAlert) (bool, error) {
	for _, existing := range f.alerts {
		if existing.Status == constants.AlertStatusActive &&
			existing.ScheduleID == alert.ScheduleID && existing.AlertType == alert.AlertType {
			return false, nil
		}
	}
	alert.Status = constants.AlertStatusActive
	f.alerts[alert.ID] = alert
	return true, nil
}

func (f *fakeAlertStore) Get(ctx context.Context, alertID string) (*mysqlModel.SchedulingAlert, error) {
	return f.alerts[alertID], nil
}

func (f *fakeAlertStore) ListActive(ctx context.Context, factoryID string) ([]*mysqlModel.SchedulingAlert, error) {
	var out []*mysqlModel.SchedulingAlert
	for _, a := range f.alerts {
		if a.Status == constants.AlertStatusActive && (factoryID == "" || a.FactoryID == factoryID) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAlertStore) Transition(ctx context.Context, alertID string, from, to constants.AlertStatus, actor, reason string) error {
	a, ok := f.alerts[alertID]
	if !ok || a.Status != from {
		return fmt.Errorf("alert %s not in status %s", alertID, from)
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("invalid transition %s -> %s", from, to)
	}
	a.Status = to
	return nil
}

func (f *fakeAlertStore) ListActiveForCompletedSchedules(ctx context.Context) ([]*mysqlModel.SchedulingAlert, error) {
	var out []*mysqlModel.SchedulingAlert
	for _, id := range f.completed {
		if a, ok := f.alerts[id]; ok && a.Status == constants.AlertStatusActive {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakePusher struct {
	pushed []*mysqlModel.SchedulingAlert
}

func (f *fakePusher) PushAlert(ctx context.Context, alert *mysqlModel.SchedulingAlert) error {
	f.pushed = append(f.pushed, alert)
	return nil
}

func scanConfig() *mysqlModel.SchedulingConfig {
	return &mysqlModel.SchedulingConfig{FactoryID: "f1", CompletionProbAlertThreshold: 0.7}
}

func testSchedule(id, lineID string, start, end time.Time) *mysqlModel.LineSchedule {
	return &mysqlModel.LineSchedule{
		ID:              id,
		LineID:          lineID,
		BatchID:         "batch-" + id,
		PlannedStart:    start,
		PlannedEnd:      end,
		RequiredWorkers: 2,
		AssignedWorkers: 2,
		LineMaxWorkers:  3,
		Status:          constants.ScheduleStatusPlanned,
	}
}

func TestScanPlanDeadlineRiskFromCompletionProb(t *testing.T) {
	tests := []struct {
		name         string
		prob         float64
		wantAlert    bool
		wantSeverity constants.AlertSeverity
	}{
		{name: "healthy probability", prob: 0.9, wantAlert: false},
		{name: "below threshold", prob: 0.6, wantAlert: true, wantSeverity: constants.AlertSeverityWarning},
		{name: "far below threshold", prob: 0.4, wantAlert: true, wantSeverity: constants.AlertSeverityCritical},
	}

	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeAlertStore()
			svc := NewAlertService(store, nil)
			plan := &mysqlModel.SchedulingPlan{ID: "plan-1", FactoryID: "f1"}
			schedule := testSchedule("s1", "L1", start, start.Add(8*time.Hour))

			err := svc.ScanPlan(context.Background(), scanConfig(), plan,
				[]*mysqlModel.LineSchedule{schedule}, map[string]float64{"s1": tt.prob})

			assert.NoError(t, err)
			active, _ := store.ListActive(context.Background(), "f1")
			if !tt.wantAlert {
				assert.Empty(t, active)
				return
			}
			if assert.Len(t, active, 1) {
				assert.Equal(t, constants.AlertTypeDeadlineRisk, active[0].AlertType)
				assert.Equal(t, tt.wantSeverity, active[0].Severity)
			}
		})
	}
}

func TestScanPlanDeadlineOverrun(t *testing.T) {
	store := newFakeAlertStore()
	svc := NewAlertService(store, nil)
	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	deadline := start.Add(6 * time.Hour)
	schedule := testSchedule("s1", "L1", start, start.Add(8*time.Hour))
	schedule.Deadline = &deadline

	err := svc.ScanPlan(context.Background(), scanConfig(), &mysqlModel.SchedulingPlan{FactoryID: "f1"},
		[]*mysqlModel.LineSchedule{schedule}, nil)

	assert.NoError(t, err)
	active, _ := store.ListActive(context.Background(), "f1")
	if assert.Len(t, active, 1) {
		assert.Equal(t, constants.AlertTypeDeadlineRisk, active[0].AlertType)
		assert.Equal(t, constants.AlertSeverityCritical, active[0].Severity)
	}
}

func TestScanPlanWorkerShortage(t *testing.T) {
	store := newFakeAlertStore()
	pusher := &fakePusher{}
	svc := NewAlertService(store, pusher)
	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	short := testSchedule("s1", "L1", start, start.Add(8*time.Hour))
	short.AssignedWorkers = 1
	understaffed := testSchedule("s2", "L2", start, start.Add(8*time.Hour))
	understaffed.AssignedWorkers = 0
	understaffed.Status = constants.ScheduleStatusUnderstaffed

	err := svc.ScanPlan(context.Background(), scanConfig(), &mysqlModel.SchedulingPlan{FactoryID: "f1"},
		[]*mysqlModel.LineSchedule{short, understaffed}, nil)

	assert.NoError(t, err)
	active, _ := store.ListActive(context.Background(), "f1")
	assert.Len(t, active, 2)
	bySchedule := map[string]constants.AlertSeverity{}
	for _, a := range active {
		assert.Equal(t, constants.AlertTypeWorkerShortage, a.AlertType)
		bySchedule[a.ScheduleID] = a.Severity
	}
	assert.Equal(t, constants.AlertSeverityWarning, bySchedule["s1"])
	assert.Equal(t, constants.AlertSeverityCritical, bySchedule["s2"])
	assert.Len(t, pusher.pushed, 2)
}

func TestScanPlanOverlappingPairRaisesSingleConflict(t *testing.T) {
	store := newFakeAlertStore()
	svc := NewAlertService(store, nil)
	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	// 08:00-16:00 and 12:00-20:00 on the same line, combined crews over capacity
	schedules := []*mysqlModel.LineSchedule{
		testSchedule("s1", "L1", start, start.Add(8*time.Hour)),
		testSchedule("s2", "L1", start.Add(4*time.Hour), start.Add(12*time.Hour)),
	}

	err := svc.ScanPlan(context.Background(), scanConfig(), &mysqlModel.SchedulingPlan{FactoryID: "f1"}, schedules, nil)

	assert.NoError(t, err)
	active, _ := store.ListActive(context.Background(), "f1")
	if assert.Len(t, active, 1, "one overlapping pair must yield one alert, not one per schedule") {
		assert.Equal(t, constants.AlertTypeResourceConflict, active[0].AlertType)
		assert.Equal(t, "s1", active[0].ScheduleID)
	}
}

func TestScanPlanResourceConflicts(t *testing.T) {
	store := newFakeAlertStore()
	svc := NewAlertService(store, nil)
	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	schedules := []*mysqlModel.LineSchedule{
		testSchedule("s1", "L1", start, start.Add(8*time.Hour)),
		testSchedule("s2", "L1", start.Add(4*time.Hour), start.Add(12*time.Hour)),  // overlaps s1
		testSchedule("s3", "L1", start.Add(12*time.Hour), start.Add(16*time.Hour)), // back-to-back, no overlap
		testSchedule("s4", "L2", start, start.Add(8*time.Hour)),                    // other line
		testSchedule("s5", "L3", start, start.Add(8*time.Hour)),                    // overlapping pair on L3
		testSchedule("s6", "L3", start.Add(2*time.Hour), start.Add(10*time.Hour)),
	}

	err := svc.ScanPlan(context.Background(), scanConfig(), &mysqlModel.SchedulingPlan{FactoryID: "f1"}, schedules, nil)

	assert.NoError(t, err)
	active, _ := store.ListActive(context.Background(), "f1")
	assert.Len(t, active, 2, "one alert per conflicted line")
	bySchedule := map[string]*mysqlModel.SchedulingAlert{}
	for _, a := range active {
		assert.Equal(t, constants.AlertTypeResourceConflict, a.AlertType)
		bySchedule[a.ScheduleID] = a
	}
	assert.Contains(t, bySchedule, "s1")
	assert.Contains(t, bySchedule, "s5")
}

func TestScanPlanOverlapWithinCapacityNotAConflict(t *testing.T) {
	store := newFakeAlertStore()
	svc := NewAlertService(store, nil)
	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	// The line holds both overlapping crews at once
	a := testSchedule("s1", "L1", start, start.Add(8*time.Hour))
	b := testSchedule("s2", "L1", start.Add(4*time.Hour), start.Add(12*time.Hour))
	a.LineMaxWorkers = 4
	b.LineMaxWorkers = 4

	err := svc.ScanPlan(context.Background(), scanConfig(), &mysqlModel.SchedulingPlan{FactoryID: "f1"},
		[]*mysqlModel.LineSchedule{a, b}, nil)

	assert.NoError(t, err)
	active, _ := store.ListActive(context.Background(), "f1")
	assert.Empty(t, active)
}

func TestScanPlanDeduplicatesAcrossRuns(t *testing.T) {
	store := newFakeAlertStore()
	svc := NewAlertService(store, nil)
	start := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	schedule := testSchedule("s1", "L1", start, start.Add(8*time.Hour))
	schedule.AssignedWorkers = 1
	plan := &mysqlModel.SchedulingPlan{FactoryID: "f1"}

	for i := 0; i < 3; i++ {
		assert.NoError(t, svc.ScanPlan(context.Background(), scanConfig(), plan,
			[]*mysqlModel.LineSchedule{schedule}, nil))
	}

	active, _ := store.ListActive(context.Background(), "f1")
	assert.Len(t, active, 1, "repeated scans must not duplicate the active alert")
}

func TestRaiseEfficiencyDropOncePerFactory(t *testing.T) {
	store := newFakeAlertStore()
	svc := NewAlertService(store, nil)

	assert.NoError(t, svc.RaiseEfficiencyDrop(context.Background(), "f1", 0.35, 3))
	assert.NoError(t, svc.RaiseEfficiencyDrop(context.Background(), "f1", 0.30, 3))
	assert.NoError(t, svc.RaiseEfficiencyDrop(context.Background(), "f2", 0.40, 3))

	active, _ := store.ListActive(context.Background(), "")
	assert.Len(t, active, 2)
}

func TestAlertLifecycle(t *testing.T) {
	store := newFakeAlertStore()
	svc := NewAlertService(store, nil)
	ctx := context.Background()

	assert.NoError(t, svc.RaiseEfficiencyDrop(ctx, "f1", 0.35, 3))
	active, _ := store.ListActive(ctx, "f1")
	alertID := active[0].ID

	assert.NoError(t, svc.Acknowledge(ctx, alertID, "shift-lead"))
	assert.Error(t, svc.Ignore(ctx, alertID, "noise"), "acknowledged alerts cannot be ignored")
	assert.NoError(t, svc.Resolve(ctx, alertID))

	// Terminal states reject further transitions
	assert.Error(t, svc.Acknowledge(ctx, alertID, "shift-lead"))
	assert.Error(t, svc.Resolve(ctx, alertID))
}

func TestAlertResolveDirectlyFromActive(t *testing.T) {
	store := newFakeAlertStore()
	svc := NewAlertService(store, nil)
	ctx := context.Background()

	assert.NoError(t, svc.RaiseEfficiencyDrop(ctx, "f1", 0.35, 3))
	active, _ := store.ListActive(ctx, "f1")

	assert.NoError(t, svc.Resolve(ctx, active[0].ID))
	remaining, _ := store.ListActive(ctx, "f1")
	assert.Empty(t, remaining)
}

func TestSweepExpired(t *testing.T) {
	store := newFakeAlertStore()
	svc := NewAlertService(store, nil)
	ctx := context.Background()

	assert.NoError(t, svc.RaiseEfficiencyDrop(ctx, "f1", 0.35, 3))
	assert.NoError(t, svc.RaiseEfficiencyDrop(ctx, "f2", 0.40, 3))
	active, _ := store.ListActive(ctx, "")
	// Only the first alert's schedule has completed
	store.completed = []string{active[0].ID}

	swept, err := svc.SweepExpired(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, swept)
	remaining, _ := store.ListActive(ctx, "")
	assert.Len(t, remaining, 1)
}
