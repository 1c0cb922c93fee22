package jobs

import (
	"context"

	"lineflow/internal/service"
)

// AlertSweepJob auto-expires active alerts whose underlying schedule has
// completed successfully, the one resolution path that needs no human.
type AlertSweepJob struct {
	spec         string
	alertService *service.AlertService
}

// NewAlertSweepJob creates the auto-expire sweep job
func NewAlertSweepJob(cronSpec string, alertService *service.AlertService) *AlertSweepJob {
	return &AlertSweepJob{spec: cronSpec, alertService: alertService}
}

func (j *AlertSweepJob) Name() string { return "alert-sweep" }

func (j *AlertSweepJob) CronSpec() string { return j.spec }

func (j *AlertSweepJob) Run(ctx context.Context) error {
	_, err := j.alertService.SweepExpired(ctx)
	return err
}
