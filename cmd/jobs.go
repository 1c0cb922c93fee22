package main

import (
	"time"

	"lineflow/internal/jobs"
)

// initJobs registers the background control loops: plan lifecycle rollup,
// scheduled weight adaptation, and the alert auto-expire sweep.
func (app *Application) initJobs() error {
	app.jobsManager = jobs.NewManager(app.ctx)

	interval := time.Duration(app.config.Scheduler.PlanBuildInterval) * time.Second
	app.jobsManager.Register(jobs.NewPlanLifecycleJob(interval, app.mysqlRepo.Plan))

	if err := app.jobsManager.RegisterCron(jobs.NewTunerJob(
		app.config.Scheduler.TunerCron, app.mysqlRepo.SchedulingConfig, app.weightTuner)); err != nil {
		return err
	}

	if err := app.jobsManager.RegisterCron(jobs.NewAlertSweepJob(
		app.config.Scheduler.AlertSweepCron, app.alertService)); err != nil {
		return err
	}

	return nil
}
