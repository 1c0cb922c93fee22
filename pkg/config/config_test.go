package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestValidateAndApplyDefaults(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		check  func(*testing.T, *Config)
	}{
		{
			name:   "empty config gets full defaults",
			mutate: func(*Config) {},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 8080, c.Server.Port)
				assert.Equal(t, 10, c.Queue.Concurrency)
				assert.Equal(t, 300, c.Scheduler.PlanBuildInterval)
				assert.Equal(t, "0 2 * * *", c.Scheduler.TunerCron)
				assert.Equal(t, "*/30 * * * *", c.Scheduler.AlertSweepCron)
				assert.Equal(t, 1, c.Scheduler.PlanHorizonDays)
				assert.Equal(t, 10, c.Notification.RequestTimeout)
				assert.Equal(t, "warning", c.Notification.MinSeverity)
			},
		},
		{
			name: "explicit values survive",
			mutate: func(c *Config) {
				c.Server.Port = 9090
				c.Queue.Concurrency = 4
				c.Scheduler.TunerCron = "0 3 * * *"
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 9090, c.Server.Port)
				assert.Equal(t, 4, c.Queue.Concurrency)
				assert.Equal(t, "0 3 * * *", c.Scheduler.TunerCron)
			},
		},
		{
			name: "negative values replaced",
			mutate: func(c *Config) {
				c.Server.Port = -1
				c.Queue.MaxRetry = -5
				c.Scheduler.PlanHorizonDays = -2
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 8080, c.Server.Port)
				assert.Equal(t, 3, c.Queue.MaxRetry)
				assert.Equal(t, 1, c.Scheduler.PlanHorizonDays)
			},
		},
		{
			name: "zero retry is a valid choice",
			mutate: func(c *Config) {
				c.Queue.MaxRetry = 0
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 0, c.Queue.MaxRetry)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			tt.mutate(&cfg)
			validateAndApplyDefaults(&cfg)
			tt.check(t, &cfg)
		})
	}
}

func TestConfigYAMLParsing(t *testing.T) {
	raw := `
server:
  port: 8081
  mode: release
  api_key: secret
mysql:
  host: db.internal
  port: 3306
  user: lineflow
  password: pw
  database: lineflow
redis:
  addr: redis.internal:6379
  db: 2
queue:
  concurrency: 8
  max_retry: 5
scheduler:
  plan_build_interval: 120
  tuner_cron: "0 4 * * *"
  plan_horizon_days: 3
notification:
  webhook_url: https://hooks.internal/alerts
  min_severity: critical
`

	var cfg Config
	assert.NoError(t, yaml.Unmarshal([]byte(raw), &cfg))
	validateAndApplyDefaults(&cfg)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "secret", cfg.Server.APIKey)
	assert.Equal(t, "db.internal", cfg.MySQL.Host)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 8, cfg.Queue.Concurrency)
	assert.Equal(t, 5, cfg.Queue.MaxRetry)
	assert.Equal(t, 120, cfg.Scheduler.PlanBuildInterval)
	assert.Equal(t, "0 4 * * *", cfg.Scheduler.TunerCron)
	assert.Equal(t, 3, cfg.Scheduler.PlanHorizonDays)
	assert.Equal(t, "https://hooks.internal/alerts", cfg.Notification.WebhookURL)
	assert.Equal(t, "critical", cfg.Notification.MinSeverity)
	// Omitted sections still get their defaults
	assert.Equal(t, "*/30 * * * *", cfg.Scheduler.AlertSweepCron)
	assert.Equal(t, 10, cfg.Notification.RequestTimeout)
}
