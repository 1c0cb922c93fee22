package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

var GlobalConfig *Config

// Config global configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	MySQL        MySQLConfig        `yaml:"mysql"`
	Redis        RedisConfig        `yaml:"redis"`
	Queue        QueueConfig        `yaml:"queue"`
	Scheduler    SchedulerConfig    `yaml:"scheduler"`
	Logger       LoggerConfig       `yaml:"logger"`
	Notification NotificationConfig `yaml:"notification"`
}

// ServerConfig server configuration
type ServerConfig struct {
	Port   int    `yaml:"port"`
	Mode   string `yaml:"mode"`    // debug, release
	APIKey string `yaml:"api_key"` // API key for admin endpoints (optional, if empty, auth is disabled)
}

// MySQLConfig MySQL configuration
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RedisConfig Redis configuration
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// QueueConfig batch-completion event queue configuration
type QueueConfig struct {
	Concurrency int `yaml:"concurrency"` // event processing concurrency
	MaxRetry    int `yaml:"max_retry"`   // maximum retry count per event
}

// SchedulerConfig scheduling control loop configuration
type SchedulerConfig struct {
	PlanBuildInterval int    `yaml:"plan_build_interval"` // plan build loop interval (seconds)
	TunerCron         string `yaml:"tuner_cron"`          // cron expression for weight adaptation cycles
	AlertSweepCron    string `yaml:"alert_sweep_cron"`    // cron expression for the alert auto-expire sweep
	PlanHorizonDays   int    `yaml:"plan_horizon_days"`   // how many days ahead to build plans for
}

// LoggerConfig logger configuration
type LoggerConfig struct {
	Level  string           `yaml:"level"`  // debug, info, warn, error
	Output string           `yaml:"output"` // console, file, both
	File   LoggerFileConfig `yaml:"file"`
}

// LoggerFileConfig logger file configuration
type LoggerFileConfig struct {
	Path string `yaml:"path"`
}

// NotificationConfig alert push configuration
type NotificationConfig struct {
	WebhookURL     string `yaml:"webhook_url"`     // alert webhook endpoint (empty disables push)
	MinSeverity    string `yaml:"min_severity"`    // lowest severity pushed: info, warning, critical
	RequestTimeout int    `yaml:"request_timeout"` // webhook request timeout (seconds)
}

// Init initializes configuration
func Init() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}

	validateAndApplyDefaults(&cfg)

	GlobalConfig = &cfg
	return nil
}

// validateAndApplyDefaults replaces invalid or missing values with safe defaults
// so a partially written config file never prevents startup.
func validateAndApplyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Queue.Concurrency <= 0 {
		cfg.Queue.Concurrency = 10
	}
	if cfg.Queue.MaxRetry < 0 {
		cfg.Queue.MaxRetry = 3
	}
	if cfg.Scheduler.PlanBuildInterval <= 0 {
		cfg.Scheduler.PlanBuildInterval = 300
	}
	if cfg.Scheduler.TunerCron == "" {
		cfg.Scheduler.TunerCron = "0 2 * * *"
	}
	if cfg.Scheduler.AlertSweepCron == "" {
		cfg.Scheduler.AlertSweepCron = "*/30 * * * *"
	}
	if cfg.Scheduler.PlanHorizonDays <= 0 {
		cfg.Scheduler.PlanHorizonDays = 1
	}
	if cfg.Notification.RequestTimeout <= 0 {
		cfg.Notification.RequestTimeout = 10
	}
	if cfg.Notification.MinSeverity == "" {
		cfg.Notification.MinSeverity = "warning"
	}
}
