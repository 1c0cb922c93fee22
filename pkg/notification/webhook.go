package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"lineflow/pkg/config"
	"lineflow/pkg/constants"
	"lineflow/pkg/logger"
	"lineflow/pkg/store/mysql/model"
)

// WebhookNotifier pushes scheduling alerts to a generic HTTP webhook.
type WebhookNotifier struct {
	webhookURL  string
	minSeverity constants.AlertSeverity
	client      *http.Client
}

// NewWebhookNotifier creates a notifier from the global configuration.
func NewWebhookNotifier() *WebhookNotifier {
	// Priority: config file > environment variable
	var webhookURL string
	timeout := 10 * time.Second
	minSeverity := constants.AlertSeverityWarning

	if config.GlobalConfig != nil {
		if config.GlobalConfig.Notification.WebhookURL != "" {
			webhookURL = config.GlobalConfig.Notification.WebhookURL
			logger.Info("Using alert webhook URL from config file")
		}
		if config.GlobalConfig.Notification.RequestTimeout > 0 {
			timeout = time.Duration(config.GlobalConfig.Notification.RequestTimeout) * time.Second
		}
		if s := config.GlobalConfig.Notification.MinSeverity; s != "" {
			minSeverity = constants.AlertSeverity(strings.ToUpper(s))
		}
	}
	if webhookURL == "" {
		webhookURL = os.Getenv("ALERT_WEBHOOK_URL")
		if webhookURL != "" {
			logger.Info("Using alert webhook URL from environment variable")
		}
	}

	if webhookURL == "" {
		logger.Warn("alert webhook URL not configured (check config file or ALERT_WEBHOOK_URL env), alert push will be disabled")
	}

	return &WebhookNotifier{
		webhookURL:  webhookURL,
		minSeverity: minSeverity,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// severityRank orders severities for the minimum-severity filter.
func severityRank(s constants.AlertSeverity) int {
	switch s {
	case constants.AlertSeverityInfo:
		return 0
	case constants.AlertSeverityWarning:
		return 1
	case constants.AlertSeverityCritical:
		return 2
	default:
		return 0
	}
}

// alertPayload is the webhook body for a newly raised alert.
type alertPayload struct {
	AlertID         string    `json:"alert_id"`
	FactoryID       string    `json:"factory_id"`
	ScheduleID      string    `json:"schedule_id"`
	AlertType       string    `json:"alert_type"`
	Severity        string    `json:"severity"`
	Message         string    `json:"message"`
	SuggestedAction string    `json:"suggested_action,omitempty"`
	RaisedAt        time.Time `json:"raised_at"`
}

// PushAlert sends a raised alert to the webhook. Alerts below the configured
// minimum severity, or with no webhook configured, are silently skipped.
func (n *WebhookNotifier) PushAlert(ctx context.Context, alert *model.SchedulingAlert) error {
	if n.webhookURL == "" {
		return nil
	}
	if severityRank(alert.Severity) < severityRank(n.minSeverity) {
		logger.DebugCtx(ctx, "alert %s severity %s below push threshold %s, skipping", alert.ID, alert.Severity, n.minSeverity)
		return nil
	}

	payload, err := json.Marshal(alertPayload{
		AlertID:         alert.ID,
		FactoryID:       alert.FactoryID,
		ScheduleID:      alert.ScheduleID,
		AlertType:       alert.AlertType.String(),
		Severity:        alert.Severity.String(),
		Message:         alert.Message,
		SuggestedAction: alert.SuggestedAction,
		RaisedAt:        alert.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal alert payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", n.webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send alert webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("alert webhook returned status code: %d", resp.StatusCode)
	}

	logger.InfoCtx(ctx, "alert webhook delivered for alert %s (%s, %s)", alert.ID, alert.AlertType, alert.Severity)
	return nil
}
