package notification

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"lineflow/pkg/constants"
	"lineflow/pkg/store/mysql/model"
)

func testNotifier(url string, minSeverity constants.AlertSeverity) *WebhookNotifier {
	return &WebhookNotifier{
		webhookURL:  url,
		minSeverity: minSeverity,
		client:      &http.Client{Timeout: 5 * time.Second},
	}
}

func testAlert(severity constants.AlertSeverity) *model.SchedulingAlert {
	return &model.SchedulingAlert{
		ID:              "alert-1",
		FactoryID:       "f1",
		ScheduleID:      "s1",
		AlertType:       constants.AlertTypeWorkerShortage,
		Severity:        severity,
		Message:         "1 of 2 required workers assigned",
		SuggestedAction: "recruit temp workers",
	}
}

func TestPushAlertDeliversPayload(t *testing.T) {
	var received alertPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := testNotifier(server.URL, constants.AlertSeverityWarning)
	err := n.PushAlert(context.Background(), testAlert(constants.AlertSeverityCritical))

	assert.NoError(t, err)
	assert.Equal(t, "alert-1", received.AlertID)
	assert.Equal(t, "f1", received.FactoryID)
	assert.Equal(t, "WORKER_SHORTAGE", received.AlertType)
	assert.Equal(t, "CRITICAL", received.Severity)
}

func TestPushAlertFiltersBelowMinSeverity(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	n := testNotifier(server.URL, constants.AlertSeverityCritical)

	assert.NoError(t, n.PushAlert(context.Background(), testAlert(constants.AlertSeverityInfo)))
	assert.NoError(t, n.PushAlert(context.Background(), testAlert(constants.AlertSeverityWarning)))
	assert.Equal(t, 0, calls)

	assert.NoError(t, n.PushAlert(context.Background(), testAlert(constants.AlertSeverityCritical)))
	assert.Equal(t, 1, calls)
}

func TestPushAlertDisabledWithoutURL(t *testing.T) {
	n := testNotifier("", constants.AlertSeverityWarning)
	assert.NoError(t, n.PushAlert(context.Background(), testAlert(constants.AlertSeverityCritical)))
}

func TestPushAlertNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	n := testNotifier(server.URL, constants.AlertSeverityWarning)
	err := n.PushAlert(context.Background(), testAlert(constants.AlertSeverityCritical))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestSeverityRankOrdering(t *testing.T) {
	assert.Less(t, severityRank(constants.AlertSeverityInfo), severityRank(constants.AlertSeverityWarning))
	assert.Less(t, severityRank(constants.AlertSeverityWarning), severityRank(constants.AlertSeverityCritical))
}
