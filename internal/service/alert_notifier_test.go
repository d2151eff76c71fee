package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"scamwall/config"
	"scamwall/internal/model"
)

func TestAlertNotifierFiresAtThreshold(t *testing.T) {
	received := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.URL.RawQuery
	}))
	defer server.Close()

	notifier := NewAlertNotifier(config.Alert{
		MinLevel: model.RiskLevelCritical,
		Webhooks: []config.WebhookConfig{{Name: "alert", Method: "GET", URL: server.URL}},
	})

	notifier.Notify(&model.RiskAssessment{
		Channel:   model.ChannelEmail,
		RiskScore: 70,
		RiskLevel: model.RiskLevelCritical,
	})

	select {
	case query := <-received:
		assert.Contains(t, query, "risk_level=CRITICAL")
		assert.Contains(t, query, "channel=email")
	case <-time.After(3 * time.Second):
		t.Fatal("expected webhook to fire")
	}
}

func TestAlertNotifierBelowThreshold(t *testing.T) {
	received := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- struct{}{}
	}))
	defer server.Close()

	notifier := NewAlertNotifier(config.Alert{
		MinLevel: model.RiskLevelCritical,
		Webhooks: []config.WebhookConfig{{Name: "alert", Method: "GET", URL: server.URL}},
	})

	notifier.Notify(&model.RiskAssessment{RiskLevel: model.RiskLevelMedium})

	select {
	case <-received:
		t.Fatal("webhook should not fire below threshold")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestAlertNotifierNilAssessment(t *testing.T) {
	notifier := NewAlertNotifier(config.Alert{})
	// 不应panic
	notifier.Notify(nil)
}
