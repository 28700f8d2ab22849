package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/misinfo-cli/internal/config"
	"github.com/sells-group/misinfo-cli/internal/model"
	"github.com/sells-group/misinfo-cli/internal/resilience"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertDetections         AlertType = "misinformation_detected"
	AlertCollectionFailures AlertType = "collection_failures"
	AlertRunFailed          AlertType = "run_failed"
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	RunID     string         `json:"run_id,omitempty"`
	Mode      model.RunMode  `json:"mode,omitempty"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Alerter turns a finished run into alerts and delivers them to a webhook.
type Alerter struct {
	cfg    config.MonitoringConfig
	client *http.Client
	retry  resilience.RetryConfig
}

// NewAlerter creates a new Alerter with the given monitoring config.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("monitoring", "webhook")
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		retry:  retry,
	}
}

// Enabled reports whether a webhook is configured.
func (a *Alerter) Enabled() bool {
	return a != nil && a.cfg.WebhookURL != ""
}

// Evaluate returns the alerts a finished run warrants.
func (a *Alerter) Evaluate(run *model.Run) []Alert {
	if run == nil {
		return nil
	}
	var alerts []Alert
	now := time.Now().UTC()

	if run.Status == model.RunStatusFailed {
		alerts = append(alerts, Alert{
			Type:      AlertRunFailed,
			Severity:  "high",
			RunID:     run.ID,
			Mode:      run.Mode,
			Message:   fmt.Sprintf("%s run failed: %s", run.Mode, run.Error),
			Timestamp: now,
		})
	}

	res := run.Result
	if res == nil {
		return alerts
	}

	if res.Detected > 0 && res.Detected >= a.cfg.MinDetections {
		alerts = append(alerts, Alert{
			Type:     AlertDetections,
			Severity: "info",
			RunID:    run.ID,
			Mode:     run.Mode,
			Message: fmt.Sprintf(
				"%d submission(s) linking to known misinformation domains across %d collection(s)",
				res.Detected, res.Collections,
			),
			Details: map[string]any{
				"detected":      res.Detected,
				"written":       res.Written,
				"domain_counts": res.DomainCounts,
			},
			Timestamp: now,
		})
	}

	if len(res.FailedCollections) > 0 {
		alerts = append(alerts, Alert{
			Type:     AlertCollectionFailures,
			Severity: "medium",
			RunID:    run.ID,
			Mode:     run.Mode,
			Message: fmt.Sprintf(
				"%d collection(s) skipped: %s",
				len(res.FailedCollections), strings.Join(res.FailedCollections, ", "),
			),
			Details: map[string]any{
				"failed_collections": res.FailedCollections,
			},
			Timestamp: now,
		})
	}

	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL.
// Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if !a.Enabled() || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		err := resilience.Do(ctx, a.retry, func(ctx context.Context) error {
			return a.sendWebhook(ctx, alert)
		})
		if err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		sent++
	}
	return sent
}

// Notify evaluates run and sends whatever it warrants.
func (a *Alerter) Notify(ctx context.Context, run *model.Run) int {
	if !a.Enabled() {
		return 0
	}
	return a.SendAlerts(ctx, a.Evaluate(run))
}

// sendWebhook posts a single alert to the webhook URL.
func (a *Alerter) sendWebhook(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resilience.StatusError("monitoring", resp.StatusCode, body)
	}
	return nil
}
