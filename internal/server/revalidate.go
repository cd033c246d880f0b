package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Revalidator tells the public site that content changed by POSTing
// {"secret": ...} to a webhook.
type Revalidator struct {
	url    string
	secret string
	client *http.Client
	logger *slog.Logger
}

// NewRevalidator returns a Revalidator; an empty url disables it.
func NewRevalidator(url, secret string, logger *slog.Logger) *Revalidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Revalidator{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Notify posts the webhook and logs the outcome. It reports whether the
// webhook answered 200.
func (v *Revalidator) Notify(ctx context.Context) bool {
	if v.url == "" {
		v.logger.Debug("REVALIDATION_URL is not set")
		return false
	}

	payload, _ := json.Marshal(map[string]string{"secret": v.secret})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(payload))
	if err != nil {
		v.logger.Error("building revalidation request", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Warn("Error triggering revalidation", "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.logger.Warn("Revalidation failed", "status", resp.StatusCode)
		return false
	}
	v.logger.Info("Revalidation triggered successfully")
	return true
}
