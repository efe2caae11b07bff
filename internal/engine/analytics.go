package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// eventOrganization is fired after every successful organize request.
const eventOrganization = "task_organization"

// AnalyticsClient talks to the usage-tracking HTTP API.
type AnalyticsClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewAnalyticsClient creates an analytics client.
func NewAnalyticsClient(baseURL, apiKey string) *AnalyticsClient {
	return &AnalyticsClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Track sends a single named event keyed by user/company identity.
func (c *AnalyticsClient) Track(ctx context.Context, event, userID string) error {
	body := map[string]any{
		"event":   event,
		"company": map[string]string{"id": userID},
		"user":    map[string]string{"id": userID},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("analytics: marshal: %w", err)
	}

	resp, err := RetryHTTP(ctx, DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/events", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		return c.http.Do(req)
	})
	if err != nil {
		return fmt.Errorf("analytics: track %s: %w", event, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("analytics: track %s: status %d: %s", event, resp.StatusCode, b)
	}
	return nil
}

// TrackOrganization fires the organization event without blocking the
// caller. Tracking is strictly one-way: a failed or slow analytics call is
// logged and counted, never surfaced as a failure of the organize request
// that triggered it.
func TrackOrganization(userID string) {
	if cfg.Analytics == nil {
		return
	}
	metricTrackEvents.Add(1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := cfg.Analytics.Track(ctx, eventOrganization, userID); err != nil {
			metricTrackErrors.Add(1)
			slog.Warn("analytics: track failed", slog.Any("error", err))
		}
	}()
}
