package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sourcegraph/conc"

	"ui-guide-go/internal/model"
	"ui-guide-go/pkg/log"
	"ui-guide-go/pkg/metrics"
)

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

// CheckHealth probes GET /health and GET / concurrently. The root probe only
// contributes a version string.
func (c *HTTPClient) CheckHealth(ctx context.Context) model.HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	var (
		status  model.HealthStatus
		version string
		wg      conc.WaitGroup
	)
	wg.Go(func() {
		status = c.probeHealth(ctx)
	})
	wg.Go(func() {
		version = c.probeVersion(ctx)
	})
	wg.Wait()

	if status.Version == "" {
		status.Version = version
	}
	status.CheckedAt = model.LocalTime(time.Now())

	latency := int64(-1)
	if status.LatencyMs != nil {
		latency = *status.LatencyMs
	}
	metrics.RecordHealth(string(status.State), StateLabels, latency)
	return status
}

// StateLabels lists every state reported by CheckHealth.
var StateLabels = []string{
	string(model.APIStateOnline),
	string(model.APIStateDegraded),
	string(model.APIStateOffline),
}

func (c *HTTPClient) probeHealth(ctx context.Context) model.HealthStatus {
	start := time.Now()
	body, code, err := c.get(ctx, "/health")
	if err != nil {
		log.Warnw("health probe failed", "error", err)
		return model.HealthStatus{State: model.APIStateOffline, Message: "Offline"}
	}
	latency := time.Since(start).Milliseconds()

	if code < 200 || code > 299 {
		return model.HealthStatus{
			State:     model.APIStateDegraded,
			Message:   fmt.Sprintf("Health check returned status %d", code),
			LatencyMs: &latency,
		}
	}

	var payload healthResponse
	_ = json.Unmarshal(body, &payload)
	switch payload.Status {
	case "", "healthy":
		// 缺少 status 字段时按健康处理
		return model.HealthStatus{State: model.APIStateOnline, Message: orDefault(payload.Message, "Connected"), LatencyMs: &latency, Version: payload.Version}
	default:
		return model.HealthStatus{
			State:     model.APIStateDegraded,
			Message:   orDefault(payload.Message, "Service reported status "+payload.Status),
			LatencyMs: &latency,
			Version:   payload.Version,
		}
	}
}

func (c *HTTPClient) probeVersion(ctx context.Context) string {
	body, code, err := c.get(ctx, "/")
	if err != nil || code < 200 || code > 299 {
		return ""
	}
	var payload healthResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Version
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
