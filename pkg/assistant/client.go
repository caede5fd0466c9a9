// Package assistant provides a client for the remote policy assistant service.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"ui-guide-go/internal/config"
	"ui-guide-go/internal/model"
	"ui-guide-go/pkg/log"
	"ui-guide-go/pkg/metrics"
)

// NoResponsePlaceholder replaces an empty answer from the service.
const NoResponsePlaceholder = "No response received."

const (
	defaultTimeout       = 60 * time.Second
	defaultRetryDelay    = 600 * time.Millisecond
	defaultHealthTimeout = 10 * time.Second
	maxResponseBytes     = 4 << 20
)

// Client defines the interface for the assistant client.
type Client interface {
	// Ask sends one chat turn. Failures are always *Error.
	Ask(ctx context.Context, req AskRequest) (*Answer, error)
	// CheckHealth never fails; problems are reported through the returned state.
	CheckHealth(ctx context.Context) model.HealthStatus
}

// AskRequest is the body of POST /chat.
type AskRequest struct {
	Message   string `json:"message"`
	ThreadID  string `json:"thread_id"`
	Mode      string `json:"mode,omitempty"`
	Context   string `json:"context,omitempty"`
	Verbosity string `json:"verbosity,omitempty"`
}

// Answer is a chat response with every optional field filled in.
type Answer struct {
	Answer        string           `json:"answer"`
	UsedRetriever bool             `json:"usedRetriever"`
	Sources       []model.Citation `json:"sources"`
	ThreadID      string           `json:"threadId"`
}

type chatResponse struct {
	Answer        string           `json:"answer"`
	UsedRetriever bool             `json:"used_retriever"`
	ThreadID      string           `json:"thread_id"`
	Sources       []model.Citation `json:"sources"`
}

// RetryFunc observes a retry before its delay starts.
type RetryFunc func(attempt int, delay time.Duration, err error)

// HTTPClient talks to the assistant over plain request/response HTTP.
type HTTPClient struct {
	baseURL       string
	client        *http.Client
	timeout       time.Duration
	healthTimeout time.Duration
	maxRetries    int
	retryDelay    time.Duration
	onRetry       RetryFunc
}

// NewClient creates a new assistant client from the config.
func NewClient(cfg config.AssistantConfig) *HTTPClient {
	c := &HTTPClient{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		client:        &http.Client{},
		timeout:       cfg.Timeout(),
		healthTimeout: defaultHealthTimeout,
		maxRetries:    cfg.MaxRetries,
		retryDelay:    cfg.RetryDelay(),
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.retryDelay <= 0 {
		c.retryDelay = defaultRetryDelay
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if c.healthTimeout > c.timeout {
		c.healthTimeout = c.timeout
	}
	return c
}

// Ask calls POST /chat, retrying transient failures with a linearly growing delay.
func (c *HTTPClient) Ask(ctx context.Context, req AskRequest) (*Answer, error) {
	start := time.Now()
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	var resp chatResponse
	attempt := 0
	operation := func() error {
		attempt++
		r, err := c.postChat(ctx, body)
		if err != nil {
			if IsTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		resp = r
		return nil
	}
	notify := func(err error, delay time.Duration) {
		metrics.AskRetriesTotal.WithLabelValues(modeLabel(req.Mode)).Inc()
		log.Warnw("retrying assistant request", "attempt", attempt, "maxRetries", c.maxRetries, "delay", delay.String(), "error", err)
		if c.onRetry != nil {
			c.onRetry(attempt, delay, err)
		}
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(newLinearBackOff(c.retryDelay), uint64(c.maxRetries)), ctx)

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		apiErr := asError(ctx, err)
		metrics.RecordAsk(modeLabel(req.Mode), string(apiErr.Kind), time.Since(start))
		return nil, apiErr
	}
	metrics.RecordAsk(modeLabel(req.Mode), "success", time.Since(start))

	answer := &Answer{
		Answer:        resp.Answer,
		UsedRetriever: resp.UsedRetriever,
		Sources:       resp.Sources,
		ThreadID:      resp.ThreadID,
	}
	if answer.Answer == "" {
		answer.Answer = NoResponsePlaceholder
	}
	if answer.Sources == nil {
		answer.Sources = []model.Citation{}
	}
	if answer.ThreadID == "" {
		answer.ThreadID = req.ThreadID
	}
	return answer, nil
}

// postChat performs a single attempt bounded by the per-request timeout.
func (c *HTTPClient) postChat(ctx context.Context, body []byte) (chatResponse, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return chatResponse{}, &Error{Kind: KindClientError, Message: "failed to create chat request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return chatResponse{}, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return chatResponse{}, classifyTransportError(ctx, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return chatResponse{}, statusError(resp.StatusCode, raw)
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			// 无法解析的成功响应按空响应处理，由默认值兜底
			log.Warnw("assistant returned an unreadable body", "status", resp.StatusCode, "error", err)
			return chatResponse{}, nil
		}
	}
	return out, nil
}

// asError normalizes whatever the retry loop returned into *Error.
func asError(ctx context.Context, err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Kind != KindCanceled && errors.Is(ctx.Err(), context.Canceled) {
			return canceledError(err)
		}
		return apiErr
	}
	if errors.Is(err, context.Canceled) {
		return canceledError(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "The request timed out. Please try again.", Err: err}
	}
	return &Error{Kind: KindNetworkUnavailable, Message: err.Error(), Err: err}
}

func modeLabel(mode string) string {
	if mode == "" {
		return "default"
	}
	return mode
}

// linearBackOff waits base, 2*base, 3*base, ...
type linearBackOff struct {
	base    time.Duration
	attempt int
}

func newLinearBackOff(base time.Duration) *linearBackOff {
	return &linearBackOff{base: base}
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return b.base * time.Duration(b.attempt)
}

func (b *linearBackOff) Reset() { b.attempt = 0 }
