package assistant

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ui-guide-go/internal/config"
	"ui-guide-go/internal/model"
)

func newTestClient(t *testing.T, h http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.AssistantConfig{
		BaseURL:        srv.URL + "/",
		TimeoutSeconds: 5,
		MaxRetries:     2,
		RetryDelayMs:   1,
	})
}

type retryLog struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *retryLog) record(_ int, d time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
}

func TestAskSuccessDecodesAnswer(t *testing.T) {
	var got AskRequest
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"Go to the portal.","used_retriever":true,"thread_id":"chat_1",
			"sources":[{"document":"Handbook","page":12},{"document":"Policy","page":"iv"}]}`))
	}))

	ans, err := c.Ask(context.Background(), AskRequest{Message: "how?", ThreadID: "chat_1", Mode: "chat", Verbosity: "concise"})
	require.NoError(t, err)

	assert.Equal(t, "how?", got.Message)
	assert.Equal(t, "chat_1", got.ThreadID)
	assert.Equal(t, "chat", got.Mode)
	assert.Equal(t, "concise", got.Verbosity)

	assert.Equal(t, "Go to the portal.", ans.Answer)
	assert.True(t, ans.UsedRetriever)
	assert.Equal(t, "chat_1", ans.ThreadID)
	require.Len(t, ans.Sources, 2)
	assert.Equal(t, model.FlexString("12"), ans.Sources[0].Page)
	assert.Equal(t, model.FlexString("iv"), ans.Sources[1].Page)
}

func TestAskDefaultsMissingFields(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))

	ans, err := c.Ask(context.Background(), AskRequest{Message: "hi", ThreadID: "chat_9"})
	require.NoError(t, err)
	assert.Equal(t, NoResponsePlaceholder, ans.Answer)
	assert.False(t, ans.UsedRetriever)
	assert.NotNil(t, ans.Sources)
	assert.Empty(t, ans.Sources)
	assert.Equal(t, "chat_9", ans.ThreadID)
}

func TestAskRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","trace_id":"t-503"}}`))
	}))
	rl := &retryLog{}
	c.onRetry = rl.record

	_, err := c.Ask(context.Background(), AskRequest{Message: "hi", ThreadID: "x"})
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindServerError, apiErr.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, "overloaded", apiErr.Message)
	assert.Equal(t, "t-503", apiErr.TraceID)

	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, rl.delays, 2)
	assert.Less(t, rl.delays[0], rl.delays[1])
}

func TestAskRecoversAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"answer":"ok"}`))
	}))

	ans, err := c.Ask(context.Background(), AskRequest{Message: "hi", ThreadID: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", ans.Answer)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAskDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Not Found"}`))
	}))
	rl := &retryLog{}
	c.onRetry = rl.record

	_, err := c.Ask(context.Background(), AskRequest{Message: "hi", ThreadID: "x"})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindClientError, apiErr.Kind)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Not Found", apiErr.Message)
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, rl.delays)
}

func TestAskDoesNotRetryInternalServerError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.Ask(context.Background(), AskRequest{Message: "hi", ThreadID: "x"})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindServerError, apiErr.Kind)
	assert.Equal(t, "request failed with status 500", apiErr.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAskTimeout(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.ReadAll(r.Body)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	c.timeout = 50 * time.Millisecond
	c.maxRetries = 0

	_, err := c.Ask(context.Background(), AskRequest{Message: "hi", ThreadID: "x"})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindTimeout, apiErr.Kind)
	assert.True(t, IsTransient(err))
}

func TestAskCanceledByCaller(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// net/http only notices the client going away once the body is consumed.
		_, _ = io.ReadAll(r.Body)
		close(started)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	// Registered after newTestClient, so it runs before srv.Close.
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := c.Ask(ctx, AskRequest{Message: "hi", ThreadID: "x"})
	require.Error(t, err)
	assert.True(t, IsCanceled(err))
	assert.False(t, IsTransient(err))
}

func TestAskNetworkUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(config.AssistantConfig{BaseURL: url, TimeoutSeconds: 1, MaxRetries: 1, RetryDelayMs: 1})
	rl := &retryLog{}
	c.onRetry = rl.record

	_, err := c.Ask(context.Background(), AskRequest{Message: "hi", ThreadID: "x"})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindNetworkUnavailable, apiErr.Kind)
	assert.Len(t, rl.delays, 1)
}

func TestParseErrorPayloadShapes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
		traceID string
		details string
	}{
		{"nested", `{"error":{"message":"bad","trace_id":"abc","details":"row 3"}}`, "bad", "abc", "row 3"},
		{"flat string", `{"error":"rate limited","traceId":"t1"}`, "rate limited", "t1", ""},
		{"message", `{"message":"nope"}`, "nope", "", ""},
		{"fastapi", `{"detail":"Not Found"}`, "Not Found", "", ""},
		{"structured details", `{"error":{"message":"invalid","details":{"field":"task"}}}`, "invalid", "", `{"field":"task"}`},
		{"not json", `<html>bad gateway</html>`, "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, trace, details := parseErrorPayload([]byte(tt.body))
			assert.Equal(t, tt.message, msg)
			assert.Equal(t, tt.traceID, trace)
			assert.Equal(t, tt.details, details)
		})
	}
}

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		state   model.APIState
		version string
	}{
		{
			name: "healthy",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/health" {
					_, _ = w.Write([]byte(`{"status":"healthy"}`))
					return
				}
				_, _ = w.Write([]byte(`{"status":"ok","version":"1.4.0"}`))
			},
			state:   model.APIStateOnline,
			version: "1.4.0",
		},
		{
			name: "degraded",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"status":"loading"}`))
			},
			state: model.APIStateDegraded,
		},
		{
			name: "error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			state: model.APIStateDegraded,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			st := c.CheckHealth(context.Background())
			assert.Equal(t, tt.state, st.State)
			assert.Equal(t, tt.version, st.Version)
			assert.NotNil(t, st.LatencyMs)
		})
	}
}

func TestCheckHealthOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(config.AssistantConfig{BaseURL: url, TimeoutSeconds: 1})
	st := c.CheckHealth(context.Background())
	assert.Equal(t, model.APIStateOffline, st.State)
	assert.Nil(t, st.LatencyMs)
}

func TestTrackerSupersedes(t *testing.T) {
	tr := NewTracker()

	ctx1, tok1 := tr.Begin(context.Background(), "chat", "c1")
	ctx2, tok2 := tr.Begin(context.Background(), "chat", "c1")
	_, other := tr.Begin(context.Background(), "chat", "c2")

	assert.ErrorIs(t, ctx1.Err(), context.Canceled)
	assert.NoError(t, ctx2.Err())
	assert.False(t, tr.IsCurrent(tok1))
	assert.True(t, tr.IsCurrent(tok2))
	assert.True(t, tr.IsCurrent(other))

	tr.End(tok1)
	assert.True(t, tr.IsCurrent(tok2))

	assert.True(t, tr.Cancel("chat", "c1"))
	assert.False(t, tr.IsCurrent(tok2))
	assert.False(t, tr.Cancel("chat", "c1"))
}
