package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// ErrorKind classifies a failed ask.
type ErrorKind string

const (
	KindTimeout            ErrorKind = "timeout"
	KindNetworkUnavailable ErrorKind = "network_unavailable"
	KindServerError        ErrorKind = "server_error"
	KindClientError        ErrorKind = "client_error"
	KindCanceled           ErrorKind = "canceled"
)

// Error is returned by Ask for every failure. TraceID and Details are copied
// from the remote error payload when it carries them.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	TraceID string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("assistant %s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("assistant %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsCanceled reports whether err is a canceled ask.
func IsCanceled(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindCanceled
}

// IsTransient reports whether err may succeed on retry: no response was
// received, or the gateway answered 502, 503 or 504.
func IsTransient(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	switch e.Kind {
	case KindTimeout, KindNetworkUnavailable:
		return true
	case KindServerError:
		return e.Status == http.StatusBadGateway ||
			e.Status == http.StatusServiceUnavailable ||
			e.Status == http.StatusGatewayTimeout
	}
	return false
}

// canceledError builds the outcome of a request abandoned by its caller.
func canceledError(err error) *Error {
	return &Error{Kind: KindCanceled, Message: "Request canceled", Err: err}
}

// classifyTransportError maps a failed round trip. parent is the caller's
// context; its cancellation wins over any per-attempt timeout.
func classifyTransportError(parent context.Context, err error) *Error {
	if pe := parent.Err(); pe != nil {
		if errors.Is(pe, context.Canceled) {
			return canceledError(err)
		}
		return &Error{Kind: KindTimeout, Message: "The request timed out. Please try again.", Err: err}
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: KindTimeout, Message: "The request timed out. Please try again.", Err: err}
	}
	return &Error{
		Kind:    KindNetworkUnavailable,
		Message: "Unable to reach the server. Please try again.",
		Err:     err,
	}
}

// statusError maps a non-2xx response using its body when it is a JSON error payload.
func statusError(status int, body []byte) *Error {
	kind := KindClientError
	if status >= 500 {
		kind = KindServerError
	}
	msg, traceID, details := parseErrorPayload(body)
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	return &Error{Kind: kind, Status: status, Message: msg, TraceID: traceID, Details: details}
}

// parseErrorPayload accepts {"error":{...}}, {"error":"..."}, {"message":"..."}
// and {"detail":...} bodies.
func parseErrorPayload(body []byte) (message, traceID, details string) {
	var root map[string]any
	if err := json.Unmarshal(body, &root); err != nil {
		return "", "", ""
	}
	payload := root
	nested, isNested := root["error"].(map[string]any)
	if isNested {
		payload = nested
	}
	message = firstString(payload, "message", "error", "detail")
	if message == "" && isNested {
		message = firstString(root, "message", "detail")
	}
	traceID = firstString(payload, "trace_id", "traceId")
	if traceID == "" {
		traceID = firstString(root, "trace_id", "traceId")
	}
	details = textOf(payload["details"])
	return message, traceID, details
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := textOf(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// textOf renders strings verbatim and any other non-nil JSON value as JSON.
func textOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		if len(t) == 0 {
			return ""
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
