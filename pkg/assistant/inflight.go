package assistant

import (
	"context"
	"sync"

	"ui-guide-go/pkg/metrics"
)

// Token identifies one in-flight ask within a scope.
type Token struct {
	key    string
	scope  string
	cancel context.CancelFunc
}

// Tracker keeps at most one current ask per key. Beginning a new ask for a
// key cancels the previous one, whose result must then be discarded.
type Tracker struct {
	mu      sync.Mutex
	current map[string]*Token
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{current: make(map[string]*Token)}
}

// Begin registers a new ask for scope/id and returns the context it must run under.
func (t *Tracker) Begin(parent context.Context, scope, id string) (context.Context, *Token) {
	ctx, cancel := context.WithCancel(parent)
	key := scope + ":" + id

	t.mu.Lock()
	defer t.mu.Unlock()
	tok := &Token{key: key, scope: scope, cancel: cancel}
	if prev, ok := t.current[key]; ok {
		prev.cancel()
		metrics.SupersededTotal.WithLabelValues(scope).Inc()
	}
	t.current[key] = tok
	return ctx, tok
}

// IsCurrent reports whether tok has not been superseded or canceled.
func (t *Tracker) IsCurrent(tok *Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current[tok.key] == tok
}

// End releases tok. It is a no-op for a superseded token.
func (t *Tracker) End(tok *Token) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current[tok.key] == tok {
		delete(t.current, tok.key)
	}
	tok.cancel()
}

// Cancel aborts the current ask for scope/id, if any.
func (t *Tracker) Cancel(scope, id string) bool {
	key := scope + ":" + id
	t.mu.Lock()
	defer t.mu.Unlock()
	tok, ok := t.current[key]
	if !ok {
		return false
	}
	delete(t.current, key)
	tok.cancel()
	return true
}
