package service

import (
	"context"
	"sync"
	"time"

	"ui-guide-go/internal/model"
	"ui-guide-go/pkg/log"
)

// HealthChecker 执行一次健康检查，不返回错误。
type HealthChecker interface {
	CheckHealth(ctx context.Context) model.HealthStatus
}

// StatusMonitor 按固定间隔检查远程服务状态，并把变化推送给订阅者。
type StatusMonitor struct {
	checker  HealthChecker
	interval time.Duration

	mu     sync.RWMutex
	status model.HealthStatus
	subs   map[chan model.HealthStatus]struct{}
}

// NewStatusMonitor 创建一个新的 StatusMonitor，初始状态为 checking。
func NewStatusMonitor(checker HealthChecker, interval time.Duration) *StatusMonitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StatusMonitor{
		checker:  checker,
		interval: interval,
		status:   model.HealthStatus{State: model.APIStateChecking, Message: "Checking API..."},
		subs:     make(map[chan model.HealthStatus]struct{}),
	}
}

// Current 返回最近一次的状态。
func (m *StatusMonitor) Current() model.HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Subscribe 返回一个只保留最新状态的通道和取消订阅函数。
func (m *StatusMonitor) Subscribe() (<-chan model.HealthStatus, func()) {
	ch := make(chan model.HealthStatus, 1)
	m.mu.Lock()
	m.subs[ch] = struct{}{}
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, ch)
			m.mu.Unlock()
		})
	}
}

// Refresh 立即检查一次并广播结果。
func (m *StatusMonitor) Refresh(ctx context.Context) model.HealthStatus {
	st := m.checker.CheckHealth(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	changed := st.State != m.status.State
	m.status = st
	for ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- st
	}
	if changed {
		log.Infow("assistant status changed", "state", st.State, "message", st.Message)
	}
	return st
}

// Run 立即检查一次，之后按间隔轮询直到 ctx 结束。
func (m *StatusMonitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Refresh(ctx)
		}
	}
}
