package model

// APIState 是远程服务的可用状态。
type APIState string

const (
	APIStateChecking APIState = "checking"
	APIStateOnline   APIState = "online"
	APIStateDegraded APIState = "degraded"
	APIStateOffline  APIState = "offline"
)

// HealthStatus 是一次健康检查的结果。
type HealthStatus struct {
	State     APIState  `json:"state"`
	Message   string    `json:"message"`
	LatencyMs *int64    `json:"latencyMs"`
	Version   string    `json:"version,omitempty"`
	CheckedAt LocalTime `json:"checkedAt"`
}
