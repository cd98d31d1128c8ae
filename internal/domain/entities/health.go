package entities

// HealthStatus - состояние шлюза для эндпоинта /health.
type HealthStatus struct {
	Status         string `json:"status"`
	Upstream       string `json:"upstream,omitempty"`
	ActiveSessions int    `json:"active_sessions"`
}
