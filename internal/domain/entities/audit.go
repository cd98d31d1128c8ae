package entities

import "time"

// AuditEvent - одна запись аудита обработанного запроса, публикуемая во
// внешнюю шину. Сырой токен и тексты апстрима в событие не попадают.
type AuditEvent struct {
	EventID    string    `json:"event_id"`
	RequestID  string    `json:"request_id"`
	Method     string    `json:"method"`
	Resource   string    `json:"resource"`
	Op         string    `json:"op"`
	Status     int       `json:"status"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	SessionKey string    `json:"session_key,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
