package interfaces

import (
	"context"

	"github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"
)

// AuditProducer определяет контракт для публикации событий аудита во внешние
// системы (например, Kafka).
type AuditProducer interface {
	Produce(ctx context.Context, event entities.AuditEvent) error
	Close() error
}
