package interfaces

import (
	"context"

	"github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"
)

// Usecases - это агрегирующий интерфейс для всех use cases
type Usecases interface {
	GatewayUsecase
	AssistUsecase
	SessionUsecase
}

// GatewayUsecase определяет контракт для сквозной обработки REST-запроса
// к объектам апстрима: аренда сессии, трансляция, выполнение, обратная
// трансляция, возврат сессии.
type GatewayUsecase interface {
	HandleResource(ctx context.Context, envelope entities.RequestEnvelope) (entities.ResponseEnvelope, error)
}

// AssistUsecase определяет контракт для обращений к ассистенту 1С.ai.
type AssistUsecase interface {
	AskAI(ctx context.Context, req entities.AskAIRequest) (string, error)
	ExplainSyntax(ctx context.Context, req entities.ExplainSyntaxRequest) (string, error)
	CheckCode(ctx context.Context, req entities.CheckCodeRequest) (string, error)
}

// SessionUsecase определяет контракт для администрирования пула сессий
// и проверки состояния шлюза.
type SessionUsecase interface {
	Sessions() []entities.SessionInfo
	DropSession(key string) bool
	Health(ctx context.Context, probe bool) entities.HealthStatus
}
