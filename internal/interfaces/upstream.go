package interfaces

import (
	"context"

	"github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"
)

// UpstreamClient определяет контракт клиента нативного протокола 1С:
// рукопожатие, операции над объектами и сообщения ассистенту. Реализация
// возвращает сырые ошибки протокола, нормализует их коннектор.
type UpstreamClient interface {
	CreateConversation(ctx context.Context, token, programmingLanguage string) (string, error)
	SendMessage(ctx context.Context, token, conversationID, instruction string) (string, error)
	EntityCall(ctx context.Context, token, sessionID string, call entities.NativeCall) (*entities.NativeResponse, error)
	Probe(ctx context.Context) error
}
