package interfaces

import (
	"context"

	"github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"
)

// Connector определяет контракт коннектора бэкенда: аренда сессии апстрима,
// выполнение нативного вызова и возврат сессии в пул. Все ошибки коннектора
// нормализованы в таксономию domain/errors.
type Connector interface {
	// Acquire выдает живую сессию для учетных данных, при необходимости
	// выполняя рукопожатие. forceNew принудительно создает новую сессию.
	Acquire(ctx context.Context, creds entities.Credentials, forceNew bool) (*entities.Session, error)
	// Execute выполняет вызов в рамках сессии. При истечении аутентификации
	// прозрачно пересоздает сессию и повторяет вызов ровно один раз.
	Execute(ctx context.Context, creds entities.Credentials, session *entities.Session, call entities.NativeCall) (*entities.NativeResponse, error)
	// Release возвращает сессию в пул. Только локальный учет, без сети.
	Release(session *entities.Session)
}
