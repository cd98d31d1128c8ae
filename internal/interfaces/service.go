package interfaces

import (
	"context"

	"github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"
)

// SessionService определяет контракт для управления пулом сессий апстрима.
type SessionService interface {
	// Acquire возвращает живую сессию для учетных данных: из пула либо через
	// рукопожатие. Параллельные вызовы с одним ключом делят одно рукопожатие.
	Acquire(ctx context.Context, creds entities.Credentials, forceNew bool) (*entities.Session, error)
	// Release фиксирует завершение использования сессии.
	Release(session *entities.Session)
	// Invalidate помечает сессию недействительной и убирает ее из пула.
	Invalidate(key string) bool
	// Sessions возвращает снимки всех сессий пула.
	Sessions() []entities.SessionInfo
	// Sweep убирает из пула сессии с истекшим сроком жизни.
	Sweep() int
	// Shutdown очищает пул при остановке приложения.
	Shutdown()
}

// Janitor определяет контракт фонового процесса, периодически чистящего пул.
type Janitor interface {
	Start()
	Stop()
}
