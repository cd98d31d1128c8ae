package usecases

import (
	"context"
	"time"

	"github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"
	"github.com/rentgengl/copilot-1c-proxy/internal/interfaces"
)

// Предельное время проверки апстрима для /health: проба не должна висеть
// дольше, чем живет интерес балансировщика к ответу.
const probeTimeout = 5 * time.Second

// SessionUsecase - администрирование пула сессий и проверка состояния шлюза.
type SessionUsecase struct {
	sessions interfaces.SessionService
	client   interfaces.UpstreamClient
}

func NewSessionUsecase(sessions interfaces.SessionService, client interfaces.UpstreamClient) interfaces.SessionUsecase {
	return &SessionUsecase{sessions: sessions, client: client}
}

// Sessions возвращает снимки всех активных сессий.
func (u *SessionUsecase) Sessions() []entities.SessionInfo {
	return u.sessions.Sessions()
}

// DropSession принудительно аннулирует сессию по ключу.
func (u *SessionUsecase) DropSession(key string) bool {
	return u.sessions.Invalidate(key)
}

// Health возвращает состояние шлюза. С probe дополнительно проверяет
// достижимость апстрима.
func (u *SessionUsecase) Health(ctx context.Context, probe bool) entities.HealthStatus {
	status := entities.HealthStatus{
		Status:         "ok",
		ActiveSessions: len(u.sessions.Sessions()),
	}
	if !probe {
		return status
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := u.client.Probe(probeCtx); err != nil {
		status.Status = "degraded"
		status.Upstream = "unreachable"
		return status
	}
	status.Upstream = "ok"
	return status
}
