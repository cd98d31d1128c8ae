package usecases

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rentgengl/copilot-1c-proxy/internal/config"
	"github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"
	"github.com/rentgengl/copilot-1c-proxy/internal/interfaces"
)

// Предельное время публикации одного события аудита.
const auditPublishTimeout = 5 * time.Second

// UseCases - агрегатор всех use case интерфейсов
type UseCases struct {
	interfaces.GatewayUsecase
	interfaces.AssistUsecase
	interfaces.SessionUsecase
}

// NewUsecases - конструктор для UseCases
func NewUsecases(
	cfg *config.AppConfig,
	connector interfaces.Connector,
	translator interfaces.Translator,
	sessions interfaces.SessionService,
	client interfaces.UpstreamClient,
	producer interfaces.AuditProducer,
	log *zap.Logger,
) interfaces.Usecases {
	return &UseCases{
		GatewayUsecase: NewGatewayUsecase(cfg, connector, translator, producer, log),
		AssistUsecase:  NewAssistUsecase(cfg, connector, producer, log),
		SessionUsecase: NewSessionUsecase(sessions, client),
	}
}

// publishAudit отправляет событие аудита в фоне: публикация не должна
// задерживать ответ клиенту, ошибка публикации не влияет на результат запроса.
func publishAudit(producer interfaces.AuditProducer, log *zap.Logger, event entities.AuditEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditPublishTimeout)
		defer cancel()
		if err := producer.Produce(ctx, event); err != nil {
			log.Warn("не удалось опубликовать событие аудита",
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
		}
	}()
}
