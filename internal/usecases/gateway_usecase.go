package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rentgengl/copilot-1c-proxy/internal/config"
	"github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"
	apperrors "github.com/rentgengl/copilot-1c-proxy/internal/domain/errors"
	"github.com/rentgengl/copilot-1c-proxy/internal/interfaces"
	"github.com/rentgengl/copilot-1c-proxy/internal/requestmeta"
)

// GatewayUsecase - сквозная обработка REST-запроса к объектам апстрима.
// Трансляция выполняется до аренды сессии: запрос с незнакомым ресурсом или
// битой схемой не должен породить ни одного вызова апстрима.
type GatewayUsecase struct {
	connector  interfaces.Connector
	translator interfaces.Translator
	audit      interfaces.AuditProducer
	log        *zap.Logger
	creds      entities.Credentials
}

func NewGatewayUsecase(cfg *config.AppConfig, connector interfaces.Connector, translator interfaces.Translator, audit interfaces.AuditProducer, log *zap.Logger) interfaces.GatewayUsecase {
	return &GatewayUsecase{
		connector:  connector,
		translator: translator,
		audit:      audit,
		log:        log.Named("gateway"),
		creds:      entities.Credentials{Token: cfg.Token},
	}
}

func (u *GatewayUsecase) HandleResource(ctx context.Context, envelope entities.RequestEnvelope) (entities.ResponseEnvelope, error) {
	started := time.Now()

	call, err := u.translator.ToNativeCall(envelope)
	if err != nil {
		u.publish(ctx, envelope, call, "", 0, err, started)
		return entities.ResponseEnvelope{}, err
	}

	session, err := u.connector.Acquire(ctx, u.creds, false)
	if err != nil {
		u.publish(ctx, envelope, call, "", 0, err, started)
		return entities.ResponseEnvelope{}, err
	}
	defer u.connector.Release(session)

	native, err := u.connector.Execute(ctx, u.creds, session, call)
	if err != nil {
		u.publish(ctx, envelope, call, session.Key, 0, err, started)
		return entities.ResponseEnvelope{}, err
	}

	response, err := u.translator.ToResponseEnvelope(call, native)
	if err != nil {
		u.publish(ctx, envelope, call, session.Key, 0, err, started)
		return entities.ResponseEnvelope{}, err
	}

	u.publish(ctx, envelope, call, session.Key, response.Status, nil, started)
	return response, nil
}

// publish собирает событие аудита обработанного запроса. Для ошибок статус
// выводится из вида ошибки - той же таблицей, что и HTTP-ответ.
func (u *GatewayUsecase) publish(ctx context.Context, envelope entities.RequestEnvelope, call entities.NativeCall, sessionKey string, status int, err error, started time.Time) {
	event := entities.AuditEvent{
		EventID:    uuid.New().String(),
		RequestID:  requestmeta.RequestID(ctx),
		Method:     envelope.Method,
		Resource:   envelope.Resource.Resource,
		Op:         string(call.Op),
		Status:     status,
		DurationMS: time.Since(started).Milliseconds(),
		SessionKey: sessionKey,
		Timestamp:  time.Now().UTC(),
	}
	if err != nil {
		kind := apperrors.KindOf(err)
		event.ErrorKind = string(kind)
		event.Status = apperrors.HTTPStatus(kind)
	}
	publishAudit(u.audit, u.log, event)
}
