package services

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rentgengl/copilot-1c-proxy/internal/config"
	"github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"
	apperrors "github.com/rentgengl/copilot-1c-proxy/internal/domain/errors"
	"github.com/rentgengl/copilot-1c-proxy/internal/interfaces"
	"github.com/rentgengl/copilot-1c-proxy/internal/metrics"
	"github.com/rentgengl/copilot-1c-proxy/internal/onec"
)

// ConnectorService - коннектор бэкенда. Поверх клиента нативного протокола
// добавляет аренду сессий, предельное время вызова, одну прозрачную повторную
// попытку при истечении аутентификации и нормализацию ошибок в таксономию
// domain/errors.
type ConnectorService struct {
	sessions interfaces.SessionService
	client   interfaces.UpstreamClient
	metrics  *metrics.Metrics
	log      *zap.Logger
	timeout  time.Duration
}

func NewConnectorService(cfg *config.AppConfig, sessions interfaces.SessionService, client interfaces.UpstreamClient, m *metrics.Metrics, log *zap.Logger) interfaces.Connector {
	return &ConnectorService{
		sessions: sessions,
		client:   client,
		metrics:  m,
		log:      log.Named("connector"),
		timeout:  cfg.UpstreamTimeout(),
	}
}

// Acquire выдает сессию из пула, нормализуя ошибки рукопожатия.
func (s *ConnectorService) Acquire(ctx context.Context, creds entities.Credentials, forceNew bool) (*entities.Session, error) {
	session, err := s.sessions.Acquire(ctx, creds, forceNew)
	if err != nil {
		mapped := s.toDomain(err, false)
		s.metrics.UpstreamCall("handshake", string(apperrors.KindOf(mapped)))
		return nil, mapped
	}
	return session, nil
}

// Execute выполняет нативный вызов в рамках сессии. Истечение аутентификации
// обрабатывается прозрачно: сессия аннулируется, создается новая, вызов
// повторяется ровно один раз. Второго повтора не бывает.
func (s *ConnectorService) Execute(ctx context.Context, creds entities.Credentials, session *entities.Session, call entities.NativeCall) (*entities.NativeResponse, error) {
	resp, err := s.attempt(ctx, creds.Token, session, call)
	s.observe(call, err)
	if err == nil {
		return resp, nil
	}

	if !onec.IsAuthExpired(err) {
		s.invalidateOnTransportFailure(err, session)
		return nil, s.toDomain(err, entityOp(call))
	}

	s.log.Info("аутентификация сессии истекла, пересоздание",
		zap.String("session_key", session.Key),
	)
	s.sessions.Invalidate(session.Key)

	fresh, aerr := s.sessions.Acquire(ctx, creds, false)
	if aerr != nil {
		return nil, s.toDomain(aerr, false)
	}
	defer s.sessions.Release(fresh)

	resp, err = s.attempt(ctx, creds.Token, fresh, call)
	s.observe(call, err)
	if err == nil {
		return resp, nil
	}
	if onec.IsAuthRejected(err) {
		// Отказ сразу после свежего рукопожатия - учетные данные недействительны.
		s.sessions.Invalidate(fresh.Key)
		return nil, apperrors.Wrap(apperrors.KindAuthentication, "апстрим отверг учетные данные", err)
	}
	s.invalidateOnTransportFailure(err, fresh)
	return nil, s.toDomain(err, entityOp(call))
}

// Release возвращает сессию в пул. Только локальный учет.
func (s *ConnectorService) Release(session *entities.Session) {
	s.sessions.Release(session)
}

// observe учитывает исход одного вызова апстрима.
func (s *ConnectorService) observe(call entities.NativeCall, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(apperrors.KindOf(s.toDomain(err, entityOp(call))))
	}
	s.metrics.UpstreamCall(string(call.Op), outcome)
}

// attempt выполняет один вызов апстрима с предельным временем.
func (s *ConnectorService) attempt(ctx context.Context, token string, session *entities.Session, call entities.NativeCall) (*entities.NativeResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if call.Op == entities.OpMessageSend {
		text, err := s.client.SendMessage(callCtx, token, session.ConversationID, call.Instruction)
		if err != nil {
			return nil, err
		}
		return &entities.NativeResponse{Status: http.StatusOK, Text: text}, nil
	}
	return s.client.EntityCall(callCtx, token, session.ConversationID, call)
}

// invalidateOnTransportFailure аннулирует сессию, если ответ апстрима не был
// получен: состояние сессии на той стороне неизвестно. Чистые HTTP-ошибки
// сессию не трогают.
func (s *ConnectorService) invalidateOnTransportFailure(err error, session *entities.Session) {
	var apiErr *onec.APIError
	if errors.As(err, &apiErr) || errors.Is(err, onec.ErrBadPayload) {
		return
	}
	s.sessions.Invalidate(session.Key)
	s.log.Warn("сессия аннулирована из-за сбоя вызова",
		zap.String("session_key", session.Key),
		zap.Error(err),
	)
}

// toDomain нормализует ошибку клиента апстрима в таксономию шлюза.
// onEntity различает 404: для операций над объектами это незнакомый объект,
// для остальных - нарушение протокола.
func (s *ConnectorService) toDomain(err error, onEntity bool) error {
	var apiErr *onec.APIError
	switch {
	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		switch {
		case onec.IsAuthRejected(err):
			return apperrors.Wrap(apperrors.KindAuthentication, "апстрим отверг учетные данные", err)
		case status == http.StatusNotFound && onEntity:
			return apperrors.Wrap(apperrors.KindUnknownResource, "объект не найден в апстриме", err)
		case status >= 500:
			return apperrors.Wrap(apperrors.KindUpstreamUnavailable, "апстрим недоступен", err)
		default:
			return apperrors.Wrap(apperrors.KindUpstreamProtocol, "апстрим нарушил протокол обмена", err)
		}
	case errors.Is(err, onec.ErrBadPayload):
		return apperrors.Wrap(apperrors.KindUpstreamProtocol, "апстрим вернул некорректный ответ", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.Wrap(apperrors.KindUpstreamTimeout, "апстрим не ответил вовремя", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.Wrap(apperrors.KindUpstreamTimeout, "апстрим не ответил вовремя", err)
	}
	return apperrors.Wrap(apperrors.KindUpstreamUnavailable, "апстрим недоступен", err)
}

// entityOp сообщает, выполняется ли вызов над объектом апстрима.
func entityOp(call entities.NativeCall) bool {
	return call.Op != entities.OpMessageSend
}
