package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rentgengl/copilot-1c-proxy/internal/config"
	"github.com/rentgengl/copilot-1c-proxy/internal/domain/entities"
	apperrors "github.com/rentgengl/copilot-1c-proxy/internal/domain/errors"
	"github.com/rentgengl/copilot-1c-proxy/internal/interfaces"
	"github.com/rentgengl/copilot-1c-proxy/internal/requestmeta"
	"github.com/rentgengl/copilot-1c-proxy/internal/sanitize"
)

// Виды проверки кода и их описания для инструкции ассистенту.
var checkTypes = map[string]string{
	"syntax":      "синтаксические ошибки",
	"logic":       "логические ошибки и потенциальные проблемы",
	"performance": "проблемы производительности и оптимизации",
}

// AssistUsecase - обращения к ассистенту 1С.ai: вопросы, объяснение
// синтаксиса, проверка кода. Все три идут через общий пул сессий и
// возвращают очищенный от управляющих символов текст.
type AssistUsecase struct {
	connector interfaces.Connector
	audit     interfaces.AuditProducer
	log       *zap.Logger
	creds     entities.Credentials
}

func NewAssistUsecase(cfg *config.AppConfig, connector interfaces.Connector, audit interfaces.AuditProducer, log *zap.Logger) interfaces.AssistUsecase {
	return &AssistUsecase{
		connector: connector,
		audit:     audit,
		log:       log.Named("assist"),
		creds:     entities.Credentials{Token: cfg.Token},
	}
}

// AskAI отправляет вопрос ассистенту. create_new_session принудительно
// открывает новую дискуссию, programming_language уточняет рукопожатие.
func (u *AssistUsecase) AskAI(ctx context.Context, req entities.AskAIRequest) (string, error) {
	if strings.TrimSpace(req.Question) == "" {
		return "", apperrors.New(apperrors.KindSchemaMismatch, "Вопрос не может быть пустым")
	}

	creds := u.creds
	creds.ProgrammingLanguage = req.ProgrammingLanguage

	answer, session, err := u.send(ctx, "ask-ai", creds, req.CreateNewSession, req.Question)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Ответ от 1С.ai:\n\n%s\n\nСессия: %s", answer, session.ConversationID), nil
}

// ExplainSyntax просит ассистента объяснить элемент синтаксиса 1С.
func (u *AssistUsecase) ExplainSyntax(ctx context.Context, req entities.ExplainSyntaxRequest) (string, error) {
	if strings.TrimSpace(req.SyntaxElement) == "" {
		return "", apperrors.New(apperrors.KindSchemaMismatch, "Элемент синтаксиса не может быть пустым")
	}

	question := "Объясни синтаксис и использование: " + req.SyntaxElement
	if req.Context != "" {
		question += " в контексте: " + req.Context
	}

	answer, _, err := u.send(ctx, "explain-syntax", u.creds, false, question)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Объяснение синтаксиса '%s':\n\n%s", req.SyntaxElement, answer), nil
}

// CheckCode просит ассистента проверить код 1С на ошибки выбранного вида.
func (u *AssistUsecase) CheckCode(ctx context.Context, req entities.CheckCodeRequest) (string, error) {
	if strings.TrimSpace(req.Code) == "" {
		return "", apperrors.New(apperrors.KindSchemaMismatch, "Код для проверки не может быть пустым")
	}

	checkType := strings.ToLower(req.CheckType)
	if checkType == "" {
		checkType = "syntax"
	}
	desc, known := checkTypes[checkType]
	if !known {
		desc = "ошибки"
	}

	question := fmt.Sprintf("Проверь этот код 1С на %s и дай рекомендации:\n\n```1c\n%s\n```", desc, req.Code)

	answer, _, err := u.send(ctx, "check-code", u.creds, false, question)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Проверка кода на %s:\n\n%s", desc, answer), nil
}

// send выполняет полный цикл обращения к ассистенту: аренда сессии, отправка
// инструкции, очистка текста, событие аудита.
func (u *AssistUsecase) send(ctx context.Context, operation string, creds entities.Credentials, forceNew bool, instruction string) (string, *entities.Session, error) {
	started := time.Now()

	session, err := u.connector.Acquire(ctx, creds, forceNew)
	if err != nil {
		u.publish(ctx, operation, "", 0, err, started)
		return "", nil, err
	}
	defer u.connector.Release(session)

	call := entities.NativeCall{Op: entities.OpMessageSend, Instruction: instruction}
	native, err := u.connector.Execute(ctx, creds, session, call)
	if err != nil {
		u.publish(ctx, operation, session.Key, 0, err, started)
		return "", nil, err
	}

	u.publish(ctx, operation, session.Key, native.Status, nil, started)
	return sanitize.Clean(native.Text), session, nil
}

func (u *AssistUsecase) publish(ctx context.Context, operation, sessionKey string, status int, err error, started time.Time) {
	event := entities.AuditEvent{
		EventID:    uuid.New().String(),
		RequestID:  requestmeta.RequestID(ctx),
		Method:     "POST",
		Resource:   operation,
		Op:         string(entities.OpMessageSend),
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
