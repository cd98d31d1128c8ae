package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind классифицирует ошибки шлюза.
type Kind string

const (
	KindAuthentication      Kind = "authentication"
	KindUnknownResource     Kind = "unknown_resource"
	KindSchemaMismatch      Kind = "schema_mismatch"
	KindUpstreamTimeout     Kind = "upstream_timeout"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindUpstreamProtocol    Kind = "upstream_protocol"
	KindInternal            Kind = "internal"
)

// Error - нормализованная ошибка шлюза. Текст исходной ошибки апстрима
// никогда не попадает в Message: он доступен только через Unwrap и уходит в лог.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New создает нормализованную ошибку без исходной причины.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf создает нормализованную ошибку с форматированием сообщения.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap оборачивает исходную ошибку в нормализованную. Если err уже
// нормализована, она возвращается как есть - повторная классификация запрещена.
func Wrap(kind Kind, message string, err error) *Error {
	var ge *Error
	if errors.As(err, &ge) {
		return ge
	}
	return &Error{Kind: kind, Message: message, cause: err}
}

// KindOf возвращает вид ошибки; для неклассифицированных ошибок - KindInternal.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindInternal
}

// PublicMessage возвращает сообщение, пригодное для ответа клиенту.
func PublicMessage(err error) string {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Message
	}
	return "внутренняя ошибка шлюза"
}

func is(kind Kind) func(error) bool {
	return func(err error) bool {
		var ge *Error
		if errors.As(err, &ge) {
			return ge.Kind == kind
		}
		return false
	}
}

// Предикаты для типовых проверок в сервисах и тестах.
var (
	IsAuthentication      = is(KindAuthentication)
	IsUnknownResource     = is(KindUnknownResource)
	IsSchemaMismatch      = is(KindSchemaMismatch)
	IsUpstreamTimeout     = is(KindUpstreamTimeout)
	IsUpstreamUnavailable = is(KindUpstreamUnavailable)
	IsUpstreamProtocol    = is(KindUpstreamProtocol)
)

// HTTPStatus - единственная таблица соответствия вида ошибки HTTP-статусу.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindUnknownResource:
		return http.StatusNotFound
	case KindSchemaMismatch:
		return http.StatusBadRequest
	case KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	case KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case KindUpstreamProtocol:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
